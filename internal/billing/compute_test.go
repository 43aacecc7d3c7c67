package billing

import (
	"errors"
	"testing"

	"wifibilling/internal/common"
	"wifibilling/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func testCustomer() *models.Customer {
	return &models.Customer{
		RouterPurchasePrice:  dec(500000),
		RegistrationFee:      dec(200000),
		InstallationDiscount: dec(100000),
		OtherFees:            dec(0),
	}
}

func TestCompute_AllCostsIncluded(t *testing.T) {
	b, err := Compute(ComputeInput{
		Amount:                  dec(300000),
		Customer:                testCustomer(),
		IncludeRouterCost:       true,
		IncludeInstallationCost: true,
	})
	assert.NoError(t, err)
	assert.True(t, b.RouterCost.Equal(dec(500000)))
	assert.True(t, b.InstallationCost.Equal(dec(200000)))
	assert.True(t, b.InstallationDiscount.Equal(dec(100000)))
	// 300000 + 500000 + 200000 + 0 - 100000 + 0
	assert.True(t, b.TotalAmount.Equal(dec(900000)), "got %s", b.TotalAmount)
}

func TestCompute_DiscountAlwaysApplies(t *testing.T) {
	b, err := Compute(ComputeInput{
		Amount:   dec(300000),
		Customer: testCustomer(),
	})
	assert.NoError(t, err)
	assert.True(t, b.RouterCost.IsZero())
	assert.True(t, b.InstallationCost.IsZero())
	assert.True(t, b.TotalAmount.Equal(dec(200000)), "got %s", b.TotalAmount)
}

func TestCompute_InstallationCostSumsRegistrationAndOtherFees(t *testing.T) {
	c := testCustomer()
	c.OtherFees = dec(50000)

	b, err := Compute(ComputeInput{
		Amount:                  dec(300000),
		Customer:                c,
		IncludeInstallationCost: true,
	})
	assert.NoError(t, err)
	assert.True(t, b.InstallationCost.Equal(dec(250000)))
}

func TestCompute_NegativeTotalNotClamped(t *testing.T) {
	c := testCustomer()
	c.InstallationDiscount = dec(400000)

	b, err := Compute(ComputeInput{
		Amount:   dec(300000),
		Customer: c,
	})
	assert.NoError(t, err)
	assert.True(t, b.TotalAmount.Equal(dec(-100000)), "got %s", b.TotalAmount)
}

func TestCompute_TaxAddsToTotal(t *testing.T) {
	b, err := Compute(ComputeInput{
		Amount:   dec(300000),
		Customer: &models.Customer{},
		Tax:      dec(33000),
	})
	assert.NoError(t, err)
	assert.True(t, b.TotalAmount.Equal(dec(333000)))
}

func TestCompute_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []decimal.Decimal{dec(0), dec(-1)} {
		_, err := Compute(ComputeInput{Amount: amount, Customer: testCustomer()})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrValidation))
	}
}
