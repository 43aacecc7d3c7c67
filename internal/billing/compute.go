// Package billing holds the pure invoice total computation. It performs no
// I/O and has no knowledge of tenants or persistence.
package billing

import (
	"wifibilling/internal/common"
	"wifibilling/internal/models"

	"github.com/shopspring/decimal"
)

// ComputeInput carries everything the total computation needs: the monthly
// base amount, the customer's one-time cost snapshot and the inclusion flags.
type ComputeInput struct {
	Amount                  decimal.Decimal
	Customer                *models.Customer
	IncludeRouterCost       bool
	IncludeInstallationCost bool
	Tax                     decimal.Decimal
}

// Breakdown is the computed line-item set.
type Breakdown struct {
	Amount               decimal.Decimal
	RouterCost           decimal.Decimal
	InstallationCost     decimal.Decimal
	OtherFees            decimal.Decimal
	InstallationDiscount decimal.Decimal
	Tax                  decimal.Decimal
	TotalAmount          decimal.Decimal
}

// Compute derives the invoice breakdown:
//
//	router_cost       = include_router_cost ? router_purchase_price : 0
//	installation_cost = include_installation_cost ? registration_fee + other_fees : 0
//	total             = amount + router + installation + other_fees - discount + tax
//
// The installation discount always applies, regardless of the flags. The
// total is not clamped: a discount larger than the charges yields a
// negative total.
func Compute(in ComputeInput) (Breakdown, error) {
	if !in.Amount.IsPositive() {
		return Breakdown{}, common.ValidationErrorf("amount must be a positive number")
	}

	routerCost := decimal.Zero
	if in.IncludeRouterCost {
		routerCost = in.Customer.RouterPurchasePrice
	}

	installationCost := decimal.Zero
	if in.IncludeInstallationCost {
		installationCost = in.Customer.RegistrationFee.Add(in.Customer.OtherFees)
	}

	b := Breakdown{
		Amount:               in.Amount,
		RouterCost:           routerCost,
		InstallationCost:     installationCost,
		OtherFees:            decimal.Zero,
		InstallationDiscount: in.Customer.InstallationDiscount,
		Tax:                  in.Tax,
	}
	b.TotalAmount = b.Amount.
		Add(b.RouterCost).
		Add(b.InstallationCost).
		Add(b.OtherFees).
		Sub(b.InstallationDiscount).
		Add(b.Tax)

	return b, nil
}
