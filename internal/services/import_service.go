package services

import (
	"context"
	"io"
	"strings"

	"wifibilling/internal/common"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ImportRowResult reports the outcome of a single spreadsheet row. Row
// numbers are 1-based as shown in the spreadsheet, including the header.
type ImportRowResult struct {
	Row   int    `json:"row"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

type ImportResult struct {
	Total    int               `json:"total"`
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Rows     []ImportRowResult `json:"rows"`
}

type ImportService interface {
	ImportCustomers(ctx context.Context, tenantID uuid.UUID, file io.Reader, actor string) (*ImportResult, error)
}

type importService struct {
	customers CustomerService
}

func NewImportService(customers CustomerService) ImportService {
	return &importService{customers: customers}
}

// Expected column order. The first sheet is read; row 1 is the header.
var importColumns = []string{
	"name", "address", "package", "wifi_id", "phone_whatsapp",
	"subscription_start_date", "router_purchase_price", "registration_fee",
	"installation_discount", "other_fees", "notes",
}

// ImportCustomers loads customers from an xlsx sheet. Rows are isolated:
// a bad row is reported and skipped, the rest continue.
func (s *importService) ImportCustomers(ctx context.Context, tenantID uuid.UUID, file io.Reader, actor string) (*ImportResult, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, common.ValidationErrorf("could not read spreadsheet: %v", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.ValidationErrorf("spreadsheet has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, common.ValidationErrorf("could not read sheet %s: %v", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, common.ValidationErrorf("spreadsheet has no data rows")
	}

	result := &ImportResult{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isEmptyRow(row) {
			continue
		}
		result.Total++

		input, err := parseImportRow(row)
		if err != nil {
			result.Failed++
			result.Rows = append(result.Rows, ImportRowResult{Row: rowNum, Error: err.Error()})
			continue
		}

		if _, err := s.customers.Create(ctx, tenantID, input, actor); err != nil {
			result.Failed++
			result.Rows = append(result.Rows, ImportRowResult{Row: rowNum, Name: input.Name, Error: err.Error()})
			continue
		}

		result.Imported++
		result.Rows = append(result.Rows, ImportRowResult{Row: rowNum, Name: input.Name})
	}

	log.Info().Int("imported", result.Imported).Int("failed", result.Failed).Msg("customer import finished")
	return result, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parseImportRow(row []string) (CustomerInput, error) {
	input := CustomerInput{
		Name:          cellAt(row, 0),
		Address:       cellAt(row, 1),
		Package:       cellAt(row, 2),
		WifiID:        cellAt(row, 3),
		PhoneWhatsApp: cellAt(row, 4),
		Notes:         cellAt(row, 10),
	}

	startDate, err := common.ValidateDateFormat(cellAt(row, 5), "subscription_start_date")
	if err != nil {
		return input, err
	}
	input.SubscriptionStartDate = startDate

	amounts := []struct {
		column int
		name   string
		target *decimal.Decimal
	}{
		{6, "router_purchase_price", &input.RouterPurchasePrice},
		{7, "registration_fee", &input.RegistrationFee},
		{8, "installation_discount", &input.InstallationDiscount},
		{9, "other_fees", &input.OtherFees},
	}
	for _, amount := range amounts {
		cell := cellAt(row, amount.column)
		if cell == "" {
			*amount.target = decimal.Zero
			continue
		}
		value, err := decimal.NewFromString(strings.ReplaceAll(cell, ",", ""))
		if err != nil {
			return input, common.ValidationErrorf("%s: invalid number %q", amount.name, cell)
		}
		*amount.target = value
	}

	return input, nil
}
