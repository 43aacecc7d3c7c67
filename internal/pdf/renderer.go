// Package pdf renders the fixed-layout A4 invoice document. The renderer is
// a pure formatter: same invoice and customer snapshot, same layout.
package pdf

import (
	"bytes"
	"strings"
	"time"

	"wifibilling/internal/common"
	"wifibilling/internal/models"
	"wifibilling/internal/money"

	"github.com/jung-kurt/gofpdf"
)

type rgb struct{ r, g, b int }

var (
	colPrimary     = rgb{37, 99, 235}
	colPrimaryDark = rgb{30, 64, 175}
	colTextDark    = rgb{30, 41, 59}
	colTextMuted   = rgb{100, 116, 139}
	colSuccess     = rgb{22, 163, 74}
	colSuccessDark = rgb{21, 128, 61}
	colAlert       = rgb{220, 38, 38}
	colBgLight     = rgb{248, 250, 252}
	colBgBlue      = rgb{239, 246, 255}
	colBgGreen     = rgb{240, 253, 244}
	colBgAmber     = rgb{255, 251, 235}
	colAmber       = rgb{245, 158, 11}
	colAmberDark   = rgb{180, 83, 9}
	colAmberText   = rgb{120, 53, 15}
	colBorder      = rgb{226, 232, 240}
	colFooter      = rgb{148, 163, 184}
	colWhite       = rgb{255, 255, 255}
)

const (
	pageLeft  = 40.0
	pageRight = 555.0
	pageWidth = pageRight - pageLeft
)

// Renderer produces invoice PDFs. Now is injectable so the generation
// timestamp and the document creation date are reproducible in tests.
type Renderer struct {
	Now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{Now: time.Now}
}

// Render produces the invoice document bytes. The layout is fixed: header,
// invoice/customer info boxes, subscription band, items table with
// conditional rows, totals, then payment/notes/customer blocks only when
// their data is present, and a footer with the generation timestamp.
func (r *Renderer) Render(invoice *models.Invoice, customer *models.Customer) ([]byte, error) {
	if invoice == nil || customer == nil {
		return nil, common.RenderErrorf("invoice and customer are required")
	}

	now := r.Now()

	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetCatalogSort(true)
	doc.SetCreationDate(now)
	doc.SetModificationDate(now)
	doc.SetMargins(pageLeft, pageLeft, pageLeft)
	doc.SetAutoPageBreak(true, pageLeft)
	doc.AddPage()

	p := &page{doc: doc}

	p.header()
	y := p.infoBoxes(invoice, customer)
	y = p.subscriptionBand(invoice, customer, y+20)
	y = p.itemsTable(invoice, y+20)
	y = p.totals(invoice, y+20)

	if invoice.PaymentMethod != nil || invoice.PaymentReceivedDate != nil || invoice.ReceivedBy != nil {
		y = p.paymentInfo(invoice, y+20)
	}
	if invoice.Notes != "" {
		y = p.notesBlock(invoice.Notes, y+15)
	}
	if customer.LastPaymentDate != nil || customer.Notes != "" {
		y = p.customerInfo(customer, y+15)
	}

	p.footer(y+15, now)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, common.RenderErrorf("pdf output: %v", err)
	}
	return buf.Bytes(), nil
}

type page struct {
	doc *gofpdf.Fpdf
}

func (p *page) text(c rgb) { p.doc.SetTextColor(c.r, c.g, c.b) }

func (p *page) font(style string, size float64) {
	p.doc.SetFont("Helvetica", style, size)
}

func (p *page) box(x, y, w, h float64, fill, border rgb) {
	p.doc.SetFillColor(fill.r, fill.g, fill.b)
	p.doc.SetDrawColor(border.r, border.g, border.b)
	p.doc.SetLineWidth(1)
	p.doc.Rect(x, y, w, h, "FD")
}

func (p *page) line(y, width float64, c rgb) {
	p.doc.SetDrawColor(c.r, c.g, c.b)
	p.doc.SetLineWidth(width)
	p.doc.Line(pageLeft, y, pageRight, y)
}

func (p *page) cell(x, y, w float64, align, s string) {
	p.doc.SetXY(x, y)
	p.doc.CellFormat(w, 12, s, "", 0, align, false, 0, "")
}

func (p *page) header() {
	p.font("B", 32)
	p.text(colPrimaryDark)
	p.cell(pageLeft, 40, pageWidth, "C", "INVOICE")

	p.font("B", 12)
	p.cell(pageLeft, 78, pageWidth, "C", "WiFi Billing System")

	p.font("", 10)
	p.text(colTextMuted)
	p.cell(pageLeft, 94, pageWidth, "C", "WiFi Angkasa | Jl. Example, Bekasi")
	p.cell(pageLeft, 107, pageWidth, "C", "Tel: 62812345678 | Email: info@wifiangkasa.com")

	p.line(128, 4, colPrimary)
}

func (p *page) infoBoxes(invoice *models.Invoice, customer *models.Customer) float64 {
	const top = 145.0
	const boxH = 100.0

	// Left box: invoice metadata
	p.box(pageLeft, top, 250, boxH, colBgLight, colBorder)
	p.font("B", 11)
	p.text(colPrimaryDark)
	p.cell(pageLeft+10, top+10, 230, "L", "INVOICE DETAILS")

	rows := []struct {
		label string
		value string
		color rgb
	}{
		{"Invoice Number:", invoice.InvoiceNumber, colTextDark},
		{"Payment Receipt:", invoice.PaymentReceiptNumber, colSuccess},
		{"Invoice Date:", money.FormatLongDate(invoice.InvoiceDate), colTextDark},
		{"Due Date:", money.FormatLongDate(invoice.DueDate), colAlert},
	}
	y := top + 28
	for _, row := range rows {
		p.font("", 9)
		p.text(colTextMuted)
		p.cell(pageLeft+10, y, 100, "L", row.label)
		p.font("B", 9)
		p.text(row.color)
		p.cell(pageLeft+110, y, 130, "L", row.value)
		y += 15
	}

	// Right box: bill-to customer details
	const rightCol = 310.0
	p.box(rightCol, top, 245, boxH, colBgLight, colBorder)
	p.font("B", 11)
	p.text(colPrimaryDark)
	p.cell(rightCol+10, top+10, 225, "L", "BILL TO")

	p.font("B", 10)
	p.text(colTextDark)
	p.cell(rightCol+10, top+28, 225, "L", customer.Name)

	p.font("", 9)
	p.text(colTextMuted)
	p.cell(rightCol+10, top+43, 225, "L", "Customer ID: "+customer.CustomerID)
	p.cell(rightCol+10, top+56, 225, "L", "WiFi ID: "+customer.WifiID)
	p.cell(rightCol+10, top+69, 225, "L", "Phone: "+customer.PhoneWhatsApp)
	p.cell(rightCol+10, top+82, 225, "L", customer.Address)

	return top + boxH
}

func (p *page) subscriptionBand(invoice *models.Invoice, customer *models.Customer, y float64) float64 {
	p.box(pageLeft, y, pageWidth, 45, colBgBlue, colPrimary)

	p.font("", 9)
	p.text(colPrimaryDark)
	p.cell(50, y+10, 60, "L", "Package:")
	p.font("B", 9)
	p.text(colTextDark)
	p.cell(110, y+10, 150, "L", customer.Package)

	p.font("", 9)
	p.text(colPrimaryDark)
	p.cell(270, y+10, 115, "L", "Subscription Start:")
	p.font("B", 9)
	p.text(colTextDark)
	p.cell(390, y+10, 150, "L", money.FormatShortDate(customer.SubscriptionStartDate))

	p.font("", 9)
	p.text(colPrimaryDark)
	p.cell(50, y+27, 85, "L", "Billing Period:")
	p.font("B", 9)
	p.text(colTextDark)
	p.cell(140, y+27, 250, "L",
		money.FormatShortDate(invoice.PeriodStart)+" - "+money.FormatShortDate(invoice.PeriodEnd))

	return y + 45
}

func (p *page) itemsTable(invoice *models.Invoice, y float64) float64 {
	const (
		itemCol   = 45.0
		descCol   = 150.0
		qtyCol    = 385.0
		amountCol = 450.0
	)

	p.box(pageLeft, y, pageWidth, 25, colPrimary, colPrimary)
	p.font("B", 10)
	p.text(colWhite)
	p.cell(itemCol, y+7, 100, "L", "ITEM")
	p.cell(descCol, y+7, 230, "L", "DESCRIPTION")
	p.cell(qtyCol, y+7, 60, "C", "QTY")
	p.cell(amountCol, y+7, 100, "R", "AMOUNT")
	y += 25

	row := func(item, desc, qty, amount string, discount bool) {
		const rowH = 30.0
		p.doc.SetDrawColor(colBorder.r, colBorder.g, colBorder.b)
		p.doc.SetLineWidth(1)
		p.doc.Rect(pageLeft, y, pageWidth, rowH, "D")

		valueColor := colTextDark
		if discount {
			valueColor = colSuccess
		}

		p.font("", 9)
		p.text(valueColor)
		p.cell(itemCol, y+9, 100, "L", item)
		p.text(colTextMuted)
		p.cell(descCol, y+9, 230, "L", desc)
		p.text(valueColor)
		p.cell(qtyCol, y+9, 60, "C", qty)
		p.font("B", 9)
		p.cell(amountCol, y+9, 100, "R", amount)

		y += rowH
	}

	row("Monthly WiFi", invoice.Package+" - Monthly Subscription", "1",
		money.FormatRupiah(invoice.Amount), false)

	if invoice.RouterCost.IsPositive() {
		row("Router Device", "One-time purchase", "1",
			money.FormatRupiah(invoice.RouterCost), false)
	}
	if invoice.InstallationCost.IsPositive() {
		row("Installation", "Registration & Setup Fee", "1",
			money.FormatRupiah(invoice.InstallationCost), false)
	}
	if invoice.OtherFees.IsPositive() {
		row("Other Fees", "Additional charges", "1",
			money.FormatRupiah(invoice.OtherFees), false)
	}
	if invoice.InstallationDiscount.IsPositive() {
		row("Discount", "Installation Discount", "-",
			"-"+money.FormatRupiah(invoice.InstallationDiscount), true)
	}

	return y
}

func (p *page) totals(invoice *models.Invoice, y float64) float64 {
	const amountCol = 450.0

	// Subtotal and tax lines only appear when tax is charged.
	if invoice.Tax.IsPositive() {
		subtotal := invoice.TotalAmount.Sub(invoice.Tax)

		p.font("", 10)
		p.text(colTextMuted)
		p.cell(375, y, 70, "L", "Subtotal:")
		p.font("B", 10)
		p.text(colTextDark)
		p.cell(amountCol, y, 100, "R", money.FormatRupiah(subtotal))

		p.font("", 10)
		p.text(colTextMuted)
		p.cell(375, y+18, 70, "L", "Tax:")
		p.font("B", 10)
		p.text(colTextDark)
		p.cell(amountCol, y+18, 100, "R", money.FormatRupiah(invoice.Tax))

		y += 45
	}

	p.box(370, y-5, 185, 35, colBgBlue, colPrimary)
	p.font("B", 12)
	p.text(colPrimaryDark)
	p.cell(380, y+5, 60, "L", "TOTAL:")
	p.font("B", 14)
	p.cell(amountCol, y+4, 100, "R", money.FormatRupiah(invoice.TotalAmount))

	return y + 30
}

func (p *page) paymentInfo(invoice *models.Invoice, y float64) float64 {
	p.line(y, 1, colBorder)
	y += 10

	p.box(pageLeft, y, pageWidth, 70, colBgGreen, colSuccess)
	p.font("B", 11)
	p.text(colSuccessDark)
	p.cell(50, y+10, 250, "L", "PAYMENT INFORMATION")

	rowY := y + 28
	if invoice.PaymentMethod != nil {
		p.font("", 9)
		p.text(colTextMuted)
		p.cell(50, rowY, 105, "L", "Payment Method:")
		p.font("B", 9)
		p.text(colTextDark)
		p.cell(160, rowY, 200, "L", strings.ToUpper(*invoice.PaymentMethod))
		rowY += 13
	}
	if invoice.PaymentReceivedDate != nil {
		p.font("", 9)
		p.text(colTextMuted)
		p.cell(50, rowY, 105, "L", "Payment Received:")
		p.font("B", 9)
		p.text(colSuccess)
		p.cell(160, rowY, 200, "L", money.FormatLongDate(*invoice.PaymentReceivedDate))
		rowY += 13
	}
	if invoice.ReceivedBy != nil {
		p.font("", 9)
		p.text(colTextMuted)
		p.cell(50, rowY, 105, "L", "Received By:")
		p.font("B", 9)
		p.text(colTextDark)
		p.cell(160, rowY, 200, "L", *invoice.ReceivedBy)
	}

	return y + 70
}

func (p *page) notesBlock(notes string, y float64) float64 {
	p.box(pageLeft, y, pageWidth, 60, colBgAmber, colAmber)
	p.font("B", 11)
	p.text(colAmberDark)
	p.cell(50, y+10, 250, "L", "NOTES")

	p.font("", 9)
	p.text(colAmberText)
	p.doc.SetXY(50, y+26)
	p.doc.MultiCell(495, 11, notes, "", "L", false)

	return y + 60
}

func (p *page) customerInfo(customer *models.Customer, y float64) float64 {
	p.line(y, 1, colBorder)
	y += 10

	p.font("B", 10)
	p.text(colTextDark)
	p.cell(pageLeft, y, 200, "L", "CUSTOMER INFO")
	y += 15

	p.font("", 9)
	p.text(colTextMuted)
	if customer.LastPaymentDate != nil {
		p.cell(pageLeft, y, pageWidth, "L",
			"Last Payment: "+money.FormatShortDate(*customer.LastPaymentDate)+
				" - "+money.FormatRupiah(customer.LastPaymentAmount))
		y += 13
	}
	if customer.Notes != "" {
		p.doc.SetXY(pageLeft, y)
		p.doc.MultiCell(pageWidth, 11, "Notes: "+customer.Notes, "", "L", false)
		y = p.doc.GetY()
	}

	return y + 5
}

func (p *page) footer(y float64, now time.Time) {
	p.line(y, 2, colBorder)

	p.font("B", 9)
	p.text(colPrimary)
	p.cell(pageLeft, y+12, pageWidth, "C", "Thank you for your business!")

	p.font("", 8)
	p.text(colFooter)
	p.cell(pageLeft, y+25, pageWidth, "C",
		"Please make payment before the due date to avoid service interruption.")

	_, pageH := p.doc.GetPageSize()
	p.font("", 7)
	p.cell(pageLeft, pageH-40, pageWidth, "C",
		"Generated by WiFi Billing System | "+money.FormatTimestamp(now))
}
