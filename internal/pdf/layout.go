package pdf

import (
	"fmt"

	"github.com/bukodent/presu/internal/config"
	"github.com/bukodent/presu/internal/format"
	"github.com/bukodent/presu/internal/model"
)

// Page geometry: a single A4 page in points. There is no page breaking; a
// budget with more items than fit below the fold is an accepted limitation.
const (
	PageWidth  = 595.28
	PageHeight = 841.89
)

const (
	marginLeft  = 40.0
	marginRight = 40.0
	marginTop   = 40.0
)

// Treatment table column widths, left to right. They sum to 515, inside the
// printable width.
const (
	ColTreatment      = 180.0
	ColQuantity       = 50.0
	ColUnitPrice      = 70.0
	ColDiscountPct    = 55.0
	ColDiscountAmount = 70.0
	ColLineTotal      = 90.0
)

const (
	rowHeight    = 18.0
	nameMaxChars = 30

	headerBandHeight = 130.0
	totalBandHeight  = 30.0
	ruleInset        = 15.0 // white rule distance from the page edge
	ruleWidth        = 3.0

	// Horizontal center of the doctor identity column in the header.
	doctorColumnCenter = 435.0

	logoWidth = 200.0
)

// Logo is a decorative PNG asset with its aspect ratio (height/width).
type Logo struct {
	PNG    []byte
	Aspect float64
}

// Measure returns the rendered width of text at a font size. The renderer
// supplies the backend's metrics; tests supply an approximation.
type Measure func(text string, size float64, bold bool) float64

// approxMeasure is the fallback when no backend metrics are available.
func approxMeasure(text string, size float64, _ bool) float64 {
	return float64(len([]rune(text))) * size * 0.5
}

// Layout computes the full draw list for one budget. It is stateless across
// calls; every Compose recomputes the page from scratch and never mutates
// the budget.
type Layout struct {
	Clinic  config.ClinicConfig
	Notes   config.DocumentConfig
	Logo    *Logo // nil when the asset is unavailable
	Measure Measure
}

// Compose lays out the whole page top-down: a single vertical cursor starts
// at the top margin and each block advances it by its fixed extent.
func (l *Layout) Compose(b *model.Budget) Ops {
	if l.Measure == nil {
		l.Measure = approxMeasure
	}

	var ops Ops
	y := l.header(&ops)
	y = l.clinicAndInvoice(&ops, b, y+80)
	y = l.patientInfo(&ops, b, y+40)
	y = l.treatmentsTable(&ops, b, y+55)
	l.totals(&ops, b, y+25)
	l.footer(&ops)
	return ops
}

// header draws the black top band with white rules, the document title, the
// centered doctor identity column and the optional logo.
func (l *Layout) header(ops *Ops) float64 {
	ops.rect(0, 0, PageWidth, headerBandHeight, black)

	ops.line(0, ruleInset, PageWidth, ruleInset, ruleWidth, white)
	ops.line(ruleInset, 0, ruleInset, headerBandHeight, ruleWidth, white)
	ops.line(PageWidth-ruleInset, 0, PageWidth-ruleInset, headerBandHeight, ruleWidth, white)

	y := marginTop + 10
	ops.text(marginLeft, y, 16, true, white, "PLAN DE TRATAMIENTO")

	l.centered(ops, l.Clinic.DoctorName, doctorColumnCenter, y, 12, true, white)
	y += 15
	l.centered(ops, l.Clinic.HeaderSubtitle1, doctorColumnCenter, y, 9, false, white)
	y += 12
	l.centered(ops, l.Clinic.HeaderSubtitle2, doctorColumnCenter, y, 9, false, white)
	y += 15

	if l.Logo != nil {
		h := logoWidth * l.Logo.Aspect
		ops.image(marginLeft, marginTop+18, logoWidth, h, l.Logo.PNG)
	}

	return y
}

// centered emits a text run horizontally centered on cx.
func (l *Layout) centered(ops *Ops, text string, cx, y, size float64, bold bool, color RGB) {
	w := l.Measure(text, size, bold)
	ops.text(cx-w/2, y, size, bold, color, text)
}

// clinicAndInvoice draws the clinic identity on the left and the invoice
// number and date on the right.
func (l *Layout) clinicAndInvoice(ops *Ops, b *model.Budget, top float64) float64 {
	c := l.Clinic
	y := top

	ops.text(marginLeft, y, 10, true, black, c.ClinicName)
	y += 12
	ops.text(marginLeft, y, 10, false, black, c.ClinicBrand)
	y += 12
	if c.CompanyLine != "" {
		ops.text(marginLeft, y, 9, false, black, c.CompanyLine)
		y += 12
	}
	ops.text(marginLeft, y, 9, false, black, c.Address)
	y += 12
	ops.text(marginLeft, y, 9, false, black, c.Email)
	y += 12
	ops.text(marginLeft, y, 9, false, black, c.Phone)

	rightX := PageWidth - marginRight - 150
	ops.text(rightX, top, 10, true, black, "FACTURA Nº:")
	ops.text(rightX+75, top, 10, false, black, b.Code)
	ops.text(rightX, top+15, 10, true, black, "FECHA:")
	ops.text(rightX+75, top+15, 10, false, black, format.Date(b.Date))

	return y + 10
}

// orDash substitutes a dash for empty free-text fields.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// patientInfo draws the labeled patient block.
func (l *Layout) patientInfo(ops *Ops, b *model.Budget, top float64) float64 {
	labelX := marginLeft + 30
	valueX := labelX + 60

	ops.text(labelX, top, 11, true, black, "DATOS DEL PACIENTE")
	y := top + 15

	row := func(label, value string) {
		ops.text(labelX, y, 9, true, black, label)
		ops.text(valueX, y, 9, false, black, value)
		y += 12
	}

	row("Nombre:", orDash(b.PatientName))
	row("DNI:", orDash(b.PatientDNI))
	address := fmt.Sprintf("%s, %s, CP: %s",
		orDash(b.PatientAddress), orDash(b.PatientRegion), orDash(b.PatientPostalCode))
	row("Dirección:", address)
	row("Email:", orDash(b.PatientEmail))
	row("Teléfono:", orDash(b.PatientPhone))

	return y - 12 + 10
}

// treatmentsTable draws the fixed-column line-item table. Rows have a fixed
// height; long treatment names are truncated with an ellipsis rather than
// wrapped.
func (l *Layout) treatmentsTable(ops *Ops, b *model.Budget, top float64) float64 {
	startX := marginLeft
	symbol := b.CurrencySymbol

	ops.text(startX, top, 11, true, black, "PLAN DE TRATAMIENTO")

	headerY := top + 15
	x := startX + 5
	for _, col := range []struct {
		label string
		width float64
	}{
		{"Tratamiento", ColTreatment},
		{"Cant.", ColQuantity},
		{"Precio Unit.", ColUnitPrice},
		{"Dto. (%)", ColDiscountPct},
		{"Imp. Dto.", ColDiscountAmount},
		{"Precio Total", ColLineTotal},
	} {
		ops.text(x, headerY+13, 9, true, black, col.label)
		x += col.width
	}

	y := headerY + 20
	for _, item := range b.Items {
		textY := y + 12
		x = startX + 5

		ops.text(x, textY, 8, false, black, format.Truncate(item.Treatment.Name, nameMaxChars))
		x += ColTreatment

		ops.text(x, textY, 8, false, black, fmt.Sprintf("%d", item.Quantity))
		x += ColQuantity

		ops.text(x, textY, 8, false, black, format.Currency(item.Treatment.Price, symbol))
		x += ColUnitPrice

		discountPct := "-"
		discountAmount := "-"
		if item.Discount.IsPositive() {
			discountPct = format.Rate(item.Discount) + "%"
			discountAmount = format.Currency(item.DiscountAmount(), symbol)
		}
		ops.text(x, textY, 8, false, black, discountPct)
		x += ColDiscountPct

		ops.text(x, textY, 8, false, black, discountAmount)
		x += ColDiscountAmount

		ops.text(x, textY, 8, false, black, format.Currency(item.Subtotal(), symbol))

		y += rowHeight
	}

	return y
}

// totals draws the summary column: gross amount, discount, taxable base,
// the IVA line and the full-width black TOTAL band.
func (l *Layout) totals(ops *Ops, b *model.Budget, top float64) {
	leftX := PageWidth - marginRight - 280
	valueX := leftX + 220
	symbol := b.CurrencySymbol
	y := top

	line := func(label, value string) {
		ops.text(leftX, y, 10, true, black, label)
		ops.text(valueX, y, 10, false, black, value)
		y += 15
	}

	line("Total del presupuesto sin descuento:", format.Currency(b.SubtotalWithoutDiscount(), symbol))
	line("Importe del descuento:", format.Currency(b.DiscountTotal(), symbol))
	line("Base imponible:", format.Currency(b.Subtotal(), symbol))
	line(fmt.Sprintf("IVA (%s%%):", format.Rate(b.IVARate)), format.Currency(b.IVA(), symbol))

	y += 5
	bandTop := y - totalBandHeight/2
	ops.rect(0, bandTop, PageWidth, totalBandHeight, black)
	ops.line(ruleInset, bandTop, ruleInset, bandTop+totalBandHeight, ruleWidth, white)
	ops.line(PageWidth-ruleInset, bandTop, PageWidth-ruleInset, bandTop+totalBandHeight, ruleWidth, white)

	ops.text(leftX, y, 12, true, white, "TOTAL:")
	ops.text(valueX, y, 12, true, white, format.Currency(b.Total(), symbol))
}

// footer draws the fixed-position notes and bank details near the bottom
// margin.
func (l *Layout) footer(ops *Ops) {
	n := l.Notes
	y := PageHeight - 120

	if n.ExemptionNote != "" {
		ops.text(marginLeft, y, 8, true, black, n.ExemptionNote)
		y += 15
	}
	ops.text(marginLeft, y, 9, true, black, n.PaymentNote)
	y += 15
	ops.text(marginLeft, y, 9, false, black, n.ValidityNote)
	y += 15
	ops.text(marginLeft, y, 9, false, black, "Banco: "+n.BankName)
	y += 12
	ops.text(marginLeft, y, 9, false, black, "IBAN: "+n.BankIBAN)
}
