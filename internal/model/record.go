package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the derived subtotal/tax/total view of a budget, with both raw
// and formatted forms. JSON tags define the export wire format.
type Summary struct {
	PatientName       string          `json:"patientName"`
	Date              string          `json:"date"`
	ItemCount         int             `json:"itemCount"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	SubtotalFormatted string          `json:"subtotalFormatted"`
	IVA               decimal.Decimal `json:"iva"`
	IVAFormatted      string          `json:"ivaFormatted"`
	Total             decimal.Decimal `json:"total"`
	TotalFormatted    string          `json:"totalFormatted"`
	IVARate           decimal.Decimal `json:"ivaRate"`
}

// ItemRecord is the serialized form of one line item, carrying the treatment
// snapshot and the computed amounts at export time.
type ItemRecord struct {
	Treatment               Treatment       `json:"treatment"`
	Quantity                int             `json:"quantity"`
	Discount                decimal.Decimal `json:"discount"`
	SubtotalWithoutDiscount decimal.Decimal `json:"subtotalWithoutDiscount"`
	DiscountAmount          decimal.Decimal `json:"discountAmount"`
	Subtotal                decimal.Decimal `json:"subtotal"`
}

// Record is the full serialized budget snapshot handed to the history store.
// It is independent of the live budget and never mutated afterwards.
type Record struct {
	BudgetCode        string          `json:"budgetCode"`
	PatientName       string          `json:"patientName"`
	PatientDNI        string          `json:"patientDNI"`
	PatientAddress    string          `json:"patientAddress"`
	PatientRegion     string          `json:"patientRegion"`
	PatientPostalCode string          `json:"patientPostalCode"`
	PatientEmail      string          `json:"patientEmail"`
	PatientPhone      string          `json:"patientPhone"`
	Date              time.Time       `json:"date"`
	IVARate           decimal.Decimal `json:"ivaRate"`
	CurrencySymbol    string          `json:"currencySymbol"`
	Items             []ItemRecord    `json:"items"`
	Summary           Summary         `json:"summary"`
}

// Export serializes the budget into its wire record, including per-item
// computed amounts and the summary.
func (b *Budget) Export() Record {
	items := make([]ItemRecord, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, ItemRecord{
			Treatment:               it.Treatment,
			Quantity:                it.Quantity,
			Discount:                it.Discount,
			SubtotalWithoutDiscount: it.SubtotalWithoutDiscount(),
			DiscountAmount:          it.DiscountAmount(),
			Subtotal:                it.Subtotal(),
		})
	}
	return Record{
		BudgetCode:        b.Code,
		PatientName:       b.PatientName,
		PatientDNI:        b.PatientDNI,
		PatientAddress:    b.PatientAddress,
		PatientRegion:     b.PatientRegion,
		PatientPostalCode: b.PatientPostalCode,
		PatientEmail:      b.PatientEmail,
		PatientPhone:      b.PatientPhone,
		Date:              b.Date,
		IVARate:           b.IVARate,
		CurrencySymbol:    b.CurrencySymbol,
		Items:             items,
		Summary:           b.Summary(),
	}
}

// FromRecord rebuilds a budget from a serialized record. All computed
// amounts are re-derived from the stored treatment snapshots, quantities and
// discounts; the stored computed fields are not trusted.
func FromRecord(r Record) *Budget {
	b := NewBudget()
	if r.BudgetCode != "" {
		b.Code = r.BudgetCode
	}
	b.SetPatientName(r.PatientName)
	b.SetPatientDNI(r.PatientDNI)
	b.SetPatientAddress(r.PatientAddress)
	b.SetPatientRegion(r.PatientRegion)
	b.SetPatientPostalCode(r.PatientPostalCode)
	b.SetPatientEmail(r.PatientEmail)
	b.SetPatientPhone(r.PatientPhone)
	if !r.Date.IsZero() {
		b.SetDate(r.Date)
	}
	b.SetIVARate(r.IVARate)
	if r.CurrencySymbol != "" {
		b.CurrencySymbol = r.CurrencySymbol
	}
	for _, ir := range r.Items {
		b.AddItem(ir.Treatment, ir.Quantity, ir.Discount)
	}
	return b
}

// Validation messages shown to the user, in the clinic's language.
const (
	MsgPatientNameRequired = "Por favor, ingrese el nombre del paciente"
	MsgNoTreatments        = "Por favor, agregue al menos un tratamiento"
)

// ValidationError lists the human-readable reasons a budget cannot be
// exported.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Validate checks the budget is complete enough to generate a document:
// a non-empty patient name and at least one item. Returns nil when valid.
func (b *Budget) Validate() error {
	var msgs []string
	if strings.TrimSpace(b.PatientName) == "" {
		msgs = append(msgs, MsgPatientNameRequired)
	}
	if len(b.Items) == 0 {
		msgs = append(msgs, MsgNoTreatments)
	}
	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// Valid reports whether the budget passes export validation.
func (b *Budget) Valid() bool {
	return b.Validate() == nil
}
