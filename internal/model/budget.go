package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bukodent/presu/internal/format"
)

// Defaults applied to a fresh budget; the catalog may override both at load.
var (
	DefaultIVARate        = decimal.NewFromInt(21)
	DefaultCurrencySymbol = "€"
)

var oneHundred = decimal.NewFromInt(100)

// BudgetItem is one treatment applied at a quantity and a percentage
// discount. The embedded Treatment is a value snapshot of the catalog entry.
type BudgetItem struct {
	ID        string
	Treatment Treatment
	Quantity  int
	Discount  decimal.Decimal // percent, 0-100
}

// NewBudgetItem builds an item, clamping quantity to >= 1 and discount to
// the 0-100 range. The item ID is unique and stable for its lifetime.
func NewBudgetItem(t Treatment, quantity int, discount decimal.Decimal) *BudgetItem {
	if quantity < 1 {
		quantity = 1
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(oneHundred) {
		discount = oneHundred
	}
	return &BudgetItem{
		ID:        uuid.NewString(),
		Treatment: t,
		Quantity:  quantity,
		Discount:  discount,
	}
}

// SubtotalWithoutDiscount is price x quantity.
func (it *BudgetItem) SubtotalWithoutDiscount() decimal.Decimal {
	return it.Treatment.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// DiscountAmount is the discounted share of the gross subtotal.
func (it *BudgetItem) DiscountAmount() decimal.Decimal {
	return it.SubtotalWithoutDiscount().Mul(it.Discount).Div(oneHundred)
}

// Subtotal is the line total with the discount applied.
func (it *BudgetItem) Subtotal() decimal.Decimal {
	return it.SubtotalWithoutDiscount().Sub(it.DiscountAmount())
}

// Budget is the in-progress treatment plan being edited: patient data, a
// date, the ordered line items (insertion order is print order) and the tax
// rate and currency applied to the whole document.
type Budget struct {
	Code              string
	PatientName       string
	PatientDNI        string
	PatientAddress    string
	PatientRegion     string
	PatientPostalCode string
	PatientEmail      string
	PatientPhone      string
	Date              time.Time
	Items             []*BudgetItem
	IVARate           decimal.Decimal
	CurrencySymbol    string
}

// NewBudget returns an empty budget with a fresh code and today's date.
func NewBudget() *Budget {
	return &Budget{
		Code:           newBudgetCode(""),
		Date:           time.Now(),
		IVARate:        DefaultIVARate,
		CurrencySymbol: DefaultCurrencySymbol,
	}
}

// newBudgetCode derives a zero-padded 3-digit code from the clock. The
// previous code is passed so that a reset within the same millisecond window
// still produces a different identity.
func newBudgetCode(previous string) string {
	code := fmt.Sprintf("%03d", time.Now().UnixMilli()%1000)
	if code == previous {
		n := (time.Now().UnixMilli() + 1) % 1000
		code = fmt.Sprintf("%03d", n)
	}
	return code
}

// SetPatientName assigns the trimmed patient name.
func (b *Budget) SetPatientName(name string) { b.PatientName = strings.TrimSpace(name) }

// SetPatientDNI assigns the trimmed national ID.
func (b *Budget) SetPatientDNI(dni string) { b.PatientDNI = strings.TrimSpace(dni) }

// SetPatientAddress assigns the trimmed street address.
func (b *Budget) SetPatientAddress(address string) { b.PatientAddress = strings.TrimSpace(address) }

// SetPatientRegion assigns the trimmed region (comunidad).
func (b *Budget) SetPatientRegion(region string) { b.PatientRegion = strings.TrimSpace(region) }

// SetPatientPostalCode assigns the trimmed postal code.
func (b *Budget) SetPatientPostalCode(pc string) { b.PatientPostalCode = strings.TrimSpace(pc) }

// SetPatientEmail assigns the trimmed email address.
func (b *Budget) SetPatientEmail(email string) { b.PatientEmail = strings.TrimSpace(email) }

// SetPatientPhone assigns the trimmed phone number.
func (b *Budget) SetPatientPhone(phone string) { b.PatientPhone = strings.TrimSpace(phone) }

// SetDate assigns the budget date.
func (b *Budget) SetDate(date time.Time) { b.Date = date }

// SetIVARate assigns the tax rate percentage; negative rates reset to the
// default.
func (b *Budget) SetIVARate(rate decimal.Decimal) {
	if rate.IsNegative() {
		rate = DefaultIVARate
	}
	b.IVARate = rate
}

// AddItem appends a new line item and returns it.
func (b *Budget) AddItem(t Treatment, quantity int, discount decimal.Decimal) *BudgetItem {
	item := NewBudgetItem(t, quantity, discount)
	b.Items = append(b.Items, item)
	return item
}

// RemoveItem removes the first item with the given ID, reporting whether a
// removal occurred.
func (b *Budget) RemoveItem(itemID string) bool {
	for i, it := range b.Items {
		if it.ID == itemID {
			b.Items = append(b.Items[:i], b.Items[i+1:]...)
			return true
		}
	}
	return false
}

// ClearItems drops every line item.
func (b *Budget) ClearItems() { b.Items = nil }

// ItemCount returns the number of line items.
func (b *Budget) ItemCount() int { return len(b.Items) }

// Subtotal sums every item subtotal. Computed on demand, never cached.
func (b *Budget) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range b.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// IVA is the tax amount on the current subtotal.
func (b *Budget) IVA() decimal.Decimal {
	return b.Subtotal().Mul(b.IVARate).Div(oneHundred)
}

// Total is subtotal plus tax.
func (b *Budget) Total() decimal.Decimal {
	return b.Subtotal().Add(b.IVA())
}

// SubtotalWithoutDiscount sums the gross line subtotals before any discount.
func (b *Budget) SubtotalWithoutDiscount() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range b.Items {
		sum = sum.Add(it.SubtotalWithoutDiscount())
	}
	return sum
}

// DiscountTotal is the total amount discounted across all items.
func (b *Budget) DiscountTotal() decimal.Decimal {
	return b.SubtotalWithoutDiscount().Sub(b.Subtotal())
}

// Summary returns the canonical read model consumed by the line-item view
// and the document renderer.
func (b *Budget) Summary() Summary {
	subtotal := b.Subtotal()
	iva := b.IVA()
	total := b.Total()
	return Summary{
		PatientName:       b.PatientName,
		Date:              format.Date(b.Date),
		ItemCount:         b.ItemCount(),
		Subtotal:          subtotal,
		SubtotalFormatted: format.Currency(subtotal, b.CurrencySymbol),
		IVA:               iva,
		IVAFormatted:      format.Currency(iva, b.CurrencySymbol),
		Total:             total,
		TotalFormatted:    format.Currency(total, b.CurrencySymbol),
		IVARate:           b.IVARate,
	}
}

// Reset clears the budget in place: new code, empty patient fields, empty
// items, today's date. Tax rate and currency are preserved; callers that
// configure them reapply after reset.
func (b *Budget) Reset() {
	b.Code = newBudgetCode(b.Code)
	b.PatientName = ""
	b.PatientDNI = ""
	b.PatientAddress = ""
	b.PatientRegion = ""
	b.PatientPostalCode = ""
	b.PatientEmail = ""
	b.PatientPhone = ""
	b.Date = time.Now()
	b.Items = nil
}
