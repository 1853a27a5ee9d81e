package model

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func sampleTreatment(t *testing.T, id, name, price string) Treatment {
	t.Helper()
	return Treatment{
		ID:       id,
		Name:     name,
		Category: "General",
		Price:    dec(t, price),
	}
}

func TestBudgetItem_Arithmetic(t *testing.T) {
	tests := []struct {
		name         string
		price        string
		quantity     int
		discount     string
		wantGross    string
		wantDiscount string
		wantSubtotal string
	}{
		{"no discount", "50.00", 2, "0", "100", "0", "100"},
		{"ten percent", "50.00", 2, "10", "100", "10", "90"},
		{"full discount", "80.00", 1, "100", "80", "80", "0"},
		{"fractional price", "19.99", 3, "5", "59.97", "2.9985", "56.9715"},
		{"zero price", "0", 4, "50", "0", "0", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := NewBudgetItem(sampleTreatment(t, "T1", "Limpieza", tc.price), tc.quantity, dec(t, tc.discount))

			if got := item.SubtotalWithoutDiscount(); !got.Equal(dec(t, tc.wantGross)) {
				t.Errorf("SubtotalWithoutDiscount = %s, want %s", got, tc.wantGross)
			}
			if got := item.DiscountAmount(); !got.Equal(dec(t, tc.wantDiscount)) {
				t.Errorf("DiscountAmount = %s, want %s", got, tc.wantDiscount)
			}
			if got := item.Subtotal(); !got.Equal(dec(t, tc.wantSubtotal)) {
				t.Errorf("Subtotal = %s, want %s", got, tc.wantSubtotal)
			}
		})
	}
}

func TestNewBudgetItem_Clamps(t *testing.T) {
	tr := sampleTreatment(t, "T1", "Limpieza", "50")

	item := NewBudgetItem(tr, 0, dec(t, "-5"))
	if item.Quantity != 1 {
		t.Errorf("quantity clamped to %d, want 1", item.Quantity)
	}
	if !item.Discount.IsZero() {
		t.Errorf("negative discount clamped to %s, want 0", item.Discount)
	}

	item = NewBudgetItem(tr, -3, dec(t, "150"))
	if item.Quantity != 1 {
		t.Errorf("quantity clamped to %d, want 1", item.Quantity)
	}
	if !item.Discount.Equal(dec(t, "100")) {
		t.Errorf("oversized discount clamped to %s, want 100", item.Discount)
	}
}

func TestBudgetItem_UniqueIDs(t *testing.T) {
	tr := sampleTreatment(t, "T1", "Limpieza", "50")
	a := NewBudgetItem(tr, 1, decimal.Zero)
	b := NewBudgetItem(tr, 1, decimal.Zero)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("item IDs not unique: %q vs %q", a.ID, b.ID)
	}
}

// The end-to-end scenario from the clinic's reference invoice: one item at
// 50.00 x 2 with a 10% discount and 21% IVA.
func TestBudget_AnaPerezScenario(t *testing.T) {
	b := NewBudget()
	b.SetPatientName("Ana Pérez")
	b.AddItem(sampleTreatment(t, "T1", "Limpieza dental", "50.00"), 2, dec(t, "10"))

	if got := b.Subtotal(); !got.Equal(dec(t, "90")) {
		t.Errorf("Subtotal = %s, want 90", got)
	}
	if got := b.IVA(); !got.Equal(dec(t, "18.9")) {
		t.Errorf("IVA = %s, want 18.9", got)
	}
	if got := b.Total(); !got.Equal(dec(t, "108.9")) {
		t.Errorf("Total = %s, want 108.9", got)
	}

	s := b.Summary()
	if s.SubtotalFormatted != "90,00 €" {
		t.Errorf("SubtotalFormatted = %q, want %q", s.SubtotalFormatted, "90,00 €")
	}
	if s.IVAFormatted != "18,90 €" {
		t.Errorf("IVAFormatted = %q, want %q", s.IVAFormatted, "18,90 €")
	}
	if s.TotalFormatted != "108,90 €" {
		t.Errorf("TotalFormatted = %q, want %q", s.TotalFormatted, "108,90 €")
	}
	if s.ItemCount != 1 {
		t.Errorf("ItemCount = %d, want 1", s.ItemCount)
	}
}

func TestBudget_TotalsConsistentAcrossMutations(t *testing.T) {
	b := NewBudget()
	b.SetIVARate(dec(t, "21"))

	check := func() {
		t.Helper()
		want := b.Subtotal().Add(b.Subtotal().Mul(dec(t, "21")).Div(dec(t, "100")))
		if got := b.Total(); !got.Equal(want) {
			t.Errorf("Total = %s, want subtotal+tax = %s", got, want)
		}
	}

	check()
	first := b.AddItem(sampleTreatment(t, "T1", "Limpieza", "50"), 2, dec(t, "10"))
	check()
	b.AddItem(sampleTreatment(t, "T2", "Empaste", "75.50"), 1, decimal.Zero)
	check()
	b.RemoveItem(first.ID)
	check()
	b.ClearItems()
	check()
}

func TestBudget_RemoveItem(t *testing.T) {
	b := NewBudget()
	item := b.AddItem(sampleTreatment(t, "T1", "Limpieza", "50"), 1, decimal.Zero)
	b.AddItem(sampleTreatment(t, "T2", "Empaste", "75"), 1, decimal.Zero)

	if b.RemoveItem("no-such-id") {
		t.Error("RemoveItem on missing id returned true")
	}
	if b.ItemCount() != 2 {
		t.Errorf("ItemCount = %d after failed removal, want 2", b.ItemCount())
	}

	if !b.RemoveItem(item.ID) {
		t.Error("RemoveItem on existing id returned false")
	}
	if b.ItemCount() != 1 {
		t.Errorf("ItemCount = %d after removal, want 1", b.ItemCount())
	}
	if b.RemoveItem(item.ID) {
		t.Error("second removal of same id returned true")
	}
}

func TestBudget_Reset(t *testing.T) {
	b := NewBudget()
	prevCode := b.Code
	b.SetPatientName("Ana Pérez")
	b.AddItem(sampleTreatment(t, "T1", "Limpieza", "50"), 1, decimal.Zero)

	b.Reset()

	if b.Code == prevCode {
		t.Errorf("reset kept budget code %q", b.Code)
	}
	if !regexp.MustCompile(`^\d{3}$`).MatchString(b.Code) {
		t.Errorf("budget code %q not a zero-padded 3-digit string", b.Code)
	}
	if b.PatientName != "" {
		t.Errorf("PatientName = %q after reset, want empty", b.PatientName)
	}
	if b.ItemCount() != 0 {
		t.Errorf("ItemCount = %d after reset, want 0", b.ItemCount())
	}
}

func TestBudget_SettersTrim(t *testing.T) {
	b := NewBudget()
	b.SetPatientName("  Ana Pérez  ")
	b.SetPatientDNI(" 12345678Z ")
	b.SetPatientEmail(" ana@example.com ")

	if b.PatientName != "Ana Pérez" {
		t.Errorf("PatientName = %q, want trimmed", b.PatientName)
	}
	if b.PatientDNI != "12345678Z" {
		t.Errorf("PatientDNI = %q, want trimmed", b.PatientDNI)
	}
	if b.PatientEmail != "ana@example.com" {
		t.Errorf("PatientEmail = %q, want trimmed", b.PatientEmail)
	}
}

func TestBudget_Validate(t *testing.T) {
	b := NewBudget()

	err := b.Validate()
	if err == nil {
		t.Fatal("Validate on empty budget returned nil")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("Validate returned %T, want *ValidationError", err)
	}
	if len(verr.Messages) != 2 {
		t.Fatalf("got %d validation messages, want 2: %v", len(verr.Messages), verr.Messages)
	}
	if verr.Messages[0] != MsgPatientNameRequired || verr.Messages[1] != MsgNoTreatments {
		t.Errorf("unexpected messages: %v", verr.Messages)
	}

	b.SetPatientName("Ana Pérez")
	b.AddItem(sampleTreatment(t, "T1", "Limpieza", "50"), 1, decimal.Zero)
	if err := b.Validate(); err != nil {
		t.Errorf("Validate on complete budget = %v, want nil", err)
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	b := NewBudget()
	b.SetPatientName("Ana Pérez")
	b.SetPatientDNI("12345678Z")
	b.SetPatientAddress("Calle Mayor 1")
	b.SetPatientRegion("Madrid")
	b.SetPatientPostalCode("28001")
	b.SetPatientEmail("ana@example.com")
	b.SetPatientPhone("600123456")
	b.SetDate(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	b.AddItem(sampleTreatment(t, "T1", "Limpieza dental", "50.00"), 2, dec(t, "10"))
	b.AddItem(sampleTreatment(t, "T2", "Empaste composite", "75.50"), 1, decimal.Zero)

	rec := b.Export()

	// Through JSON and back, like the history store does.
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	var stored Record
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}

	rebuilt := FromRecord(stored)
	rec2 := rebuilt.Export()

	if len(rec2.Items) != len(rec.Items) {
		t.Fatalf("item count after round trip = %d, want %d", len(rec2.Items), len(rec.Items))
	}
	for i := range rec.Items {
		a, b := rec.Items[i], rec2.Items[i]
		if a.Treatment.ID != b.Treatment.ID || a.Quantity != b.Quantity {
			t.Errorf("item %d identity changed: %+v vs %+v", i, a, b)
		}
		if !a.Subtotal.Equal(b.Subtotal) || !a.DiscountAmount.Equal(b.DiscountAmount) {
			t.Errorf("item %d re-derived amounts differ: %s/%s vs %s/%s",
				i, a.Subtotal, a.DiscountAmount, b.Subtotal, b.DiscountAmount)
		}
	}

	if !rec2.Summary.Subtotal.Equal(rec.Summary.Subtotal) ||
		!rec2.Summary.IVA.Equal(rec.Summary.IVA) ||
		!rec2.Summary.Total.Equal(rec.Summary.Total) {
		t.Errorf("summary changed after round trip: %+v vs %+v", rec.Summary, rec2.Summary)
	}
	if rec2.Summary.TotalFormatted != rec.Summary.TotalFormatted {
		t.Errorf("formatted total changed: %q vs %q", rec.Summary.TotalFormatted, rec2.Summary.TotalFormatted)
	}
	if rec2.BudgetCode != rec.BudgetCode {
		t.Errorf("budget code changed: %q vs %q", rec.BudgetCode, rec2.BudgetCode)
	}
}

func TestFromRecord_RederivesTotals(t *testing.T) {
	rec := Record{
		BudgetCode:     "042",
		PatientName:    "Ana Pérez",
		IVARate:        dec(t, "21"),
		CurrencySymbol: "€",
		Items: []ItemRecord{{
			Treatment: Treatment{ID: "T1", Name: "Limpieza", Price: dec(t, "50")},
			Quantity:  2,
			Discount:  dec(t, "10"),
			// Stored computed values are wrong on purpose; they must be ignored.
			SubtotalWithoutDiscount: dec(t, "999"),
			DiscountAmount:          dec(t, "999"),
			Subtotal:                dec(t, "999"),
		}},
	}

	b := FromRecord(rec)
	if got := b.Subtotal(); !got.Equal(dec(t, "90")) {
		t.Errorf("Subtotal = %s, want re-derived 90", got)
	}
	if got := b.Total(); !got.Equal(dec(t, "108.9")) {
		t.Errorf("Total = %s, want re-derived 108.9", got)
	}
}
