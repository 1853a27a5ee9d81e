package budget

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bukodent/presu/internal/model"
)

func newTestService() *Service {
	return NewService(decimal.NewFromInt(21), "€")
}

func limpieza() model.Treatment {
	return model.Treatment{
		ID:       "T001",
		Name:     "Limpieza dental",
		Category: "Higiene",
		Price:    decimal.NewFromInt(50),
	}
}

func TestService_NotifiesPerMutation(t *testing.T) {
	s := newTestService()

	var calls int
	s.Subscribe(func(_ *model.Budget, _ model.Summary) { calls++ })

	s.SetPatientName("Ana Pérez")
	s.SetPatientDNI("12345678Z")
	s.AddTreatment(limpieza(), 1, decimal.Zero)

	if calls != 3 {
		t.Errorf("observer called %d times, want 3 (one per mutation)", calls)
	}
}

func TestService_NotifiesInRegistrationOrder(t *testing.T) {
	s := newTestService()

	var order []string
	s.Subscribe(func(_ *model.Budget, _ model.Summary) { order = append(order, "first") })
	s.Subscribe(func(_ *model.Budget, _ model.Summary) { order = append(order, "second") })
	s.Subscribe(func(_ *model.Budget, _ model.Summary) { order = append(order, "third") })

	s.SetPatientName("Ana")

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestService_PanickingObserverDoesNotStopOthers(t *testing.T) {
	s := newTestService()

	var after bool
	s.Subscribe(func(_ *model.Budget, _ model.Summary) { panic("boom") })
	s.Subscribe(func(_ *model.Budget, _ model.Summary) { after = true })

	s.SetPatientName("Ana")

	if !after {
		t.Error("observer registered after the panicking one never ran")
	}
	if s.Current().PatientName != "Ana" {
		t.Error("mutation rolled back by observer panic")
	}
}

func TestService_Unsubscribe(t *testing.T) {
	s := newTestService()

	var calls int
	unsub := s.Subscribe(func(_ *model.Budget, _ model.Summary) { calls++ })

	s.SetPatientName("Ana")
	unsub()
	s.SetPatientName("Eva")
	unsub() // idempotent

	if calls != 1 {
		t.Errorf("observer called %d times, want 1", calls)
	}
}

func TestService_ObserverSeesFreshSummary(t *testing.T) {
	s := newTestService()

	var last model.Summary
	s.Subscribe(func(_ *model.Budget, sum model.Summary) { last = sum })

	s.AddTreatment(limpieza(), 2, decimal.NewFromInt(10))

	if last.SubtotalFormatted != "90,00 €" {
		t.Errorf("observer summary subtotal = %q, want 90,00 €", last.SubtotalFormatted)
	}
	if last.TotalFormatted != "108,90 €" {
		t.Errorf("observer summary total = %q, want 108,90 €", last.TotalFormatted)
	}
}

func TestService_RemoveTreatment(t *testing.T) {
	s := newTestService()
	item := s.AddTreatment(limpieza(), 1, decimal.Zero)

	var calls int
	s.Subscribe(func(_ *model.Budget, _ model.Summary) { calls++ })

	if s.RemoveTreatment("missing") {
		t.Error("RemoveTreatment(missing) returned true")
	}
	if calls != 0 {
		t.Errorf("no-op removal notified %d times, want 0", calls)
	}

	if !s.RemoveTreatment(item.ID) {
		t.Error("RemoveTreatment(existing) returned false")
	}
	if calls != 1 {
		t.Errorf("removal notified %d times, want 1", calls)
	}
}

func TestService_UpdateTreatment(t *testing.T) {
	s := newTestService()
	item := s.AddTreatment(limpieza(), 1, decimal.Zero)

	if !s.UpdateTreatment(item.ID, 3, decimal.NewFromInt(200)) {
		t.Fatal("UpdateTreatment(existing) returned false")
	}
	got := s.Current().Items[0]
	if got.Quantity != 3 {
		t.Errorf("Quantity = %d, want 3", got.Quantity)
	}
	if !got.Discount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Discount = %s, want clamped 100", got.Discount)
	}
	if got.ID != item.ID {
		t.Error("item identity changed by update")
	}

	if s.UpdateTreatment("missing", 1, decimal.Zero) {
		t.Error("UpdateTreatment(missing) returned true")
	}
}

func TestService_Reset(t *testing.T) {
	s := newTestService()
	s.SetPatientName("Ana Pérez")
	s.AddTreatment(limpieza(), 1, decimal.Zero)
	prevCode := s.Current().Code

	s.Reset()

	b := s.Current()
	if b.Code == prevCode {
		t.Error("reset kept the budget code")
	}
	if b.PatientName != "" || b.ItemCount() != 0 {
		t.Error("reset left patient data or items behind")
	}
	if !b.IVARate.Equal(decimal.NewFromInt(21)) {
		t.Errorf("IVARate = %s after reset, want 21", b.IVARate)
	}
	if b.CurrencySymbol != "€" {
		t.Errorf("CurrencySymbol = %q after reset", b.CurrencySymbol)
	}
}

func TestService_ValidateBeforeExport(t *testing.T) {
	s := newTestService()

	err := s.Validate()
	if err == nil {
		t.Fatal("Validate on empty budget returned nil")
	}
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error type %T, want *model.ValidationError", err)
	}

	s.SetPatientName("Ana Pérez")
	s.AddTreatment(limpieza(), 1, decimal.Zero)
	if err := s.Validate(); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestService_LoadRecord(t *testing.T) {
	s := newTestService()
	s.SetPatientName("Ana Pérez")
	s.AddTreatment(limpieza(), 2, decimal.NewFromInt(10))
	rec := s.Export()

	s.Reset()
	if s.Current().ItemCount() != 0 {
		t.Fatal("reset failed")
	}

	var calls int
	s.Subscribe(func(_ *model.Budget, _ model.Summary) { calls++ })
	s.LoadRecord(rec)

	b := s.Current()
	if b.Code != rec.BudgetCode {
		t.Errorf("Code = %q, want %q", b.Code, rec.BudgetCode)
	}
	if b.PatientName != "Ana Pérez" {
		t.Errorf("PatientName = %q", b.PatientName)
	}
	if b.ItemCount() != 1 {
		t.Errorf("ItemCount = %d, want 1", b.ItemCount())
	}
	if got := b.Summary().TotalFormatted; got != "108,90 €" {
		t.Errorf("reloaded total = %q, want 108,90 €", got)
	}
	if calls != 1 {
		t.Errorf("LoadRecord notified %d times, want 1", calls)
	}
}
