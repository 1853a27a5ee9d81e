// Package budget holds the single live budget being edited and notifies
// registered observers after every mutation.
package budget

import (
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bukodent/presu/internal/model"
)

// Observer receives the current budget and its freshly computed summary
// after each mutation. Observers run synchronously, in registration order.
type Observer func(b *model.Budget, s model.Summary)

type registration struct {
	id int
	fn Observer
}

// Service owns the session's budget. Construct one at startup and pass it
// to every consumer; there is no ambient singleton.
type Service struct {
	mu       sync.Mutex
	current  *model.Budget
	ivaRate  decimal.Decimal
	currency string

	nextID    int
	observers []registration
}

// NewService creates the service with a fresh budget configured with the
// given tax rate and currency symbol.
func NewService(ivaRate decimal.Decimal, currencySymbol string) *Service {
	b := model.NewBudget()
	b.SetIVARate(ivaRate)
	b.CurrencySymbol = currencySymbol
	return &Service{
		current:  b,
		ivaRate:  ivaRate,
		currency: currencySymbol,
	}
}

// Current returns the live budget.
func (s *Service) Current() *model.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Summary computes the current read model.
func (s *Service) Summary() model.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Summary()
}

// Subscribe registers an observer and returns its unsubscribe handle.
// Unsubscribing is idempotent.
func (s *Service) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, registration{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, reg := range s.observers {
			if reg.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// notify invokes every observer with the budget and summary. A panicking
// observer is logged and skipped; it neither stops later observers nor rolls
// back the mutation.
func (s *Service) notify() {
	s.mu.Lock()
	b := s.current
	summary := b.Summary()
	regs := make([]registration, len(s.observers))
	copy(regs, s.observers)
	s.mu.Unlock()

	for _, reg := range regs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("presu: budget observer panicked: %v", r)
				}
			}()
			reg.fn(b, summary)
		}()
	}
}

// SetPatientName updates the patient name and notifies.
func (s *Service) SetPatientName(name string) {
	s.mu.Lock()
	s.current.SetPatientName(name)
	s.mu.Unlock()
	s.notify()
}

// SetPatientDNI updates the national ID and notifies.
func (s *Service) SetPatientDNI(dni string) {
	s.mu.Lock()
	s.current.SetPatientDNI(dni)
	s.mu.Unlock()
	s.notify()
}

// SetPatientAddress updates the address and notifies.
func (s *Service) SetPatientAddress(address string) {
	s.mu.Lock()
	s.current.SetPatientAddress(address)
	s.mu.Unlock()
	s.notify()
}

// SetPatientRegion updates the region and notifies.
func (s *Service) SetPatientRegion(region string) {
	s.mu.Lock()
	s.current.SetPatientRegion(region)
	s.mu.Unlock()
	s.notify()
}

// SetPatientPostalCode updates the postal code and notifies.
func (s *Service) SetPatientPostalCode(pc string) {
	s.mu.Lock()
	s.current.SetPatientPostalCode(pc)
	s.mu.Unlock()
	s.notify()
}

// SetPatientEmail updates the email and notifies.
func (s *Service) SetPatientEmail(email string) {
	s.mu.Lock()
	s.current.SetPatientEmail(email)
	s.mu.Unlock()
	s.notify()
}

// SetPatientPhone updates the phone and notifies.
func (s *Service) SetPatientPhone(phone string) {
	s.mu.Lock()
	s.current.SetPatientPhone(phone)
	s.mu.Unlock()
	s.notify()
}

// SetDate updates the budget date and notifies.
func (s *Service) SetDate(date time.Time) {
	s.mu.Lock()
	s.current.SetDate(date)
	s.mu.Unlock()
	s.notify()
}

// AddTreatment appends a line item and notifies.
func (s *Service) AddTreatment(t model.Treatment, quantity int, discount decimal.Decimal) *model.BudgetItem {
	s.mu.Lock()
	item := s.current.AddItem(t, quantity, discount)
	s.mu.Unlock()
	s.notify()
	return item
}

// RemoveTreatment removes an item by id. Observers are only notified when a
// removal actually occurred.
func (s *Service) RemoveTreatment(itemID string) bool {
	s.mu.Lock()
	removed := s.current.RemoveItem(itemID)
	s.mu.Unlock()
	if removed {
		s.notify()
	}
	return removed
}

// UpdateTreatment replaces an item's quantity and discount in place,
// keeping its identity and position. Reports whether the item was found.
func (s *Service) UpdateTreatment(itemID string, quantity int, discount decimal.Decimal) bool {
	s.mu.Lock()
	var found bool
	for _, it := range s.current.Items {
		if it.ID == itemID {
			if quantity < 1 {
				quantity = 1
			}
			if discount.IsNegative() {
				discount = decimal.Zero
			}
			if discount.GreaterThan(decimal.NewFromInt(100)) {
				discount = decimal.NewFromInt(100)
			}
			it.Quantity = quantity
			it.Discount = discount
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.notify()
	}
	return found
}

// ClearTreatments drops all items and notifies.
func (s *Service) ClearTreatments() {
	s.mu.Lock()
	s.current.ClearItems()
	s.mu.Unlock()
	s.notify()
}

// Reset replaces the budget content with a fresh identity, reapplying the
// configured tax rate and currency, and notifies.
func (s *Service) Reset() {
	s.mu.Lock()
	s.current.Reset()
	s.current.SetIVARate(s.ivaRate)
	s.current.CurrencySymbol = s.currency
	s.mu.Unlock()
	s.notify()
}

// Validate checks the budget is exportable. Always called before document
// generation.
func (s *Service) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Validate()
}

// Export snapshots the budget into its wire record.
func (s *Service) Export() model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Export()
}

// LoadRecord replaces the budget with one rebuilt from an archived record,
// reapplying the configured tax rate and currency, and notifies.
func (s *Service) LoadRecord(r model.Record) {
	s.mu.Lock()
	b := model.FromRecord(r)
	b.SetIVARate(s.ivaRate)
	b.CurrencySymbol = s.currency
	s.current = b
	s.mu.Unlock()
	s.notify()
}
