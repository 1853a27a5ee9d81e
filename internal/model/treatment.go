// Package model defines the dental budget domain types: catalog treatments,
// the budget aggregate and its line items, and the export record format.
package model

import (
	"github.com/shopspring/decimal"

	"github.com/bukodent/presu/internal/format"
)

// Treatment is a priced catalog entry. Treatments are immutable once loaded;
// the catalog owns them and budgets embed value snapshots.
//
// JSON tags match the catalog data file, which keeps the original Spanish
// field names.
type Treatment struct {
	ID          string          `json:"id"`
	Name        string          `json:"nombre"`
	Category    string          `json:"categoria"`
	Price       decimal.Decimal `json:"precio"`
	Description string          `json:"descripcion,omitempty"`
}

// Valid reports whether the treatment has the minimum required data.
func (t Treatment) Valid() bool {
	return t.ID != "" && t.Name != "" && !t.Price.IsNegative()
}

// FormattedPrice returns the unit price with the currency symbol.
func (t Treatment) FormattedPrice(symbol string) string {
	return format.Currency(t.Price, symbol)
}
