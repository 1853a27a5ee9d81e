package cli

import (
	"fmt"
	"strconv"

	"github.com/bukodent/presu/internal/format"
	"github.com/bukodent/presu/internal/history"
	"github.com/bukodent/presu/internal/model"
)

// CatalogTable builds the treatment catalog listing.
func CatalogTable(treatments []model.Treatment, symbol string) Table {
	rows := make([][]string, 0, len(treatments))
	for _, t := range treatments {
		rows = append(rows, []string{
			t.ID,
			format.Truncate(t.Name, 40),
			t.Category,
			format.Currency(t.Price, symbol),
		})
	}
	return Table{
		Title:   "Catálogo de tratamientos",
		Headers: []string{"ID", "Tratamiento", "Categoría", "Precio"},
		Rows:    rows,
	}
}

// HistoryTable builds the saved-budget listing.
func HistoryTable(entries []history.Entry) Table {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Record.BudgetCode,
			format.Truncate(e.Record.PatientName, 30),
			format.Date(e.Record.Date),
			format.Currency(e.Record.Summary.Total, e.Record.CurrencySymbol),
		})
	}
	return Table{
		Title:   "Historial de presupuestos",
		Headers: []string{"Nº", "Paciente", "Fecha", "Total"},
		Rows:    rows,
	}
}

// BudgetView renders a full budget: patient block, item table, totals.
func BudgetView(b *model.Budget) string {
	s := b.Summary()

	out := RenderKeyValues([][2]string{
		{"Presupuesto", b.Code},
		{"Paciente", orDash(b.PatientName)},
		{"DNI", orDash(b.PatientDNI)},
		{"Fecha", format.Date(b.Date)},
	})
	out += "\n"

	rows := make([][]string, 0, len(b.Items))
	for _, it := range b.Items {
		discount := "-"
		if it.Discount.Sign() > 0 {
			discount = format.Rate(it.Discount) + "%"
		}
		rows = append(rows, []string{
			format.Truncate(it.Treatment.Name, 40),
			strconv.Itoa(it.Quantity),
			format.Currency(it.Treatment.Price, b.CurrencySymbol),
			discount,
			format.Currency(it.Subtotal(), b.CurrencySymbol),
		})
	}
	out += RenderTable(Table{
		Headers: []string{"Tratamiento", "Cant.", "Precio", "Dto.", "Importe"},
		Rows:    rows,
	})
	out += "\n"

	totals := [][2]string{
		{"Base imponible", s.SubtotalFormatted},
		{fmt.Sprintf("IVA (%s%%)", format.Rate(b.IVARate)), s.IVAFormatted},
		{"TOTAL", RenderAmount(s.TotalFormatted)},
	}
	if b.DiscountTotal().Sign() > 0 {
		totals = append([][2]string{
			{"Importe bruto", format.Currency(b.SubtotalWithoutDiscount(), b.CurrencySymbol)},
			{"Descuento", "-" + format.Currency(b.DiscountTotal(), b.CurrencySymbol)},
		}, totals...)
	}
	out += RenderKeyValues(totals)
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
