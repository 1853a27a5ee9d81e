package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/bukodent/presu/internal/format"
	"github.com/bukodent/presu/internal/model"
	"github.com/bukodent/presu/internal/tui/theme"
)

type editKind int

const (
	editField editKind = iota
	editDiscount
)

type composeState struct {
	cursor   int
	editing  bool
	editKind editKind
	editItem string // item ID when editing a discount
	input    textinput.Model
}

func newComposeState() composeState {
	return composeState{}
}

var patientFieldLabels = []string{
	"Paciente",
	"DNI",
	"Dirección",
	"Provincia",
	"Código postal",
	"Email",
	"Teléfono",
	"Fecha",
}

func patientFieldValue(b *model.Budget, idx int) string {
	switch idx {
	case 0:
		return b.PatientName
	case 1:
		return b.PatientDNI
	case 2:
		return b.PatientAddress
	case 3:
		return b.PatientRegion
	case 4:
		return b.PatientPostalCode
	case 5:
		return b.PatientEmail
	case 6:
		return b.PatientPhone
	case 7:
		return format.Date(b.Date)
	}
	return ""
}

func (a *App) setPatientField(idx int, value string) error {
	switch idx {
	case 0:
		a.svc.SetPatientName(value)
	case 1:
		a.svc.SetPatientDNI(value)
	case 2:
		a.svc.SetPatientAddress(value)
	case 3:
		a.svc.SetPatientRegion(value)
	case 4:
		a.svc.SetPatientPostalCode(value)
	case 5:
		a.svc.SetPatientEmail(value)
	case 6:
		a.svc.SetPatientPhone(value)
	case 7:
		d, err := format.ParseDate(value)
		if err != nil {
			return fmt.Errorf("fecha no válida, use DD/MM/AAAA")
		}
		a.svc.SetDate(d)
	}
	return nil
}

func newEditInput(value, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 120
	ti.Width = 40
	ti.SetValue(value)
	ti.CursorEnd()
	return ti
}

func (a App) composeRowCount() int {
	return len(patientFieldLabels) + a.svc.Current().ItemCount()
}

func (a App) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	b := a.svc.Current()
	fieldCount := len(patientFieldLabels)

	switch key {
	case "j", "down":
		if a.compose.cursor < a.composeRowCount()-1 {
			a.compose.cursor++
		}
		return a, nil

	case "k", "up":
		if a.compose.cursor > 0 {
			a.compose.cursor--
		}
		return a, nil

	case "enter":
		if a.compose.cursor < fieldCount {
			idx := a.compose.cursor
			a.compose.editing = true
			a.compose.editKind = editField
			a.compose.input = newEditInput(patientFieldValue(b, idx), patientFieldLabels[idx])
			a.compose.input.Focus()
			return a, a.compose.input.Cursor.BlinkCmd()
		}
		item := b.Items[a.compose.cursor-fieldCount]
		a.compose.editing = true
		a.compose.editKind = editDiscount
		a.compose.editItem = item.ID
		a.compose.input = newEditInput(format.Rate(item.Discount), "% descuento")
		a.compose.input.Focus()
		return a, a.compose.input.Cursor.BlinkCmd()

	case "+", "=":
		if it := a.itemUnderCursor(); it != nil {
			a.svc.UpdateTreatment(it.ID, it.Quantity+1, it.Discount)
		}
		return a, nil

	case "-":
		if it := a.itemUnderCursor(); it != nil && it.Quantity > 1 {
			a.svc.UpdateTreatment(it.ID, it.Quantity-1, it.Discount)
		}
		return a, nil

	case "d":
		if it := a.itemUnderCursor(); it != nil {
			name := it.Treatment.Name
			a.svc.RemoveTreatment(it.ID)
			if a.compose.cursor >= a.composeRowCount() && a.compose.cursor > 0 {
				a.compose.cursor--
			}
			a.setStatus("Quitado: " + name)
		}
		return a, nil

	case "a":
		a.activeTab = 1
		return a, nil

	case "g":
		a.exportPDF()
		return a, nil

	case "s":
		if err := a.svc.Validate(); err != nil {
			a.setError(err.Error())
			return a, nil
		}
		if a.hist == nil {
			a.setError("Historial no disponible")
			return a, nil
		}
		if err := a.hist.Save(a.svc.Export()); err != nil {
			a.setError("No se pudo archivar: " + err.Error())
			return a, nil
		}
		a.setStatus("Presupuesto " + b.Code + " archivado")
		return a, nil

	case "n":
		return a, a.startConfirm(confirmReset, "",
			"¿Crear un presupuesto nuevo? Se perderán los datos actuales.")
	}

	return a, nil
}

func (a *App) itemUnderCursor() *model.BudgetItem {
	b := a.svc.Current()
	idx := a.compose.cursor - len(patientFieldLabels)
	if idx < 0 || idx >= len(b.Items) {
		return nil
	}
	return b.Items[idx]
}

func (a App) updateComposeEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(a.compose.input.Value())
		a.compose.editing = false

		if a.compose.editKind == editField {
			if err := a.setPatientField(a.compose.cursor, value); err != nil {
				a.setError(err.Error())
			}
			return a, nil
		}

		// Discount edit; empty input means no discount
		pct := decimal.Zero
		if value != "" {
			parsed, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
			if err != nil {
				a.setError("Descuento no válido")
				return a, nil
			}
			pct = parsed
		}
		if it := a.findItem(a.compose.editItem); it != nil {
			a.svc.UpdateTreatment(it.ID, it.Quantity, pct)
		}
		return a, nil

	case "esc":
		a.compose.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.compose.input, cmd = a.compose.input.Update(msg)
	return a, cmd
}

func (a *App) findItem(id string) *model.BudgetItem {
	for _, it := range a.svc.Current().Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (a App) viewCompose(height int) string {
	t := theme.Active
	b := a.svc.Current()
	s := b.Summary()
	fieldCount := len(patientFieldLabels)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	selStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	amountStyle := lipgloss.NewStyle().Foreground(t.Green)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange)

	var out strings.Builder
	out.WriteString("\n  ")
	out.WriteString(titleStyle.Render("Presupuesto " + b.Code))
	out.WriteString("\n\n")

	// Patient fields
	for i, label := range patientFieldLabels {
		marker := "  "
		style := valueStyle
		if i == a.compose.cursor {
			marker = selStyle.Render("▸ ")
			style = selStyle
		}

		if a.compose.editing && a.compose.editKind == editField && i == a.compose.cursor {
			fmt.Fprintf(&out, "  %s%s %s\n", marker,
				labelStyle.Render(fmt.Sprintf("%-14s", label)),
				a.compose.input.View())
			continue
		}

		value := patientFieldValue(b, i)
		if value == "" {
			fmt.Fprintf(&out, "  %s%s %s\n", marker,
				labelStyle.Render(fmt.Sprintf("%-14s", label)),
				dimStyle.Render("-"))
			continue
		}
		fmt.Fprintf(&out, "  %s%s %s\n", marker,
			labelStyle.Render(fmt.Sprintf("%-14s", label)),
			style.Render(value))
	}

	// Items
	out.WriteString("\n  ")
	out.WriteString(labelStyle.Render("Tratamientos"))
	out.WriteString("\n")

	if len(b.Items) == 0 {
		out.WriteString("    ")
		out.WriteString(dimStyle.Render("Sin tratamientos. Pulse [a] para abrir el catálogo."))
		out.WriteString("\n")
	}

	for i, it := range b.Items {
		row := fieldCount + i
		marker := "  "
		style := valueStyle
		if row == a.compose.cursor {
			marker = selStyle.Render("▸ ")
			style = selStyle
		}

		discount := ""
		if it.Discount.Sign() > 0 {
			discount = warnStyle.Render(fmt.Sprintf(" -%s%%", format.Rate(it.Discount)))
		}
		if a.compose.editing && a.compose.editKind == editDiscount && it.ID == a.compose.editItem {
			discount = " dto: " + a.compose.input.View()
		}

		fmt.Fprintf(&out, "  %s%s %s%s %s\n",
			marker,
			style.Render(fmt.Sprintf("%-32s", truncStr(it.Treatment.Name, 32))),
			labelStyle.Render(fmt.Sprintf("x%-3d", it.Quantity)),
			discount,
			amountStyle.Render(format.Currency(it.Subtotal(), b.CurrencySymbol)),
		)
	}

	// Totals
	out.WriteString("\n")
	fmt.Fprintf(&out, "  %s %s\n",
		labelStyle.Render(fmt.Sprintf("%-20s", "Base imponible")),
		valueStyle.Render(s.SubtotalFormatted))
	fmt.Fprintf(&out, "  %s %s\n",
		labelStyle.Render(fmt.Sprintf("%-20s", fmt.Sprintf("IVA (%s%%)", format.Rate(b.IVARate)))),
		valueStyle.Render(s.IVAFormatted))
	fmt.Fprintf(&out, "  %s %s\n",
		labelStyle.Render(fmt.Sprintf("%-20s", "TOTAL")),
		amountStyle.Bold(true).Render(s.TotalFormatted))

	out.WriteString("\n  ")
	out.WriteString(dimStyle.Render("[Enter]editar  [+/-]cantidad  [d]quitar  [a]añadir  [g]PDF  [s]archivar  [n]nuevo"))
	out.WriteString("\n")

	return out.String()
}
