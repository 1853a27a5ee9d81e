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

type catalogState struct {
	cursor      int
	searching   bool
	searchInput textinput.Model
	query       string
}

func newCatalogState() catalogState {
	return catalogState{}
}

func newSearchInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 60
	ti.Width = 30
	return ti
}

// visibleTreatments applies the active search query.
func (a App) visibleTreatments() []model.Treatment {
	if a.catState.query == "" {
		return a.cat.Treatments()
	}
	return a.cat.Search(a.catState.query)
}

func (a App) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := a.visibleTreatments()

	switch msg.String() {
	case "j", "down":
		if a.catState.cursor < len(visible)-1 {
			a.catState.cursor++
		}
		return a, nil

	case "k", "up":
		if a.catState.cursor > 0 {
			a.catState.cursor--
		}
		return a, nil

	case "g":
		a.catState.cursor = 0
		return a, nil

	case "G":
		a.catState.cursor = len(visible) - 1
		if a.catState.cursor < 0 {
			a.catState.cursor = 0
		}
		return a, nil

	case "/":
		a.catState.searching = true
		a.catState.searchInput = newSearchInput("nombre o categoría")
		a.catState.searchInput.SetValue(a.catState.query)
		a.catState.searchInput.Focus()
		return a, a.catState.searchInput.Cursor.BlinkCmd()

	case "esc":
		if a.catState.query != "" {
			a.catState.query = ""
			a.catState.cursor = 0
		}
		return a, nil

	case "enter":
		if a.catState.cursor < len(visible) {
			t := visible[a.catState.cursor]
			a.svc.AddTreatment(t, 1, decimal.Zero)
			a.setStatus("Añadido: " + t.Name)
		}
		return a, nil
	}

	return a, nil
}

func (a App) updateCatalogSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.catState.query = strings.TrimSpace(a.catState.searchInput.Value())
		a.catState.searching = false
		a.catState.cursor = 0
		return a, nil

	case "esc":
		a.catState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.catState.searchInput, cmd = a.catState.searchInput.Update(msg)
	return a, cmd
}

func (a App) viewCatalog(height int) string {
	t := theme.Active
	visible := a.visibleTreatments()

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	selStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	amountStyle := lipgloss.NewStyle().Foreground(t.Green)

	var out strings.Builder
	out.WriteString("\n  ")
	out.WriteString(titleStyle.Render("Catálogo de tratamientos"))

	if a.catState.searching {
		out.WriteString("   ")
		out.WriteString(labelStyle.Render("Buscar: "))
		out.WriteString(a.catState.searchInput.View())
	} else if a.catState.query != "" {
		out.WriteString("   ")
		out.WriteString(labelStyle.Render("Filtro: "))
		out.WriteString(valueStyle.Render(a.catState.query))
		out.WriteString(dimStyle.Render("  [Esc]limpiar"))
	}
	out.WriteString("\n\n")

	if len(visible) == 0 {
		out.WriteString("    ")
		out.WriteString(dimStyle.Render("Sin resultados"))
		out.WriteString("\n")
		return out.String()
	}

	// Visible window follows the cursor
	maxRows := height - 6
	if maxRows < 3 {
		maxRows = 3
	}
	start := 0
	if a.catState.cursor >= maxRows {
		start = a.catState.cursor - maxRows + 1
	}
	end := start + maxRows
	if end > len(visible) {
		end = len(visible)
	}

	lastCategory := ""
	currency := a.svc.Current().CurrencySymbol
	for i := start; i < end; i++ {
		tr := visible[i]
		if tr.Category != lastCategory {
			out.WriteString("  ")
			out.WriteString(labelStyle.Render(tr.Category))
			out.WriteString("\n")
			lastCategory = tr.Category
		}

		marker := "  "
		style := valueStyle
		if i == a.catState.cursor {
			marker = selStyle.Render("▸ ")
			style = selStyle
		}
		fmt.Fprintf(&out, "  %s%s %s\n",
			marker,
			style.Render(fmt.Sprintf("%-40s", truncStr(tr.Name, 40))),
			amountStyle.Render(format.Currency(tr.Price, currency)),
		)
	}

	out.WriteString("\n  ")
	out.WriteString(dimStyle.Render("[Enter]añadir al presupuesto  [/]buscar  [p]volver"))
	out.WriteString("\n")

	return out.String()
}
