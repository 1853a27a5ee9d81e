package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bukodent/presu/internal/format"
	"github.com/bukodent/presu/internal/history"
	"github.com/bukodent/presu/internal/tui/theme"
)

type historyState struct {
	entries     []history.Entry
	cursor      int
	searching   bool
	searchInput textinput.Model
	query       string
}

func newHistoryState() historyState {
	return historyState{}
}

// reloadHistory refreshes the archive listing with the active query.
func (a *App) reloadHistory() {
	if a.hist == nil {
		a.hisState.entries = nil
		return
	}

	var (
		entries []history.Entry
		err     error
	)
	if a.hisState.query == "" {
		entries, err = a.hist.All()
	} else {
		entries, err = a.hist.Search(a.hisState.query)
	}
	if err != nil {
		a.setError("No se pudo leer el historial: " + err.Error())
		return
	}

	a.hisState.entries = entries
	if a.hisState.cursor >= len(entries) {
		a.hisState.cursor = len(entries) - 1
	}
	if a.hisState.cursor < 0 {
		a.hisState.cursor = 0
	}
}

func (a App) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := a.hisState.entries

	switch msg.String() {
	case "j", "down":
		if a.hisState.cursor < len(entries)-1 {
			a.hisState.cursor++
		}
		return a, nil

	case "k", "up":
		if a.hisState.cursor > 0 {
			a.hisState.cursor--
		}
		return a, nil

	case "/":
		a.hisState.searching = true
		a.hisState.searchInput = newSearchInput("paciente, código o fecha")
		a.hisState.searchInput.SetValue(a.hisState.query)
		a.hisState.searchInput.Focus()
		return a, a.hisState.searchInput.Cursor.BlinkCmd()

	case "esc":
		if a.hisState.query != "" {
			a.hisState.query = ""
			a.hisState.cursor = 0
			a.reloadHistory()
		}
		return a, nil

	case "enter":
		if a.hisState.cursor < len(entries) {
			e := entries[a.hisState.cursor]
			a.svc.LoadRecord(e.Record)
			a.activeTab = 0
			a.compose.cursor = 0
			a.setStatus("Cargado presupuesto " + e.Record.BudgetCode)
		}
		return a, nil

	case "d":
		if a.hisState.cursor < len(entries) {
			e := entries[a.hisState.cursor]
			return a, a.startConfirm(confirmDeleteEntry, e.Record.BudgetCode,
				fmt.Sprintf("¿Eliminar el presupuesto %s de %s?",
					e.Record.BudgetCode, e.Record.PatientName))
		}
		return a, nil

	case "D":
		if len(entries) > 0 {
			return a, a.startConfirm(confirmClearHistory, "",
				"¿Vaciar todo el historial? Esta acción no se puede deshacer.")
		}
		return a, nil
	}

	return a, nil
}

func (a App) updateHistorySearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.hisState.query = strings.TrimSpace(a.hisState.searchInput.Value())
		a.hisState.searching = false
		a.hisState.cursor = 0
		a.reloadHistory()
		return a, nil

	case "esc":
		a.hisState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.hisState.searchInput, cmd = a.hisState.searchInput.Update(msg)
	return a, cmd
}

func (a App) viewHistory(height int) string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	selStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	amountStyle := lipgloss.NewStyle().Foreground(t.Green)

	var out strings.Builder
	out.WriteString("\n  ")
	out.WriteString(titleStyle.Render("Historial de presupuestos"))

	if a.hisState.searching {
		out.WriteString("   ")
		out.WriteString(labelStyle.Render("Buscar: "))
		out.WriteString(a.hisState.searchInput.View())
	} else if a.hisState.query != "" {
		out.WriteString("   ")
		out.WriteString(labelStyle.Render("Filtro: "))
		out.WriteString(valueStyle.Render(a.hisState.query))
		out.WriteString(dimStyle.Render("  [Esc]limpiar"))
	}
	out.WriteString("\n\n")

	if a.hist == nil {
		out.WriteString("    ")
		out.WriteString(dimStyle.Render("Historial no disponible"))
		out.WriteString("\n")
		return out.String()
	}

	entries := a.hisState.entries
	if len(entries) == 0 {
		out.WriteString("    ")
		out.WriteString(dimStyle.Render("Sin presupuestos guardados"))
		out.WriteString("\n")
		return out.String()
	}

	maxRows := height - 6
	if maxRows < 3 {
		maxRows = 3
	}
	start := 0
	if a.hisState.cursor >= maxRows {
		start = a.hisState.cursor - maxRows + 1
	}
	end := start + maxRows
	if end > len(entries) {
		end = len(entries)
	}

	for i := start; i < end; i++ {
		e := entries[i]
		marker := "  "
		style := valueStyle
		if i == a.hisState.cursor {
			marker = selStyle.Render("▸ ")
			style = selStyle
		}
		fmt.Fprintf(&out, "  %s%s %s %s %s\n",
			marker,
			labelStyle.Render(e.Record.BudgetCode),
			style.Render(fmt.Sprintf("%-28s", truncStr(e.Record.PatientName, 28))),
			labelStyle.Render(format.Date(e.Record.Date)),
			amountStyle.Render(format.Currency(e.Record.Summary.Total, e.Record.CurrencySymbol)),
		)
	}

	out.WriteString("\n  ")
	out.WriteString(dimStyle.Render("[Enter]cargar  [d]eliminar  [D]vaciar  [/]buscar"))
	out.WriteString("\n")

	return out.String()
}
