// Package tui provides the interactive Bubble Tea budget composer.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/bukodent/presu/internal/budget"
	"github.com/bukodent/presu/internal/catalog"
	"github.com/bukodent/presu/internal/format"
	"github.com/bukodent/presu/internal/history"
	"github.com/bukodent/presu/internal/model"
	"github.com/bukodent/presu/internal/preview"
	"github.com/bukodent/presu/internal/tui/components"
	"github.com/bukodent/presu/internal/tui/theme"
)

// PreviewReadyMsg is sent when a debounced preview render finishes.
type PreviewReadyMsg struct {
	Path string
}

// Options wires the composer to its collaborators. History and Previewer
// may be nil; the corresponding features degrade gracefully.
type Options struct {
	Service   *budget.Service
	Catalog   *catalog.Catalog
	History   *history.Store
	Previewer *preview.Previewer
	Renderer  preview.Renderer
	OutDir    string
}

type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmReset
	confirmDeleteEntry
	confirmClearHistory
)

const confirmFormKey = "accept"

// App is the root Bubble Tea model.
type App struct {
	svc      *budget.Service
	cat      *catalog.Catalog
	hist     *history.Store
	prev     *preview.Previewer
	renderer preview.Renderer
	outDir   string

	previewSub chan tea.Msg

	width     int
	height    int
	activeTab int
	showHelp  bool

	status    string
	statusErr bool

	compose  composeState
	catState catalogState
	hisState historyState

	// Confirmation overlay (huh form)
	confirm       *huh.Form
	confirmAction confirmAction
	confirmCode   string
}

const (
	minTerminalWidth = 70
	minContentHeight = 5
)

// NewApp creates the composer model. The budget service is subscribed to
// the previewer so every mutation schedules a debounced preview render.
func NewApp(opts Options) App {
	a := App{
		svc:        opts.Service,
		cat:        opts.Catalog,
		hist:       opts.History,
		prev:       opts.Previewer,
		renderer:   opts.Renderer,
		outDir:     opts.OutDir,
		previewSub: make(chan tea.Msg, 1),
		compose:    newComposeState(),
		catState:   newCatalogState(),
		hisState:   newHistoryState(),
	}

	if a.prev != nil {
		a.svc.Subscribe(func(b *model.Budget, _ model.Summary) {
			a.prev.Request(b)
		})
		a.prev.OnUpdate(func(h *preview.Handle) {
			select {
			case a.previewSub <- PreviewReadyMsg{Path: h.Path()}:
			default:
			}
		})
	}

	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.prev != nil {
		return waitForPreviewMsg(a.previewSub)
	}
	return nil
}

// waitForPreviewMsg blocks until the previewer reports a finished render.
func waitForPreviewMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusErr = false
}

func (a *App) setError(msg string) {
	a.status = msg
	a.statusErr = true
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.confirm != nil {
			a.confirm = a.confirm.WithWidth(msg.Width)
		}
		return a, nil

	case PreviewReadyMsg:
		if msg.Path != "" {
			a.setStatus("Vista previa: " + msg.Path)
		}
		return a, waitForPreviewMsg(a.previewSub)

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			a.closePreview()
			return a, tea.Quit
		}

		// Confirmation overlay intercepts all keys
		if a.confirm != nil {
			return a.updateConfirm(msg)
		}

		// Text editing modes intercept all keys
		if a.activeTab == 0 && a.compose.editing {
			return a.updateComposeEdit(msg)
		}
		if a.activeTab == 1 && a.catState.searching {
			return a.updateCatalogSearch(msg)
		}
		if a.activeTab == 2 && a.hisState.searching {
			return a.updateHistorySearch(msg)
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if key == "q" {
			a.closePreview()
			return a, tea.Quit
		}

		// Tab navigation
		switch key {
		case "p":
			a.activeTab = 0
			return a, nil
		case "c":
			a.activeTab = 1
			return a, nil
		case "h":
			a.activeTab = 2
			a.reloadHistory()
			return a, nil
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			if a.activeTab == 2 {
				a.reloadHistory()
			}
			return a, nil
		case "right":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			if a.activeTab == 2 {
				a.reloadHistory()
			}
			return a, nil
		}

		switch a.activeTab {
		case 0:
			return a.updateCompose(msg)
		case 1:
			return a.updateCatalog(msg)
		case 2:
			return a.updateHistory(msg)
		}
		return a, nil
	}

	if a.confirm != nil {
		return a.updateConfirm(msg)
	}

	return a, nil
}

func (a *App) closePreview() {
	if a.prev != nil {
		a.prev.Close()
	}
}

// ─── Confirmation overlay ───────────────────────────────────────

// startConfirm opens a yes/no overlay. The answer is read back through the
// form key: binding a pointer into App would alias a stale model copy.
func (a *App) startConfirm(action confirmAction, code, title string) tea.Cmd {
	a.confirmAction = action
	a.confirmCode = code
	a.confirm = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Key(confirmFormKey).
			Title(title).
			Affirmative("Sí").
			Negative("No"),
	))
	if a.width > 0 {
		a.confirm = a.confirm.WithWidth(a.width)
	}
	return a.confirm.Init()
}

func (a App) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.confirm = f
	}

	if a.confirm.State == huh.StateCompleted {
		action, code, accepted := a.confirmAction, a.confirmCode, a.confirm.GetBool(confirmFormKey)
		a.confirm = nil
		a.confirmAction = confirmNone
		a.confirmCode = ""
		if accepted {
			a.applyConfirm(action, code)
		}
		return a, nil
	}

	if a.confirm.State == huh.StateAborted {
		a.confirm = nil
		a.confirmAction = confirmNone
		a.confirmCode = ""
		return a, nil
	}

	return a, cmd
}

func (a *App) applyConfirm(action confirmAction, code string) {
	switch action {
	case confirmReset:
		a.svc.Reset()
		a.compose.cursor = 0
		a.setStatus("Nuevo presupuesto " + a.svc.Current().Code)
	case confirmDeleteEntry:
		if a.hist == nil {
			return
		}
		if _, err := a.hist.Delete(code); err != nil {
			a.setError("No se pudo eliminar: " + err.Error())
			return
		}
		a.reloadHistory()
		a.setStatus("Presupuesto " + code + " eliminado")
	case confirmClearHistory:
		if a.hist == nil {
			return
		}
		if err := a.hist.Clear(); err != nil {
			a.setError("No se pudo vaciar el historial: " + err.Error())
			return
		}
		a.reloadHistory()
		a.setStatus("Historial vaciado")
	}
}

// ─── Export ─────────────────────────────────────────────────────

// exportPDF validates the budget, renders it and writes the file. A copy of
// the snapshot also lands in the history archive.
func (a *App) exportPDF() {
	b := a.svc.Current()
	if err := a.svc.Validate(); err != nil {
		a.setError(err.Error())
		return
	}

	data, err := a.renderer.Render(b)
	if err != nil {
		a.setError(err.Error())
		return
	}

	name := format.ExportFileName(b.PatientName, b.Date)
	path := filepath.Join(a.outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		a.setError("No se pudo escribir el PDF: " + err.Error())
		return
	}

	if a.hist != nil {
		if err := a.hist.Save(a.svc.Export()); err != nil {
			a.setError("PDF generado, pero no se pudo archivar: " + err.Error())
			return
		}
	}

	a.setStatus("PDF generado: " + path)
}

// ─── View ───────────────────────────────────────────────────────

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return fmt.Sprintf(
			"\n  Terminal demasiado estrecha (%d columnas)\n\n  presu necesita al menos %d columnas.\n",
			a.width, minTerminalWidth,
		)
	}

	if a.confirm != nil {
		return a.confirm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	header := components.RenderTabBar(a.activeTab, a.width) + "\n"

	statusBar := components.RenderStatusBar(
		a.width,
		a.svc.Summary().TotalFormatted,
		a.status,
		a.statusErr,
	)

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := a.height - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 0:
		content = a.viewCompose(contentH)
	case 1:
		content = a.viewCatalog(contentH)
	case 2:
		content = a.viewHistory(contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) viewHelp() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Blue).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(titleStyle.Render("Atajos de teclado"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Navegación", []struct{ key, desc string }{
			{"p c h", "Ir a pestaña"},
			{"← →", "Pestaña anterior / siguiente"},
			{"j k", "Mover cursor"},
		}},
		{"Presupuesto", []struct{ key, desc string }{
			{"Enter", "Editar campo / descuento"},
			{"+ -", "Cantidad del tratamiento"},
			{"d", "Quitar tratamiento"},
			{"a", "Añadir tratamiento (catálogo)"},
			{"g", "Generar PDF"},
			{"n", "Nuevo presupuesto"},
		}},
		{"Catálogo / Historial", []struct{ key, desc string }{
			{"/", "Buscar"},
			{"Enter", "Añadir / Cargar"},
			{"d", "Eliminar del historial"},
			{"D", "Vaciar historial"},
			{"Esc", "Cancelar / limpiar búsqueda"},
		}},
	}

	for _, sec := range sections {
		b.WriteString("  ")
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "    %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
		b.WriteString("\n")
	}

	b.WriteString("  ")
	b.WriteString(descStyle.Render("Pulse cualquier tecla para cerrar"))
	return b.String()
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
