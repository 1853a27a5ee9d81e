package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/bukodent/presu/internal/config"
	"github.com/bukodent/presu/internal/pdf"
	"github.com/bukodent/presu/internal/preview"
	"github.com/bukodent/presu/internal/tui"
	"github.com/bukodent/presu/internal/tui/theme"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Launch the interactive budget composer",
	RunE:  runCompose,
}

func init() {
	composeCmd.Flags().BoolVar(&flagNoPreview, "no-preview", false, "Disable the live PDF preview")
	rootCmd.AddCommand(composeCmd)
}

func runCompose(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.TUI.Theme)

	cat, err := loadCatalog(&cfg)
	if err != nil {
		return err
	}

	svc := newService(cfg)
	hist := openHistory(cfg)
	if hist != nil {
		defer hist.Close()
	}

	renderer := pdf.NewRenderer(cfg.Clinic, cfg.Document, cfg.General.LogoPath)

	var prev *preview.Previewer
	if !flagNoPreview {
		prev = preview.NewPreviewer(renderer, preview.DefaultDelay)
		defer prev.Close()
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Service:   svc,
		Catalog:   cat,
		History:   hist,
		Previewer: prev,
		Renderer:  renderer,
		OutDir:    flagOutDir,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
