// Package cmd implements the presu CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/bukodent/presu/internal/budget"
	"github.com/bukodent/presu/internal/catalog"
	"github.com/bukodent/presu/internal/cli"
	"github.com/bukodent/presu/internal/config"
	"github.com/bukodent/presu/internal/history"
)

var (
	flagCatalog   string
	flagOutDir    string
	flagNoPreview bool
)

var rootCmd = &cobra.Command{
	Use:           "presu",
	Short:         "Compositor de presupuestos dentales",
	Long:          "Componga presupuestos de tratamientos dentales y genere el documento PDF.",
	RunE:          runCompose,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError("  Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCatalog, "catalog", "", "Catalog source (file path or URL), overrides config")
	rootCmd.PersistentFlags().StringVarP(&flagOutDir, "out", "o", ".", "Directory for generated PDF files")
	rootCmd.Flags().BoolVar(&flagNoPreview, "no-preview", false, "Disable the live PDF preview")
}

// loadCatalog loads the treatment catalog from the configured source and
// applies its global overrides (tax rate, currency) back onto cfg.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	source := cfg.General.CatalogSource
	if flagCatalog != "" {
		source = flagCatalog
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cat, err := catalog.Load(ctx, source)
	if err != nil {
		return nil, err
	}

	if g, ok := cat.Global(); ok {
		if g.IVARate != nil {
			cfg.Tax.IVARate = g.IVARate.InexactFloat64()
		}
		if g.CurrencySymbol != "" {
			cfg.Tax.CurrencySymbol = g.CurrencySymbol
		}
	}

	return cat, nil
}

// newService builds the budget service from the effective tax settings.
func newService(cfg config.Config) *budget.Service {
	return budget.NewService(
		decimal.NewFromFloat(cfg.Tax.IVARate),
		cfg.Tax.CurrencySymbol,
	)
}

// openHistory opens the budget archive. A broken archive degrades to nil
// rather than blocking composition.
func openHistory(cfg config.Config) *history.Store {
	store, err := history.Open(config.HistoryPath(cfg))
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(fmt.Sprintf("  Aviso: historial no disponible: %v", err)))
		return nil
	}
	return store
}

// mustOpenHistory opens the archive for commands that cannot work without it.
func mustOpenHistory(cfg config.Config) (*history.Store, error) {
	store, err := history.Open(config.HistoryPath(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return store, nil
}
