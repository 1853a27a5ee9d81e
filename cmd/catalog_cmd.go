package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bukodent/presu/internal/cli"
	"github.com/bukodent/presu/internal/config"
	"github.com/bukodent/presu/internal/model"
)

var flagCategory string

var catalogCmd = &cobra.Command{
	Use:   "catalog [search term]",
	Short: "List the treatment catalog",
	Args:  cobra.ArbitraryArgs,
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().StringVarP(&flagCategory, "category", "c", "", "Filter to one category")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(&cfg)
	if err != nil {
		return err
	}

	var treatments []model.Treatment
	switch {
	case len(args) > 0:
		treatments = cat.Search(strings.Join(args, " "))
	case flagCategory != "":
		treatments = cat.ByCategory(flagCategory)
	default:
		treatments = cat.Treatments()
	}

	if len(treatments) == 0 {
		fmt.Println("\n  Sin resultados.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("CATÁLOGO DE TRATAMIENTOS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.CatalogTable(treatments, cfg.Tax.CurrencySymbol)))
	fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d tratamientos en %d categorías", cat.Len(), len(cat.Categories()))))
	return nil
}
