package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bukodent/presu/internal/cli"
	"github.com/bukodent/presu/internal/config"
	"github.com/bukodent/presu/internal/format"
	"github.com/bukodent/presu/internal/history"
	"github.com/bukodent/presu/internal/model"
)

var historyCmd = &cobra.Command{
	Use:   "history [search term]",
	Short: "List saved budgets",
	Args:  cobra.ArbitraryArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <code>",
	Short: "Show one saved budget in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <code>",
	Short: "Delete a saved budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all saved budgets",
	RunE:  runHistoryClear,
}

var flagClearYes bool

func init() {
	historyClearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "Skip the confirmation prompt")
	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := mustOpenHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var entries []history.Entry
	if len(args) > 0 {
		entries, err = store.Search(strings.Join(args, " "))
	} else {
		entries, err = store.All()
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("\n  Sin presupuestos guardados.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("HISTORIAL DE PRESUPUESTOS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.HistoryTable(entries)))

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("  %d presupuestos, total %s\n",
		stats.Total,
		cli.RenderAmount(format.Currency(stats.TotalAmount, cfg.Tax.CurrencySymbol)),
	)
	return nil
}

func runHistoryShow(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := mustOpenHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, ok, err := store.ByCode(args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no existe el presupuesto %s", args[0])
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PRESUPUESTO %s", entry.Record.BudgetCode)))
	fmt.Println()
	fmt.Print(cli.BudgetView(model.FromRecord(entry.Record)))
	fmt.Println(cli.RenderMuted(fmt.Sprintf("\n  Guardado: %s", format.Date(entry.SavedAt))))
	return nil
}

func runHistoryDelete(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := mustOpenHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.Delete(args[0])
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("no existe el presupuesto %s", args[0])
	}

	fmt.Printf("  Presupuesto %s eliminado.\n", args[0])
	return nil
}

func runHistoryClear(_ *cobra.Command, _ []string) error {
	if !flagClearYes {
		return fmt.Errorf("esta acción elimina todo el historial; repita con --yes para confirmar")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := mustOpenHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(); err != nil {
		return err
	}

	fmt.Println("  Historial vaciado.")
	return nil
}
