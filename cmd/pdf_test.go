package cmd

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bukodent/presu/internal/config"
	"github.com/bukodent/presu/internal/history"
	"github.com/bukodent/presu/internal/model"
)

func TestRunPDF_RejectsInvalidArchivedRecord(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	store, err := history.Open(config.HistoryPath(cfg))
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}

	// A row written without a patient name, as a hand-edited or legacy
	// database could contain.
	b := model.NewBudget()
	b.AddItem(model.Treatment{
		ID:       "T001",
		Name:     "Limpieza dental",
		Category: "Higiene",
		Price:    decimal.NewFromInt(45),
	}, 1, decimal.Zero)
	rec := b.Export()
	if err := store.Save(rec); err != nil {
		t.Fatalf("saving record: %v", err)
	}
	store.Close()

	err = runPDF(nil, []string{rec.BudgetCode})
	if err == nil {
		t.Fatal("runPDF accepted an invalid archived record")
	}
	if !strings.Contains(err.Error(), "no válido") {
		t.Errorf("error = %q, want validation failure", err)
	}
}
