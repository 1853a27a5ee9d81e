package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bukodent/presu/internal/config"
	"github.com/bukodent/presu/internal/format"
	"github.com/bukodent/presu/internal/model"
	"github.com/bukodent/presu/internal/pdf"
)

var flagPDFOutput string

var pdfCmd = &cobra.Command{
	Use:   "pdf <code>",
	Short: "Generate the PDF for a saved budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runPDF,
}

func init() {
	pdfCmd.Flags().StringVarP(&flagPDFOutput, "output", "f", "", "Output file (default presupuesto-<paciente>-<fecha>.pdf)")
	rootCmd.AddCommand(pdfCmd)
}

func runPDF(_ *cobra.Command, args []string) error {
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

	b := model.FromRecord(entry.Record)
	if err := b.Validate(); err != nil {
		return fmt.Errorf("presupuesto %s no válido: %w", args[0], err)
	}
	renderer := pdf.NewRenderer(cfg.Clinic, cfg.Document, cfg.General.LogoPath)

	data, err := renderer.Render(b)
	if err != nil {
		return err
	}

	path := flagPDFOutput
	if path == "" {
		path = filepath.Join(flagOutDir, format.ExportFileName(b.PatientName, b.Date))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}

	fmt.Printf("  PDF generado: %s\n", path)
	return nil
}
