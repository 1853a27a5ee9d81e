package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bukodent/presu/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [general]")
	fmt.Printf("    Catalog source: %s\n", cfg.General.CatalogSource)
	fmt.Printf("    History DB:     %s\n", config.HistoryPath(cfg))
	if cfg.General.LogoPath != "" {
		fmt.Printf("    Logo:           %s\n", cfg.General.LogoPath)
	}
	fmt.Println()

	fmt.Println("  [tax]")
	fmt.Printf("    IVA:      %.2f%%\n", cfg.Tax.IVARate)
	fmt.Printf("    Currency: %s\n", cfg.Tax.CurrencySymbol)
	fmt.Println()

	fmt.Println("  [clinic]")
	fmt.Printf("    Doctor:  %s\n", cfg.Clinic.DoctorName)
	fmt.Printf("    Clinic:  %s · %s\n", cfg.Clinic.ClinicName, cfg.Clinic.ClinicBrand)
	fmt.Printf("    Address: %s\n", cfg.Clinic.Address)
	fmt.Printf("    Email:   %s\n", cfg.Clinic.Email)
	fmt.Printf("    Phone:   %s\n", cfg.Clinic.Phone)
	fmt.Println()

	fmt.Println("  [document]")
	fmt.Printf("    Payment:  %s\n", cfg.Document.PaymentNote)
	fmt.Printf("    Validity: %s\n", cfg.Document.ValidityNote)
	fmt.Printf("    Bank:     %s %s\n", cfg.Document.BankName, cfg.Document.BankIBAN)
	fmt.Println()

	fmt.Println("  Run `presu config init` to write the default config file.")
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("config file already exists: %s", config.ConfigPath())
	}

	if err := config.Save(config.DefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("  Config file written: %s\n", config.ConfigPath())
	return nil
}
