// Package config loads and saves the presu configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all presu configuration.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Tax      TaxConfig      `toml:"tax"`
	Clinic   ClinicConfig   `toml:"clinic"`
	Document DocumentConfig `toml:"document"`
	TUI      TUIConfig      `toml:"tui"`
}

// TUIConfig holds terminal UI preferences.
type TUIConfig struct {
	Theme string `toml:"theme,omitempty"`
}

// GeneralConfig holds data source locations.
type GeneralConfig struct {
	CatalogSource string `toml:"catalog_source"`
	HistoryDB     string `toml:"history_db,omitempty"`
	LogoPath      string `toml:"logo_path,omitempty"`
}

// TaxConfig holds the default tax rate and currency. The catalog payload may
// override both once at load time.
type TaxConfig struct {
	IVARate        float64 `toml:"iva_rate"`
	CurrencySymbol string  `toml:"currency_symbol"`
}

// ClinicConfig is the clinic identity printed on every document.
type ClinicConfig struct {
	DoctorName      string `toml:"doctor_name"`
	HeaderSubtitle1 string `toml:"header_subtitle_1"`
	HeaderSubtitle2 string `toml:"header_subtitle_2"`
	ClinicName      string `toml:"clinic_name"`
	ClinicBrand     string `toml:"clinic_brand"`
	CompanyLine     string `toml:"company_line,omitempty"`
	Address         string `toml:"address"`
	Email           string `toml:"email"`
	Phone           string `toml:"phone"`
}

// DocumentConfig holds the footer notes and bank details.
type DocumentConfig struct {
	ExemptionNote string `toml:"exemption_note,omitempty"`
	PaymentNote   string `toml:"payment_note"`
	ValidityNote  string `toml:"validity_note"`
	BankName      string `toml:"bank_name"`
	BankIBAN      string `toml:"bank_iban"`
}

// DefaultConfig returns the configuration shipped with the tool.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			CatalogSource: "data/tratamientos.json",
		},
		Tax: TaxConfig{
			IVARate:        21,
			CurrencySymbol: "€",
		},
		Clinic: ClinicConfig{
			DoctorName:      "Dra. Karelys Matheus Marielys Spinola",
			HeaderSubtitle1: "ODONTÓLOGO - ORTODONCISTA",
			HeaderSubtitle2: "Nº COLEGIADO 28017582",
			ClinicName:      "BUKODENT",
			ClinicBrand:     "Tu Clínica Dental en Madrid",
			Address:         "Calle López de Hoyos, 474. CP 28043",
			Email:           "dental@dra-matheus-spinola.com",
			Phone:           "631914884",
		},
		Document: DocumentConfig{
			PaymentNote:  "Prontopago 5% de descuento",
			ValidityNote: "Presupuesto válido por 30 días a partir de la fecha de emisión",
			BankName:     "CaixaBank",
			BankIBAN:     "ES21 2100 3230 0213 0044 5835",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "presu")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "presu")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// HistoryPath returns the configured history database path, defaulting to
// the XDG data directory.
func HistoryPath(cfg Config) string {
	if cfg.General.HistoryDB != "" {
		return cfg.General.HistoryDB
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "presu", "history.db")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "presu", "history.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
