package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"ledger/internal/core"
	"ledger/internal/log"
)

const (
	// AppDir is the directory name under XDG_CONFIG_HOME.
	AppDir = "ledger"
	// DefaultConfigFile is looked up under XDG_CONFIG_HOME/ledger.
	DefaultConfigFile = "config.yaml"
)

var validBackends = []string{"csv", "sqlite", "memory"}

type Config struct {
	// Storage
	DataBackend  string `yaml:"data_backend" env:"DATA_BACKEND"`
	LedgerFile   string `yaml:"ledger_file" env:"LEDGER_FILE"`
	SQLiteDBPath string `yaml:"sqlite_db_path" env:"SQLITE_DB_PATH"`
	SeedFile     string `yaml:"seed_file" env:"SEED_FILE"`

	// Presentation
	DateLayout     string `yaml:"date_layout" env:"DATE_LAYOUT"`
	CurrencySymbol string `yaml:"currency_symbol" env:"CURRENCY_SYMBOL"`

	// Logging
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`

	// Mirror sinks
	MirrorSQLite bool `yaml:"mirror_sqlite" env:"MIRROR_SQLITE"`

	// AMQP change events
	AMQPURL      string `yaml:"amqp_url" env:"AMQP_URL"`
	AMQPExchange string `yaml:"amqp_exchange" env:"AMQP_EXCHANGE"`
	AMQPQueue    string `yaml:"amqp_queue" env:"AMQP_QUEUE"`

	// Google Sheets mirror
	GoogleSpreadsheetID      string `yaml:"google_spreadsheet_id" env:"GOOGLE_SPREADSHEET_ID"`
	GoogleSheetName          string `yaml:"google_sheet_name" env:"GOOGLE_SHEET_NAME"`
	GoogleServiceAccountFile string `yaml:"google_service_account_file" env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
	GoogleServiceAccountJSON string `yaml:"google_service_account_json" env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	// Worker
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	SyncInterval    time.Duration `yaml:"sync_interval" env:"SYNC_INTERVAL"`

	// Source is the YAML file the config was read from, if any.
	Source string `yaml:"-"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		DataBackend:     "csv",
		LedgerFile:      "finance_data.csv",
		SQLiteDBPath:    "./data/ledger.db",
		DateLayout:      core.CanonicalLayout,
		CurrencySymbol:  "$",
		LogLevel:        "warn",
		AMQPExchange:    "ledger",
		AMQPQueue:       "ledger_changes",
		GoogleSheetName: "Transactions",
		ShutdownTimeout: 30 * time.Second,
		SyncInterval:    5 * time.Minute,
	}
}

// Load reads defaults, then the YAML file named by LEDGER_CONFIG (or the XDG
// default when present), then the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("LEDGER_CONFIG"), nil)
}

// LoadFrom is Load with an explicit config file and environment. An empty
// path falls back to the XDG default; a nil environ uses the process
// environment.
func LoadFrom(path string, environ map[string]string) (*Config, error) {
	cfg := Defaults()

	file, err := resolveFile(path)
	if err != nil {
		return nil, err
	}
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config file %s: %w", file, err)
		}
		cfg.Source = file
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func resolveFile(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}
	candidate := filepath.Join(xdg.ConfigHome, AppDir, DefaultConfigFile)
	_, err := os.Stat(candidate)
	switch {
	case err == nil:
		return candidate, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("check config file %s: %w", candidate, err)
	}
}

// DateFormat returns the configured date text form.
func (c *Config) DateFormat() core.DateFormat {
	return core.DateFormat{Layout: c.DateLayout}
}

// SheetsEnabled reports whether the Google Sheets mirror is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "csv" && strings.TrimSpace(c.LedgerFile) == "" {
		errors = append(errors, "ledger file cannot be empty when using csv backend")
	}

	if (c.DataBackend == "sqlite" || c.MirrorSQLite) && strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend or mirror")
	}
	if c.DataBackend == "sqlite" && c.MirrorSQLite {
		errors = append(errors, "sqlite mirror cannot be enabled when sqlite is the data backend")
	}

	if err := c.DateFormat().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid date layout '%s': %v", c.DateLayout, err))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsEnabled() {
		if c.GoogleSheetName == "" {
			errors = append(errors, "Google Sheet name is required when a spreadsheet ID is set")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		if !hasFile && !hasJSON {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for the sheets mirror")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if c.SyncInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must not be negative", c.SyncInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
