package app

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/assetbot/core/config"
	"github.com/m3rciful/assetbot/core/database"
)

// Storage backends.
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

// SheetsConfig points at the worksheet receiving the rows.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	SheetName       string `yaml:"sheet_name" envconfig:"SHEET_NAME"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"GOOGLE_CREDENTIALS_FILE"`
	CredentialsJSON string `yaml:"-" envconfig:"GOOGLE_CREDENTIALS_JSON"`
}

// SQLiteConfig locates the local database file.
type SQLiteConfig struct {
	Path string `yaml:"path" envconfig:"SQLITE_PATH"`
}

// StorageConfig selects where submitted rows go.
type StorageConfig struct {
	Backend        string       `yaml:"backend" envconfig:"STORAGE_BACKEND"`
	TimeoutSeconds int          `yaml:"timeout_seconds" envconfig:"STORAGE_TIMEOUT_SECONDS"`
	Sheets         SheetsConfig `yaml:"sheets"`
	SQLite         SQLiteConfig `yaml:"sqlite"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Storage  StorageConfig   `yaml:"storage"`
	Database database.Config `yaml:"database"`
}

// CoreConfig returns the shared Telegram and logging settings.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path, applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}

	s := &c.Storage
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		s.Backend = BackendSheets
	}
	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("storage.timeout_seconds must be >= 0")
	}
	if s.TimeoutSeconds == 0 {
		s.TimeoutSeconds = 15
	}

	switch s.Backend {
	case BackendSheets:
		if strings.TrimSpace(s.Sheets.SpreadsheetID) == "" {
			return fmt.Errorf("storage.sheets.spreadsheet_id is required for the sheets backend")
		}
		if s.Sheets.CredentialsFile == "" && s.Sheets.CredentialsJSON == "" {
			return fmt.Errorf("storage.sheets.credentials_file or GOOGLE_CREDENTIALS_JSON is required for the sheets backend")
		}
		if strings.TrimSpace(s.Sheets.SheetName) == "" {
			s.Sheets.SheetName = "Sheet1"
		}
	case BackendPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for the postgres backend")
		}
		c.Database.Normalize()
	case BackendSQLite:
		if strings.TrimSpace(s.SQLite.Path) == "" {
			s.SQLite.Path = "data/assets.db"
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage.backend %q; allowed: sheets, postgres, sqlite, memory", s.Backend)
	}
	return nil
}
