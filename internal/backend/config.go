package backend

import (
	"errors"
	"fmt"

	"fintrack/internal/config"
)

// Config holds what Open needs for each backend type.
type Config struct {
	Type Type

	// Memory
	SeedDir string

	// SQLite
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleExpensesSheet      string
	GoogleIncomesSheet       string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:                     t,
		SeedDir:                  appConfig.SeedDir,
		SQLiteDBPath:             appConfig.SQLiteDBPath,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleExpensesSheet:      appConfig.GoogleExpensesSheet,
		GoogleIncomesSheet:       appConfig.GoogleIncomesSheet,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case Sheets:
		if c.GoogleSpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			return errors.New("either a service account file or inline service account JSON is required for sheets backend")
		}
	case Memory:
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}
