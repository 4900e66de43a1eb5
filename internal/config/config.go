package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	// Identity. An empty account id means a guest session: demo data,
	// nothing persisted, no realtime sync.
	AccountID string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// AMQP realtime sync. Empty URL disables the event bus.
	AMQPURL      string
	AMQPExchange string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSettingsSheetName  string
	GoogleMonthsSheetName    string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Persistence debounce windows
	SettingsDebounce time.Duration
	MonthDebounce    time.Duration
}

func Load() *Config {
	cfg := &Config{
		AccountID: getEnv("ACCOUNT_ID", ""),

		DataBackend: getEnv("DATA_BACKEND", "memory"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/flux.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "flux"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSettingsSheetName:  getEnv("GOOGLE_SETTINGS_SHEET_NAME", "Settings"),
		GoogleMonthsSheetName:    getEnv("GOOGLE_MONTHS_SHEET_NAME", "Months"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		SettingsDebounce: getEnvDuration("SETTINGS_DEBOUNCE", 1*time.Second),
		MonthDebounce:    getEnvDuration("MONTH_DEBOUNCE", 500*time.Millisecond),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate data backend
	validBackends := []string{"memory", "sqlite", "sheets"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}

		// Realtime sync without an account has nothing to key events by.
		if c.AccountID == "" {
			errors = append(errors, "ACCOUNT_ID is required when AMQP realtime sync is enabled")
		}
	}

	// Validate Google Sheets configuration if backend is sheets
	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSettingsSheetName == "" {
			errors = append(errors, "Google settings sheet name cannot be empty when using sheets backend")
		}
		if c.GoogleMonthsSheetName == "" {
			errors = append(errors, "Google months sheet name cannot be empty when using sheets backend")
		}

		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Validate debounce windows
	if c.SettingsDebounce < 10*time.Millisecond || c.SettingsDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid settings debounce %v: must be between 10ms and 1m", c.SettingsDebounce))
	}
	if c.MonthDebounce < 10*time.Millisecond || c.MonthDebounce > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid month debounce %v: must be between 10ms and 1m", c.MonthDebounce))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
