package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LabelMode selects the persistence strategy for rendered labels.
type LabelMode string

const (
	// LabelModePDF generates a downloadable PDF label; records carry no image.
	LabelModePDF LabelMode = "pdf"
	// LabelModeInline embeds the barcode image as a PNG blob inside the record.
	LabelModeInline LabelMode = "inline"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Barcode  BarcodeConfig
	Label    LabelConfig
	MongoDB  MongoDBConfig
	Snapshot SnapshotConfig
	Sheets   SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// BarcodeConfig contains options for the remote barcode rendering service.
type BarcodeConfig struct {
	BaseURL    string
	Symbology  string
	Timeout    time.Duration
	MaxRetries int
}

// LabelConfig selects how labels are produced and stored.
type LabelConfig struct {
	Mode LabelMode
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SnapshotConfig holds settings for the periodic CSV snapshot job.
// An empty CronSchedule disables the job.
type SnapshotConfig struct {
	CronSchedule string
	Dir          string
}

// SheetsConfig contains configuration for the optional Google Sheets mirror.
// Both fields empty disables the mirror.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	timeoutSeconds, err := getenvInt("BARCODE_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}

	maxRetries, err := getenvInt("BARCODE_MAX_RETRIES", 2)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Barcode: BarcodeConfig{
			BaseURL:    getenvWithDefault("BARCODE_BASE_URL", "https://barcode.tec-it.com/barcode.ashx"),
			Symbology:  getenvWithDefault("BARCODE_SYMBOLOGY", "Code128"),
			Timeout:    time.Duration(timeoutSeconds) * time.Second,
			MaxRetries: maxRetries,
		},
		Label: LabelConfig{
			Mode: LabelMode(getenvWithDefault("LABEL_MODE", string(LabelModePDF))),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "inventory_db"),
		},
		Snapshot: SnapshotConfig{
			CronSchedule: os.Getenv("SNAPSHOT_CRON_SCHEDULE"),
			Dir:          getenvWithDefault("SNAPSHOT_DIR", "."),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and coherent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Barcode.BaseURL == "":
		return errors.New("BARCODE_BASE_URL must not be empty")
	case c.Barcode.Symbology == "":
		return errors.New("BARCODE_SYMBOLOGY must not be empty")
	case c.Barcode.Timeout <= 0:
		return errors.New("BARCODE_TIMEOUT_SECONDS must be positive")
	case c.Barcode.MaxRetries < 0:
		return errors.New("BARCODE_MAX_RETRIES must not be negative")
	}

	switch c.Label.Mode {
	case LabelModePDF, LabelModeInline:
	default:
		return fmt.Errorf("LABEL_MODE must be %q or %q, got %q", LabelModePDF, LabelModeInline, c.Label.Mode)
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Snapshot.CronSchedule != "" && c.Snapshot.Dir == "" {
		return errors.New("SNAPSHOT_DIR must be provided when SNAPSHOT_CRON_SCHEDULE is set")
	}

	// A half-configured Sheets mirror is a deployment mistake, not an opt-out.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_DATABASE_ID must be set together")
	}

	return nil
}

// SheetsEnabled reports whether the Google Sheets mirror is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}
