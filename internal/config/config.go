package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ProductionSourceDB reads the daily production aggregate from the press
// database; ProductionSourceSheets reads it from a Google Sheets log.
const (
	ProductionSourceDB     = "db"
	ProductionSourceSheets = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Telegram TelegramConfig
	Sheets   SheetsConfig
	Monitor  MonitorConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds connection settings for the press database.
type DatabaseConfig struct {
	DSN string
}

// TelegramConfig contains credentials for the Telegram Bot API.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
// Only consulted when Monitor.ProductionSource is "sheets".
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MonitorConfig holds maintenance-check settings.
type MonitorConfig struct {
	ProductionSource string
	Threshold        float64
	StockCodes       []string
	CronSchedule     string
	Timezone         string
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

	threshold, err := parseThreshold(getenvWithDefault("MAINTENANCE_THRESHOLD", "20000"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Database: DatabaseConfig{
			DSN: os.Getenv("PRESS_DB_DSN"),
		},
		Telegram: TelegramConfig{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
			BaseURL:  getenvWithDefault("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Monitor: MonitorConfig{
			ProductionSource: getenvWithDefault("PRODUCTION_SOURCE", ProductionSourceDB),
			Threshold:        threshold,
			StockCodes:       parseStockCodes(os.Getenv("MONITORED_STOCK_CODES")),
			CronSchedule:     getenvWithDefault("CHECK_CRON_SCHEDULE", "0 * * * *"),
			Timezone:         getenvWithDefault("TIMEZONE", "Europe/Istanbul"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Database.DSN == "" {
		return errors.New("PRESS_DB_DSN must be provided")
	}

	switch {
	case c.Telegram.BotToken == "":
		return errors.New("TELEGRAM_BOT_TOKEN must be provided")
	case c.Telegram.ChatID == "":
		return errors.New("TELEGRAM_CHAT_ID must be provided")
	case c.Telegram.BaseURL == "":
		return errors.New("TELEGRAM_BASE_URL must not be empty")
	}

	switch c.Monitor.ProductionSource {
	case ProductionSourceDB:
	case ProductionSourceSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided when PRODUCTION_SOURCE is sheets")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided when PRODUCTION_SOURCE is sheets")
		}
	default:
		return fmt.Errorf("unsupported PRODUCTION_SOURCE %q", c.Monitor.ProductionSource)
	}

	if c.Monitor.Threshold <= 0 {
		return errors.New("MAINTENANCE_THRESHOLD must be positive")
	}

	if c.Monitor.CronSchedule == "" {
		return errors.New("CHECK_CRON_SCHEDULE must be provided")
	}

	if c.Monitor.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func parseThreshold(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid MAINTENANCE_THRESHOLD %q: %w", raw, err)
	}
	return value, nil
}

func parseStockCodes(raw string) []string {
	var codes []string
	for _, code := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(code); trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
