package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Transaction feed provider
	BankBaseURL string
	BankToken   string

	// Brokerage provider
	BrokerBaseURL  string
	BrokerUsername string
	BrokerPassword string

	// AMQP (optional; events are skipped when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Budgets, minor units
	PocketMoneyAllowance  int64
	PocketMoneyExclusions []string
	GroceriesAllowance    int64
	AnchorDay             int

	// Currency
	USDRate string // USD -> display currency FX rate

	// Savings history window start (YYYY-MM-DD)
	SavingsStart string

	// Brokerage order history depth
	OrderWindow time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finboard.db"),

		BankBaseURL: getEnv("BANK_BASE_URL", "https://api.starlingbank.com/api/v2"),
		BankToken:   getEnv("BANK_TOKEN", ""),

		BrokerBaseURL:  getEnv("BROKER_BASE_URL", ""),
		BrokerUsername: getEnv("BROKER_USERNAME", ""),
		BrokerPassword: getEnv("BROKER_PASSWORD", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "snapshot_events"),

		PocketMoneyAllowance: getEnvInt64("POCKET_MONEY_ALLOWANCE_MINOR", 18000),
		PocketMoneyExclusions: getEnvList("POCKET_MONEY_EXCLUSIONS",
			[]string{"investments", "rent", "bills", "expenses", "income", "saving", "groceries"}),
		GroceriesAllowance: getEnvInt64("GROCERIES_ALLOWANCE_MINOR", 12000),
		AnchorDay:          getEnvInt("BUDGET_ANCHOR_DAY", 27),

		USDRate: getEnv("USD_RATE", "0.79"),

		SavingsStart: getEnv("SAVINGS_START_DATE", "2025-07-27"),

		OrderWindow: getEnvDuration("ORDER_WINDOW", 90*24*time.Hour),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	}

	for name, value := range map[string]string{
		"BANK_BASE_URL":   c.BankBaseURL,
		"BROKER_BASE_URL": c.BrokerBaseURL,
	} {
		if value == "" {
			continue
		}
		if parsed, err := url.Parse(value); err != nil {
			errs = append(errs, fmt.Sprintf("invalid %s '%s': %v", name, value, err))
		} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid %s scheme '%s': must be http or https", name, parsed.Scheme))
		}
	}

	if c.BankBaseURL != "" && c.BankToken == "" {
		errs = append(errs, "BANK_TOKEN is required when a bank base URL is configured")
	}
	if c.BrokerBaseURL != "" && (c.BrokerUsername == "" || c.BrokerPassword == "") {
		errs = append(errs, "BROKER_USERNAME and BROKER_PASSWORD are required when a broker base URL is configured")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PocketMoneyAllowance <= 0 {
		errs = append(errs, fmt.Sprintf("invalid pocket money allowance %d: must be positive minor units", c.PocketMoneyAllowance))
	}
	if c.GroceriesAllowance <= 0 {
		errs = append(errs, fmt.Sprintf("invalid groceries allowance %d: must be positive minor units", c.GroceriesAllowance))
	}

	if c.AnchorDay < 1 || c.AnchorDay > 28 {
		errs = append(errs, fmt.Sprintf("invalid budget anchor day %d: must be between 1 and 28", c.AnchorDay))
	}

	if rate, err := decimal.NewFromString(c.USDRate); err != nil {
		errs = append(errs, fmt.Sprintf("invalid USD rate '%s': %v", c.USDRate, err))
	} else if !rate.IsPositive() {
		errs = append(errs, fmt.Sprintf("invalid USD rate '%s': must be positive", c.USDRate))
	}

	if _, err := time.Parse("2006-01-02", c.SavingsStart); err != nil {
		errs = append(errs, fmt.Sprintf("invalid savings start date '%s': must be YYYY-MM-DD", c.SavingsStart))
	}

	if c.OrderWindow < 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid order window %v: must be at least 24 hours", c.OrderWindow))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}

	return nil
}

// USDRateDecimal returns the configured FX rate. Validate must have
// passed first.
func (c *Config) USDRateDecimal() decimal.Decimal {
	rate, err := decimal.NewFromString(c.USDRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// SavingsStartTime returns the start of the savings history window.
func (c *Config) SavingsStartTime() time.Time {
	t, err := time.ParseInLocation("2006-01-02", c.SavingsStart, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
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
