// Package config loads runtime settings from .env and the process environment.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"go-marketplace-ledger/pkg/database"
)

const DefaultLedgerName = "I love my motherland."

type Config struct {
	AppName         string
	Port            string
	LogLevel        string
	LedgerName      string
	ShutdownTimeout time.Duration

	Database database.Options

	// FaucetEther is credited to every newly registered account.
	FaucetEther decimal.Decimal

	KafkaBrokers []string
	KafkaTopic   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Marketplace Ledger v1.0")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LEDGER_NAME", DefaultLedgerName)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_DRIVER", database.DriverPostgres)
	v.SetDefault("SQLITE_PATH", "marketplace.db")
	v.SetDefault("FAUCET_ETHER", "100")
	v.SetDefault("KAFKA_TOPIC", "marketplace.products")
}

// Load reads .env (if present) and the environment. The bool reports
// whether a .env file was found so the caller can log it.
func Load() (*Config, bool) {
	envFound := godotenv.Load() == nil

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v), envFound
}

func fromViper(v *viper.Viper) *Config {
	faucet, err := decimal.NewFromString(v.GetString("FAUCET_ETHER"))
	if err != nil || faucet.IsNegative() {
		faucet = decimal.Zero
	}

	return &Config{
		AppName:         v.GetString("APP_NAME"),
		Port:            v.GetString("PORT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LedgerName:      v.GetString("LEDGER_NAME"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		Database: database.Options{
			Driver:     v.GetString("DB_DRIVER"),
			DSN:        v.GetString("DATABASE_URL"),
			Host:       v.GetString("DB_HOST"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Name:       v.GetString("DB_NAME"),
			Port:       v.GetString("DB_PORT"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		FaucetEther:  faucet,
		KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
