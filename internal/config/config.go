package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mind-engage/smarticulous/internal/db"
)

// Config holds runtime configuration for the grading store.
type Config struct {
	DBDriver db.Driver
	DBDSN    string // empty selects the driver default

	LogLevel     zerolog.Level
	QueryTimeout time.Duration // 0 disables per-operation timeouts
	PasswordCost int           // bcrypt
	SiteID       string        // event log origin
}

// Load reads configuration values from environment variables and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SMARTICULOUS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("query.timeout", "0s")
	v.SetDefault("password.cost", 12)
	v.SetDefault("site.id", "local")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	driver, err := db.ParseDriver(v.GetString("db.driver"))
	if err != nil {
		return Config{}, err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log.level")))
	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	timeout, err := time.ParseDuration(v.GetString("query.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid query timeout: %w", err)
	}
	if timeout < 0 {
		return Config{}, fmt.Errorf("invalid query timeout: %s is negative", timeout)
	}

	cost := v.GetInt("password.cost")
	if cost <= 0 {
		cost = 12
	}

	siteID := strings.TrimSpace(v.GetString("site.id"))
	if siteID == "" {
		siteID = "local"
	}

	return Config{
		DBDriver:     driver,
		DBDSN:        v.GetString("db.dsn"),
		LogLevel:     level,
		QueryTimeout: timeout,
		PasswordCost: cost,
		SiteID:       siteID,
	}, nil
}
