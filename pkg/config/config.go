// Package config loads and saves the lunchsync configuration: account
// mappings plus Lunch Money credentials. Config lives in a JSON file found
// in the working directory or the XDG config dir, with environment
// variables layered on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kJson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ArionMiles/lunchsync/pkg/accounts"
)

// FileName is the config file name searched for in the standard locations.
const FileName = "config.json"

// Account is one configured bank account or card.
type Account struct {
	CardNumber string `koanf:"card_number" json:"card_number"`
	Name       string `koanf:"name" json:"name"`
	Bank       string `koanf:"bank" json:"bank"`
	Type       string `koanf:"type" json:"type,omitempty"`
}

// LunchMoney holds the upload credentials and the account-to-asset map.
type LunchMoney struct {
	APIKey         string         `koanf:"api_key" json:"api_key,omitempty"`
	AccountMapping map[string]int `koanf:"account_mapping" json:"account_mapping,omitempty"`
}

// Config is the full application configuration.
type Config struct {
	Accounts   []Account  `koanf:"accounts" json:"accounts"`
	LunchMoney LunchMoney `koanf:"lunch_money" json:"lunch_money"`
}

// Postgres holds connection settings for the postgres sink, loaded from
// POSTGRES_* environment variables only.
type Postgres struct {
	Host     string `koanf:"POSTGRES_HOST"`
	Port     int    `koanf:"POSTGRES_PORT"`
	Database string `koanf:"POSTGRES_DB"`
	User     string `koanf:"POSTGRES_USER"`
	Password string `koanf:"POSTGRES_PASSWORD"`
	SSLMode  string `koanf:"POSTGRES_SSLMODE"`
}

// DefaultPath returns the XDG location for the config file.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "lunchsync", FileName)
}

// findConfigFile returns the first existing config file: ./config.json,
// then the XDG path. Empty when none exists.
func findConfigFile() string {
	for _, path := range []string{FileName, DefaultPath()} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads configuration. An explicit non-empty path must exist; with an
// empty path the standard locations are searched and a missing file yields
// an empty config. LUNCHMONEY_API_KEY in the environment overrides the file
// value.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), kJson.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("LUNCHMONEY_", ".", func(s string) string {
		if s == "LUNCHMONEY_API_KEY" {
			return "lunch_money.api_key"
		}
		return strings.ToLower(s)
	}), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return &cfg, nil
}

// LoadPostgres reads the postgres sink settings from the environment.
// Defaults for unset variables are applied by the sink.
func LoadPostgres() (*Postgres, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("POSTGRES_", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	var pg Postgres
	if err := k.UnmarshalWithConf("", &pg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return &pg, nil
}

// Save writes cfg as indented JSON, creating parent directories. An empty
// path saves to the XDG location. Returns the path written.
func (c *Config) Save(path string) (string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// Mappings converts the configured accounts into resolver mappings,
// defaulting the account type to credit_card.
func (c *Config) Mappings() []accounts.AccountMapping {
	mappings := make([]accounts.AccountMapping, 0, len(c.Accounts))
	for _, acc := range c.Accounts {
		accType := acc.Type
		if accType == "" {
			accType = "credit_card"
		}
		mappings = append(mappings, accounts.AccountMapping{
			Identifier:  acc.CardNumber,
			Name:        acc.Name,
			Bank:        acc.Bank,
			AccountType: accType,
		})
	}
	return mappings
}

// APIKey returns the Lunch Money API key, preferring the override.
func (c *Config) APIKey(override string) string {
	if override != "" {
		return override
	}
	return c.LunchMoney.APIKey
}
