// Package config provides configuration loading for the invoice bot.
// Secrets come from environment variables; tunables may additionally be set
// in an optional YAML file.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names for secrets and deployment identifiers.
const (
	EnvTelegramToken      = "TELEGRAM_API_TOKEN"
	EnvOpenAIKey          = "OPENAI_API_KEY"
	EnvDatabaseURL        = "DATABASE_URL"
	EnvServiceAccountJSON = "SERVICE_ACCOUNT_JSON_BASE64"
	EnvTemplateID         = "SOURCE_SPREADSHEET_ID"
	EnvAdminIDs           = "ALLOWED_ADMIN_IDS"
)

// Config is the top-level bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Database  DatabaseConfig  `yaml:"database"`
	Google    GoogleConfig    `yaml:"google"`
	Admin     AdminConfig     `yaml:"admin"`
	Bot       BotConfig       `yaml:"bot"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// TelegramConfig holds the Telegram Bot API settings.
type TelegramConfig struct {
	Token string `yaml:"-"` // env only
}

// OpenAIConfig holds the completion API settings.
type OpenAIConfig struct {
	APIKey string `yaml:"-"` // env only
	Model  string `yaml:"model"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `yaml:"-"` // env only
}

// GoogleConfig holds Drive/Sheets settings for invoice provisioning.
type GoogleConfig struct {
	ServiceAccountJSON []byte `yaml:"-"` // env only, base64-decoded
	TemplateID         string `yaml:"-"` // env only
	OperatorEmail      string `yaml:"operator_email"`

	// ShareAnyone grants "anyone with the link: writer" on every copied
	// sheet. This matches observed production behavior; it is a policy
	// decision, not a recommended default.
	ShareAnyone *bool `yaml:"share_anyone"`

	BalanceReadCell  string `yaml:"balance_read_cell"`
	BalanceWriteCell string `yaml:"balance_write_cell"`
}

// AdminConfig holds the administrator allow-list.
type AdminConfig struct {
	ChatIDs []int64 `yaml:"-"` // env only, comma-separated
}

// BotConfig holds conversational tunables.
type BotConfig struct {
	Cities      []string `yaml:"cities"`
	Facts       []string `yaml:"facts"`
	InvoicePage int      `yaml:"invoice_page"`
}

// RefreshConfig controls the periodic balance refresh job.
type RefreshConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// DashboardConfig controls the status HTTP server.
type DashboardConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// defaultCities is the fixed city allow-list for client registration.
var defaultCities = []string{
	"Москва", "Санкт-Петербург", "Новосибирск", "Екатеринбург", "Казань",
	"Нижний Новгород", "Челябинск", "Самара", "Омск", "Ростов-на-Дону",
}

// Load reads the optional YAML file at path (skipped if path is empty or the
// file does not exist), overlays environment variables, applies defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays environment-provided secrets onto the config.
func (c *Config) applyEnv() error {
	c.Telegram.Token = os.Getenv(EnvTelegramToken)
	c.OpenAI.APIKey = os.Getenv(EnvOpenAIKey)
	c.Database.URL = os.Getenv(EnvDatabaseURL)
	c.Google.TemplateID = os.Getenv(EnvTemplateID)

	if blob := os.Getenv(EnvServiceAccountJSON); blob != "" {
		decoded, err := base64.StdEncoding.DecodeString(blob)
		if err != nil {
			return fmt.Errorf("config: decode %s: %w", EnvServiceAccountJSON, err)
		}
		c.Google.ServiceAccountJSON = decoded
	}

	if raw := os.Getenv(EnvAdminIDs); raw != "" {
		ids, err := ParseAdminIDs(raw)
		if err != nil {
			return err
		}
		c.Admin.ChatIDs = ids
	}
	return nil
}

// ParseAdminIDs parses a comma-separated list of chat identifiers.
func ParseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: parse admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
	if len(c.Bot.Cities) == 0 {
		c.Bot.Cities = append([]string(nil), defaultCities...)
	}
	if c.Bot.InvoicePage == 0 {
		c.Bot.InvoicePage = 15
	}
	if c.Google.BalanceReadCell == "" {
		c.Google.BalanceReadCell = "K11"
	}
	if c.Google.BalanceWriteCell == "" {
		c.Google.BalanceWriteCell = "G11"
	}
	if c.Google.ShareAnyone == nil {
		t := true
		c.Google.ShareAnyone = &t
	}
	if c.Refresh.Cron == "" {
		c.Refresh.Cron = "0 * * * *"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required settings are present.
func (c *Config) validate() error {
	var errs []string
	if c.Telegram.Token == "" {
		errs = append(errs, EnvTelegramToken+" is required")
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, EnvOpenAIKey+" is required")
	}
	if c.Database.URL == "" {
		errs = append(errs, EnvDatabaseURL+" is required")
	}
	if len(c.Google.ServiceAccountJSON) == 0 {
		errs = append(errs, EnvServiceAccountJSON+" is required")
	}
	if c.Google.TemplateID == "" {
		errs = append(errs, EnvTemplateID+" is required")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
