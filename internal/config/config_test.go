package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvTelegramToken, "test-token")
	t.Setenv(EnvOpenAIKey, "sk-test")
	t.Setenv(EnvDatabaseURL, "postgres://localhost/invoicebot_test")
	t.Setenv(EnvServiceAccountJSON, base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`)))
	t.Setenv(EnvTemplateID, "tpl-1")
	t.Setenv(EnvAdminIDs, "")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %q", cfg.OpenAI.Model)
	}
	if len(cfg.Bot.Cities) == 0 {
		t.Error("default city list is empty")
	}
	if cfg.Bot.InvoicePage != 15 {
		t.Errorf("invoice page = %d", cfg.Bot.InvoicePage)
	}
	if cfg.Google.BalanceReadCell != "K11" || cfg.Google.BalanceWriteCell != "G11" {
		t.Errorf("balance cells = %q / %q", cfg.Google.BalanceReadCell, cfg.Google.BalanceWriteCell)
	}
	if cfg.Google.ShareAnyone == nil || !*cfg.Google.ShareAnyone {
		t.Error("share_anyone should default to true")
	}
	if cfg.Refresh.Cron != "0 * * * *" {
		t.Errorf("cron = %q", cfg.Refresh.Cron)
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("port = %d", cfg.Dashboard.Port)
	}
	if string(cfg.Google.ServiceAccountJSON) != `{"type":"service_account"}` {
		t.Errorf("service account json = %q", cfg.Google.ServiceAccountJSON)
	}
}

func TestLoadYAMLOverrides(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "invoicebot.yaml")
	yaml := `
openai:
  model: gpt-4o-mini
google:
  operator_email: ops@example.com
  share_anyone: false
bot:
  cities: ["Бишкек"]
  invoice_page: 5
refresh:
  enabled: true
  cron: "*/10 * * * *"
dashboard:
  enabled: true
  port: 9090
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.OpenAI.Model)
	}
	if cfg.Google.OperatorEmail != "ops@example.com" {
		t.Errorf("operator = %q", cfg.Google.OperatorEmail)
	}
	if cfg.Google.ShareAnyone == nil || *cfg.Google.ShareAnyone {
		t.Error("share_anyone false in yaml must survive defaulting")
	}
	if len(cfg.Bot.Cities) != 1 || cfg.Bot.Cities[0] != "Бишкек" {
		t.Errorf("cities = %v", cfg.Bot.Cities)
	}
	if cfg.Bot.InvoicePage != 5 {
		t.Errorf("invoice page = %d", cfg.Bot.InvoicePage)
	}
	if !cfg.Refresh.Enabled || cfg.Refresh.Cron != "*/10 * * * *" {
		t.Errorf("refresh = %+v", cfg.Refresh)
	}
	if !cfg.Dashboard.Enabled || cfg.Dashboard.Port != 9090 {
		t.Errorf("dashboard = %+v", cfg.Dashboard)
	}
}

func TestLoadMissingSecrets(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvTelegramToken, "")
	t.Setenv(EnvTemplateID, "")

	_, err := Load("")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.Contains(err.Error(), EnvTelegramToken) || !strings.Contains(err.Error(), EnvTemplateID) {
		t.Errorf("error %q should name every missing variable", err)
	}
}

func TestLoadBadServiceAccountEncoding(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvServiceAccountJSON, "%%% not base64 %%%")

	if _, err := Load(""); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestParseAdminIDs(t *testing.T) {
	ids, err := ParseAdminIDs("1, 2,3")
	if err != nil {
		t.Fatalf("ParseAdminIDs: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("ids = %v", ids)
	}

	if _, err := ParseAdminIDs("1,abc"); err == nil {
		t.Error("expected an error for a non-numeric id")
	}
}

func TestLoadAdminIDsFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv(EnvAdminIDs, "42,43")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Admin.ChatIDs) != 2 || cfg.Admin.ChatIDs[0] != 42 || cfg.Admin.ChatIDs[1] != 43 {
		t.Errorf("admin ids = %v", cfg.Admin.ChatIDs)
	}
}
