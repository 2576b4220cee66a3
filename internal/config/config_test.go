package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		content := []byte(`
database:
  type: sqlite
  dsn: gotube.db
app:
  enabled: true
port: 8081
debug: true
cache_days:
  categories: 14
`)
		tmpfile, _ := os.CreateTemp("", "config.yaml")
		defer os.Remove(tmpfile.Name())
		tmpfile.Write(content)
		tmpfile.Close()

		config, _, err := LoadConfig(tmpfile.Name())
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if config.Database.Type != "sqlite" || config.Database.DSN != "gotube.db" {
			t.Errorf("Unexpected database config: %+v", config.Database)
		}
		if config.Port != 8081 {
			t.Errorf("Expected port 8081, got %d", config.Port)
		}
		if !config.Debug {
			t.Error("Expected debug to be true")
		}
		if !config.App.Enabled {
			t.Error("Expected app to be enabled")
		}
		if config.Cache.Categories != 14 {
			t.Errorf("Expected categories TTL 14 days, got %d", config.Cache.Categories)
		}
	})

	t.Run("missing database config", func(t *testing.T) {
		tmpfile, _ := os.CreateTemp("", "config.yaml")
		defer os.Remove(tmpfile.Name())
		tmpfile.Write([]byte(`port: 8080`))
		tmpfile.Close()

		_, _, err := LoadConfig(tmpfile.Name())
		if err == nil {
			t.Error("Expected an error for missing database config, but got nil")
		}
	})

	t.Run("defaults are applied", func(t *testing.T) {
		tmpfile, _ := os.CreateTemp("", "config.yaml")
		defer os.Remove(tmpfile.Name())
		tmpfile.Write([]byte("database:\n  type: sqlite\n  dsn: test.db\n"))
		tmpfile.Close()

		config, warning, err := LoadConfig(tmpfile.Name())
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if config.Port != 8080 {
			t.Errorf("Expected default port 8080, got %d", config.Port)
		}
		if config.Quota.PerProxyLimit != 1 {
			t.Errorf("Expected default per-proxy limit 1, got %d", config.Quota.PerProxyLimit)
		}
		if warning == "" {
			t.Error("Expected a warning about the defaulted per-proxy limit")
		}
		if config.Upstream.Region != "RU" || config.Upstream.Language != "ru" {
			t.Errorf("Unexpected upstream defaults: %+v", config.Upstream)
		}
		if config.Upstream.TimeoutSeconds != 15 {
			t.Errorf("Expected default timeout 15s, got %d", config.Upstream.TimeoutSeconds)
		}
		if config.Filter.BlockedLanguage != "uk" {
			t.Errorf("Expected default blocked language uk, got %s", config.Filter.BlockedLanguage)
		}
		if config.Cache.Categories != 7 {
			t.Errorf("Expected default categories TTL 7 days, got %d", config.Cache.Categories)
		}
		if config.Cache.Video != 1 {
			t.Errorf("Expected default video TTL 1 day, got %d", config.Cache.Video)
		}
		if config.App.Enabled {
			t.Error("Expected app to be disabled unless configured")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		tmpfile, _ := os.CreateTemp("", "config.yaml")
		defer os.Remove(tmpfile.Name())
		tmpfile.Write([]byte(`port: [not a number`))
		tmpfile.Close()

		_, _, err := LoadConfig(tmpfile.Name())
		if err == nil {
			t.Error("Expected an error for invalid yaml, but got nil")
		}
	})
}
