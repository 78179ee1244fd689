package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Server.CallbackPath != "/oauth2/callback" {
			t.Errorf("expected callback path /oauth2/callback, got %s", config.Server.CallbackPath)
		}

		if config.Server.Timeout.Duration != 2*time.Minute {
			t.Errorf("expected timeout 2m, got %v", config.Server.Timeout)
		}

		if config.Database.Path != "./oneshot.db" {
			t.Errorf("expected database path ./oneshot.db, got %s", config.Database.Path)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("Address and RedirectURL", func(t *testing.T) {
		s := ServerConfig{Host: "127.0.0.1", Port: 8085, CallbackPath: "/cb"}

		if got := s.Address(); got != "127.0.0.1:8085" {
			t.Errorf("Address() = %s", got)
		}
		if got := s.RedirectURL(); got != "http://127.0.0.1:8085/cb" {
			t.Errorf("RedirectURL() = %s", got)
		}
	})

	t.Run("OAuth2", func(t *testing.T) {
		o := OAuthConfig{ClientID: "id", ClientSecret: "secret", AuthURL: "https://a", TokenURL: "https://t", Scopes: []string{"x"}}
		c := o.OAuth2("http://127.0.0.1:3000/cb")

		if c.ClientID != "id" || c.Endpoint.AuthURL != "https://a" || c.Endpoint.TokenURL != "https://t" {
			t.Errorf("unexpected oauth2 config: %+v", c)
		}
		if c.RedirectURL != "http://127.0.0.1:3000/cb" {
			t.Errorf("unexpected redirect url %s", c.RedirectURL)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "empty host", mutate: func(c *Config) { c.Server.Host = "" }},
			{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }},
			{name: "relative path", mutate: func(c *Config) { c.Server.CallbackPath = "callback" }},
			{name: "root path", mutate: func(c *Config) { c.Server.CallbackPath = "/" }},
			{name: "health path", mutate: func(c *Config) { c.Server.CallbackPath = "/health" }},
			{name: "negative timeout", mutate: func(c *Config) { c.Server.Timeout.Duration = -time.Second }},
			{name: "negative rate", mutate: func(c *Config) { c.Server.RateLimit = -1 }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)

				err := config.Validate()
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("OAuthConfig Validate", func(t *testing.T) {
		if err := (OAuthConfig{}).Validate(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if err := (OAuthConfig{ClientID: "id"}).Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
		if err := DefaultConfig().OAuth.Validate(); err != nil {
			t.Errorf("default oauth config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Server.CallbackPath != DefaultConfig().Server.CallbackPath {
			t.Errorf("created config callback path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[server]
host = "0.0.0.0"
port = 8080
callback_path = "/auth/done"
timeout = "30s"

[oauth]
client_id = "test_client_id"
auth_url = "https://idp.test/authorize"
token_url = "https://idp.test/token"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Server.Timeout.Duration != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", config.Server.Timeout)
		}

		if config.Server.ShutdownTimeout.Duration != 5*time.Second {
			t.Errorf("expected default shutdown timeout 5s, got %v", config.Server.ShutdownTimeout)
		}

		if config.OAuth.ClientID != "test_client_id" {
			t.Errorf("expected client_id test_client_id, got %s", config.OAuth.ClientID)
		}
	})

	t.Run("LoadConfig rejects bad duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error for invalid duration")
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.Server.Port = 4242
		config.Server.Timeout.Duration = 90 * time.Second

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Server.Port != 4242 {
			t.Errorf("expected port 4242, got %d", loaded.Server.Port)
		}
		if loaded.Server.Timeout.Duration != 90*time.Second {
			t.Errorf("expected timeout 90s, got %v", loaded.Server.Timeout)
		}
	})
}
