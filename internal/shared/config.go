package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	OAuth    OAuthConfig    `toml:"oauth"`
	Database DatabaseConfig `toml:"database"`
}

// ServerConfig contains callback listener settings.
type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            int      `toml:"port"`
	CallbackPath    string   `toml:"callback_path"`
	Timeout         Duration `toml:"timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	RateLimit       float64  `toml:"rate_limit"`
	RateBurst       int      `toml:"rate_burst"`
}

// OAuthConfig contains the client registration used by the login command.
type OAuthConfig struct {
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	AuthURL      string   `toml:"auth_url"`
	TokenURL     string   `toml:"token_url"`
	Scopes       []string `toml:"scopes"`
}

// DatabaseConfig contains run history database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Duration is a [time.Duration] that round-trips through TOML as a string like "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Address returns the host:port the listener binds to.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedirectURL is the loopback URL registered with the identity provider.
func (s ServerConfig) RedirectURL() string {
	return fmt.Sprintf("http://%s%s", s.Address(), s.CallbackPath)
}

// OAuth2 builds an [oauth2.Config] for the given redirect URL.
func (o OAuthConfig) OAuth2(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  o.AuthURL,
			TokenURL: o.TokenURL,
		},
		RedirectURL: redirectURL,
		Scopes:      o.Scopes,
	}
}

// Validate checks the listener settings. OAuth settings are checked separately by [OAuthConfig.Validate]
// since only the login command needs them.
func (c *Config) Validate() error {
	s := c.Server
	if s.Host == "" {
		return fmt.Errorf("%w: server.host is empty", ErrInvalidConfig)
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, s.Port)
	}
	if !strings.HasPrefix(s.CallbackPath, "/") || s.CallbackPath == "/" || s.CallbackPath == "/health" {
		return fmt.Errorf("%w: server.callback_path %q must be an absolute path other than / and /health", ErrInvalidConfig, s.CallbackPath)
	}
	if s.Timeout.Duration < 0 || s.ShutdownTimeout.Duration < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if s.RateLimit < 0 || s.RateBurst < 0 {
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Validate checks that a client registration is present.
func (o OAuthConfig) Validate() error {
	if o.ClientID == "" {
		return fmt.Errorf("%w: oauth.client_id must be set", ErrMissingCredentials)
	}
	if o.AuthURL == "" || o.TokenURL == "" {
		return fmt.Errorf("%w: oauth.auth_url and oauth.token_url must be set", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their defaults from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes the config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
