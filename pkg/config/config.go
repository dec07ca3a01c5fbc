package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	// Event timezones must resolve on hosts without a zoneinfo database.
	_ "time/tzdata"
)

const (
	// FileName is the config file looked up when no explicit path is given.
	FileName = "staffdesk.yaml"

	// DatabaseURLEnv overrides Config.Database.URL when set.
	DatabaseURLEnv = "STAFFDESK_DATABASE_URL"

	// TimestampFormat is the layout used for time option values and dates in
	// the config file.
	TimestampFormat = "2006-01-02 15:04:05"
	DateFormat      = "2006-01-02"
)

// Config is the full application configuration.
type Config struct {
	Event    Event          `yaml:"event"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Email    EmailConfig    `yaml:"email"`
	Theme    ThemeConfig    `yaml:"theme"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig controls the admin HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	TemplatesDir    string        `yaml:"templatesDir"`
	WatchTemplates  bool          `yaml:"watchTemplates"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	SecureCookies   bool          `yaml:"secureCookies"`
}

// DatabaseConfig holds the postgres connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// EmailConfig configures outgoing mail through the Gmail API.
type EmailConfig struct {
	Sender          string        `yaml:"sender" validate:"omitempty,email"`
	CredentialsFile string        `yaml:"credentialsFile"`
	TokenFile       string        `yaml:"tokenFile"`
	Interval        time.Duration `yaml:"interval"`
}

// ThemeConfig feeds the admin layout theme.
type ThemeConfig struct {
	Name    string            `yaml:"name"`
	Variant string            `yaml:"variant"`
	Tokens  map[string]string `yaml:"tokens"`
	CSSVars map[string]string `yaml:"cssVars"`
}

// LogConfig selects where logs go.
type LogConfig struct {
	Dir   string `yaml:"dir"`
	Debug bool   `yaml:"debug"`
}

var validate = validator.New()

// Load reads the configuration at path. An empty path falls back to
// FileName in the current directory, then in the user's home directory.
// A .env file next to the working directory is loaded first so environment
// overrides can live there.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if strings.TrimSpace(path) == "" {
		found, err := findConfigFile()
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		path = found
	}
	return LoadFromPath(path)
}

// LoadFromPath reads, parses and validates the configuration file at path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if url := strings.TrimSpace(os.Getenv(DatabaseURLEnv)); url != "" {
		cfg.Database.URL = url
	}
	return cfg, nil
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and resolves the event calendar.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.Event.resolve(); err != nil {
		return fmt.Errorf("config: event: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8282"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Email.Interval <= 0 {
		c.Email.Interval = 3 * time.Second
	}
	if c.Event.Timezone == "" {
		c.Event.Timezone = "UTC"
	}
	if c.Event.SetupShiftDays < 0 {
		c.Event.SetupShiftDays = 0
	}
}

func findConfigFile() (string, error) {
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	homePath := filepath.Join(homeDir, FileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", FileName)
}
