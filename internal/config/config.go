// Package config loads the architect configuration file and environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvAPIKey       = "ARCHITECT_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvBaseURL      = "ARCHITECT_BASE_URL"
	EnvModels       = "ARCHITECT_MODELS"
	EnvRedisAddr    = "ARCHITECT_REDIS_ADDR"
	EnvDesignSystem = "ARCHITECT_DESIGN_SYSTEM"
)

// DefaultPaths are tried, in order, when no config file is given.
var DefaultPaths = []string{"architect.yaml", "architect.yml", "architect.json", "architect.toml"}

var configValidate = validator.New()

// Config is the full runtime configuration.
type Config struct {
	DesignSystem string   `yaml:"design_system" json:"design_system" toml:"design_system"`
	Model        Model    `yaml:"model" json:"model" toml:"model"`
	Loop         Loop     `yaml:"loop" json:"loop" toml:"loop"`
	Session      Session  `yaml:"session" json:"session" toml:"session"`
	Server       Server   `yaml:"server" json:"server" toml:"server"`
	Log          Log      `yaml:"log" json:"log" toml:"log"`
	Validator    Checks   `yaml:"validator" json:"validator" toml:"validator"`
	Sanitizer    Sanitize `yaml:"sanitizer" json:"sanitizer" toml:"sanitizer"`
}

// Model configures the model service and the cascade.
type Model struct {
	APIKey            string   `yaml:"api_key" json:"api_key" toml:"api_key"`
	BaseURL           string   `yaml:"base_url" json:"base_url" toml:"base_url" validate:"omitempty,url"`
	Cascade           []string `yaml:"cascade" json:"cascade" toml:"cascade" validate:"required,min=1,dive,required"`
	Timeout           Duration `yaml:"timeout" json:"timeout" toml:"timeout"`
	Temperature       float32  `yaml:"temperature" json:"temperature" toml:"temperature" validate:"gte=0,lte=2"`
	TopP              float32  `yaml:"top_p" json:"top_p" toml:"top_p" validate:"gte=0,lte=1"`
	MaxTokens         int      `yaml:"max_tokens" json:"max_tokens" toml:"max_tokens" validate:"gte=0"`
	UnavailableStatus []int    `yaml:"unavailable_statuses" json:"unavailable_statuses" toml:"unavailable_statuses" validate:"dive,gte=100,lte=599"`
	Mock              bool     `yaml:"mock" json:"mock" toml:"mock"`
}

// Loop configures the generate → lint → repair loop.
type Loop struct {
	MaxAttempts   int      `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts" validate:"gte=1,lte=10"`
	Deadline      Duration `yaml:"deadline" json:"deadline" toml:"deadline"`
	HistoryWindow int      `yaml:"history_window" json:"history_window" toml:"history_window" validate:"gte=0"`
}

// Session configures conversation storage.
type Session struct {
	Store         string `yaml:"store" json:"store" toml:"store" validate:"oneof=memory file redis"`
	Dir           string `yaml:"dir" json:"dir" toml:"dir"`
	RedisAddr     string `yaml:"redis_addr" json:"redis_addr" toml:"redis_addr" validate:"required_if=Store redis"`
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix" toml:"redis_prefix"`
	MaxTurns      int    `yaml:"max_turns" json:"max_turns" toml:"max_turns" validate:"gte=2"`
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key" toml:"encryption_key" validate:"omitempty,len=32"`
	RedactPII     bool   `yaml:"redact_pii" json:"redact_pii" toml:"redact_pii"`
	Audit         bool   `yaml:"audit" json:"audit" toml:"audit"`
}

// Server configures the HTTP adapter.
type Server struct {
	Addr        string   `yaml:"addr" json:"addr" toml:"addr" validate:"required"`
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins" toml:"cors_origins"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level" json:"level" toml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" json:"format" toml:"format" validate:"oneof=text json"`
}

// Checks toggles validator rules.
type Checks struct {
	SkipColors         bool `yaml:"skip_colors" json:"skip_colors" toml:"skip_colors"`
	MaxColorViolations int  `yaml:"max_color_violations" json:"max_color_violations" toml:"max_color_violations" validate:"gte=0"`
}

// Sanitize configures the input policy.
type Sanitize struct {
	MaxInputSize int `yaml:"max_input_size" json:"max_input_size" toml:"max_input_size" validate:"gte=0"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Model: Model{
			Cascade:     []string{"gpt-4o-mini", "gpt-4o"},
			Timeout:     Duration(30 * time.Second),
			Temperature: 0.2,
			TopP:        0.9,
			MaxTokens:   4096,
		},
		Loop: Loop{
			MaxAttempts:   3,
			HistoryWindow: 6,
		},
		Session: Session{
			Store:       "memory",
			Dir:         ".architect/sessions",
			RedisPrefix: "architect:",
			MaxTurns:    20,
		},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info", Format: "text"},
	}
}

// Load reads path (or the first of DefaultPaths that exists when path is
// empty) over the defaults, applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = discover()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct constraints.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".json":
		err = json.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Model.APIKey = v
	} else if v := os.Getenv(EnvOpenAIKey); v != "" && c.Model.APIKey == "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv(EnvModels); v != "" {
		var models []string
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		c.Model.Cascade = models
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Session.RedisAddr = v
		c.Session.Store = "redis"
	}
	if v := os.Getenv(EnvDesignSystem); v != "" {
		c.DesignSystem = v
	}
}

func discover() string {
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
