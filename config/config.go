package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config contains runtime configuration values for the shell session.
type Config struct {
	SnapshotDir     string        // Directory snapshots are written to (Default "backups")
	AutoSnapshot    bool          // Write a snapshot after every mutating command (Default true)
	RestoreOnStart  bool          // Restore the newest snapshot at startup (Default true)
	EnabledCommands []string      // Verbs the dispatcher accepts (Default DefaultCommands)
	LogOperations   bool          // Record executed commands in the history stack (Default true)
	ChatbotEnabled  bool          // Hand unknown input to the translator (Default true)
	Model           string        // Gemini model name (Default "gemini-2.5-flash")
	BaseURL         string        // Gemini API base URL; override for tests
	APIKey          string        // Gemini credential; env-only, never read from config files
	RequestTimeout  time.Duration // End-to-end budget for one translation call (Default 30s)
	MaxRetries      int           // Retry budget for the translation HTTP call (Default 2)

	// Circuit breaker settings for the translator upstream
	BreakerMaxFailures uint32
	BreakerTimeout     time.Duration
}

// CommandEnabled reports whether verb may be dispatched.
func (c *Config) CommandEnabled(verb string) bool {
	return slices.Contains(c.EnabledCommands, verb)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero
// values when loading partial configuration. See [Config] for field
// descriptions. Environment variables are read with the MEMFSH_ prefix.
type ConfigOverride struct {
	SnapshotDir     *string        `yaml:"snapshot_dir,omitempty" json:"snapshot_dir,omitempty" envconfig:"SNAPSHOT_DIR"`
	AutoSnapshot    *bool          `yaml:"auto_snapshot,omitempty" json:"auto_snapshot,omitempty" envconfig:"AUTO_SNAPSHOT"`
	RestoreOnStart  *bool          `yaml:"restore_on_start,omitempty" json:"restore_on_start,omitempty" envconfig:"RESTORE_ON_START"`
	EnabledCommands []string       `yaml:"enabled_commands,omitempty" json:"enabled_commands,omitempty" envconfig:"ENABLED_COMMANDS"`
	LogOperations   *bool          `yaml:"log_operations,omitempty" json:"log_operations,omitempty" envconfig:"LOG_OPERATIONS"`
	ChatbotEnabled  *bool          `yaml:"chatbot_enabled,omitempty" json:"chatbot_enabled,omitempty" envconfig:"CHATBOT_ENABLED"`
	Model           *string        `yaml:"model,omitempty" json:"model,omitempty" envconfig:"MODEL"`
	BaseURL         *string        `yaml:"base_url,omitempty" json:"base_url,omitempty" envconfig:"BASE_URL"`
	RequestTimeout  *time.Duration `yaml:"request_timeout,omitempty" json:"request_timeout,omitempty" envconfig:"REQUEST_TIMEOUT"`
	MaxRetries      *int           `yaml:"max_retries,omitempty" json:"max_retries,omitempty" envconfig:"MAX_RETRIES"`

	BreakerMaxFailures *uint32        `yaml:"breaker_max_failures,omitempty" json:"breaker_max_failures,omitempty" envconfig:"BREAKER_MAX_FAILURES"`
	BreakerTimeout     *time.Duration `yaml:"breaker_timeout,omitempty" json:"breaker_timeout,omitempty" envconfig:"BREAKER_TIMEOUT"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		SnapshotDir:        DefaultSnapshotDir,
		AutoSnapshot:       true,
		RestoreOnStart:     true,
		EnabledCommands:    slices.Clone(DefaultCommands),
		LogOperations:      true,
		ChatbotEnabled:     true,
		Model:              DefaultModel,
		BaseURL:            DefaultBaseURL,
		RequestTimeout:     DefaultRequestTimeoutSec * time.Second,
		MaxRetries:         DefaultMaxRetries,
		BreakerMaxFailures: DefaultBreakerMaxFailures,
		BreakerTimeout:     DefaultBreakerTimeoutSec * time.Second,
	}
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.SnapshotDir != nil {
		c.SnapshotDir = *override.SnapshotDir
	}
	if override.AutoSnapshot != nil {
		c.AutoSnapshot = *override.AutoSnapshot
	}
	if override.RestoreOnStart != nil {
		c.RestoreOnStart = *override.RestoreOnStart
	}
	if override.EnabledCommands != nil {
		c.EnabledCommands = slices.Clone(override.EnabledCommands)
	}
	if override.LogOperations != nil {
		c.LogOperations = *override.LogOperations
	}
	if override.ChatbotEnabled != nil {
		c.ChatbotEnabled = *override.ChatbotEnabled
	}
	if override.Model != nil {
		c.Model = *override.Model
	}
	if override.BaseURL != nil {
		c.BaseURL = *override.BaseURL
	}
	if override.RequestTimeout != nil {
		c.RequestTimeout = *override.RequestTimeout
	}
	if override.MaxRetries != nil {
		c.MaxRetries = *override.MaxRetries
	}
	if override.BreakerMaxFailures != nil {
		c.BreakerMaxFailures = *override.BreakerMaxFailures
	}
	if override.BreakerTimeout != nil {
		c.BreakerTimeout = *override.BreakerTimeout
	}
	// Removal-class verbs stay enabled no matter what the override said.
	for _, verb := range requiredCommands {
		if !slices.Contains(c.EnabledCommands, verb) {
			c.EnabledCommands = append(c.EnabledCommands, verb)
		}
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromEnv creates a Config from defaults, an optional config file,
// and MEMFSH_* environment variables, applied in that order. The Gemini
// credential is read from GEMINI_API_KEY and never from the config file.
func NewConfigFromEnv(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if path != "" {
		override, err := LoadConfigOverrideFile(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(override)
	}

	var envOverride ConfigOverride
	if err := envconfig.Process("memfsh", &envOverride); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	cfg.Merge(&envOverride)

	cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	return cfg, nil
}
