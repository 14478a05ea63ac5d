package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Session   SessionConfig   `yaml:"session"`
	Wizard    WizardConfig    `yaml:"wizard"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Log       LogConfig       `yaml:"log"`

	// DevMode relaxes secret validation. Env-only.
	DevMode bool `yaml:"-"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatasetConfig locates the SQLite seed database.
// ":memory:" loads the built-in demo dataset without touching disk.
type DatasetConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig controls visitor sessions and their cookie.
type SessionConfig struct {
	Secret        string   `yaml:"-"` // env-only, never in YAML
	CookieName    string   `yaml:"cookie_name"`
	CookieSecure  bool     `yaml:"cookie_secure"`
	MaxAge        Duration `yaml:"max_age"`
	IdleTTL       Duration `yaml:"idle_ttl"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

// WizardConfig controls the simulated location detection.
type WizardConfig struct {
	LocationDelay    Duration `yaml:"location_delay"`
	DetectedLocation string   `yaml:"detected_location"`
}

// EmbeddingConfig contains similar-report hint settings.
// Hints are disabled when no API key is set.
type EmbeddingConfig struct {
	APIKey              string  `yaml:"-"` // env-only, never in YAML
	Model               string  `yaml:"model"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxHints            int     `yaml:"max_hints"`
}

// Enabled reports whether similar-report hints should be served.
func (e EmbeddingConfig) Enabled() bool {
	return e.APIKey != ""
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("AEQUIFLOW_CONFIG_PATH", "config/aequiflow.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path, which must exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Dataset: DatasetConfig{
			Path: ":memory:",
		},
		Session: SessionConfig{
			CookieName:    "aequiflow_session",
			MaxAge:        Duration(24 * time.Hour),
			IdleTTL:       Duration(30 * time.Minute),
			SweepInterval: Duration(5 * time.Minute),
		},
		Wizard: WizardConfig{
			LocationDelay:    Duration(1500 * time.Millisecond),
			DetectedLocation: "Novaliches, Quezon City (Auto-detected)",
		},
		Embedding: EmbeddingConfig{
			Model:               "text-embedding-3-small",
			SimilarityThreshold: 0.8,
			MaxHints:            3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty, parseable env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("AEQUIFLOW_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	envDuration("AEQUIFLOW_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("AEQUIFLOW_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("AEQUIFLOW_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Dataset
	if v := os.Getenv("AEQUIFLOW_DATASET_PATH"); v != "" {
		cfg.Dataset.Path = v
	}

	// Session
	if v := os.Getenv("AEQUIFLOW_SESSION_SECRET"); v != "" {
		cfg.Session.Secret = v
	}
	if v := os.Getenv("AEQUIFLOW_COOKIE_SECURE"); v != "" {
		cfg.Session.CookieSecure = v == "true" || v == "1"
	}
	envDuration("AEQUIFLOW_SESSION_MAX_AGE", &cfg.Session.MaxAge)
	envDuration("AEQUIFLOW_SESSION_IDLE_TTL", &cfg.Session.IdleTTL)
	envDuration("AEQUIFLOW_SESSION_SWEEP_INTERVAL", &cfg.Session.SweepInterval)

	// Wizard
	envDuration("AEQUIFLOW_LOCATION_DELAY", &cfg.Wizard.LocationDelay)
	if v := os.Getenv("AEQUIFLOW_DETECTED_LOCATION"); v != "" {
		cfg.Wizard.DetectedLocation = v
	}

	// Embedding (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("AEQUIFLOW_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("AEQUIFLOW_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Embedding.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("AEQUIFLOW_MAX_HINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.MaxHints = n
		}
	}

	// Log
	if v := os.Getenv("AEQUIFLOW_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AEQUIFLOW_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	cfg.DevMode = os.Getenv("AEQUIFLOW_DEV_MODE") == "true"
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// validate checks value ranges, then required secrets.
// In dev mode (AEQUIFLOW_DEV_MODE=true) the session secret may be empty.
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	positive := map[string]Duration{
		"server.read_timeout":    c.Server.ReadTimeout,
		"server.write_timeout":   c.Server.WriteTimeout,
		"session.max_age":        c.Session.MaxAge,
		"session.idle_ttl":       c.Session.IdleTTL,
		"session.sweep_interval": c.Session.SweepInterval,
	}
	for name, d := range positive {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Wizard.LocationDelay < 0 {
		return errors.New("wizard.location_delay must not be negative")
	}
	if c.Embedding.SimilarityThreshold <= 0 || c.Embedding.SimilarityThreshold > 1 {
		return fmt.Errorf("embedding.similarity_threshold %.2f must be within (0, 1]", c.Embedding.SimilarityThreshold)
	}
	if c.Embedding.MaxHints < 1 {
		return errors.New("embedding.max_hints must be at least 1")
	}

	if c.DevMode {
		return nil
	}

	if c.Session.Secret == "" {
		return errors.New("AEQUIFLOW_SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("AEQUIFLOW_SESSION_SECRET must be at least 32 bytes")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
