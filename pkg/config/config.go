package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Request   RequestConfig   `yaml:"request"`
	Log       LogConfig       `yaml:"log"`
	DB        DBConfig        `yaml:"db"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Wikipedia WikipediaConfig `yaml:"wikipedia"`
	Game      GameConfig      `yaml:"game"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries   int      `yaml:"retries"`
	Timeout   Duration `yaml:"timeout"`
	UserAgent string   `yaml:"user_agent"`
	// Gap is the pause between two requests to the same provider.
	Gap     Duration      `yaml:"gap"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	Events   LogSettings `yaml:"events"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig controls the article markup response cache.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	TTL     Duration `yaml:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// WikipediaConfig selects the encyclopedia edition.
type WikipediaConfig struct {
	Language string `yaml:"language"`
	Endpoint string `yaml:"endpoint"` // Optional API override, e.g. a local mirror
}

// GameConfig holds the rules of a game session.
type GameConfig struct {
	CandidateLimit int      `yaml:"candidate_limit"`
	GoalPoints     int      `yaml:"goal_points"`
	FetchTimeout   Duration `yaml:"fetch_timeout"`
	StartAttempts  int      `yaml:"start_attempts"`
	SessionTTL     Duration `yaml:"session_ttl"`
}

// BaseURL returns the article site root for the configured language.
func (w WikipediaConfig) BaseURL() string {
	lang := w.Language
	if lang == "" {
		lang = "en"
	}
	return fmt.Sprintf("https://%s.wikipedia.org", lang)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Gap:     Duration(100 * time.Millisecond),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
				MaxDelay:  Duration(30 * time.Second),
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/wikigame.db",
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration(10 * time.Minute),
		},
		Server: ServerConfig{
			Address: "localhost:8420",
		},
		Wikipedia: WikipediaConfig{
			Language: "en",
		},
		Game: GameConfig{
			CandidateLimit: 5,
			GoalPoints:     10,
			FetchTimeout:   Duration(15 * time.Second),
			StartAttempts:  3,
			SessionTTL:     Duration(2 * time.Hour),
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it overlays its values on the defaults but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets the environment (or a .env file loaded by the caller) win over the file.
func applyEnv(cfg *Config) {
	if addr := os.Getenv("WIKIGAME_ADDR"); addr != "" {
		cfg.Server.Address = addr
	}
	if lang := os.Getenv("WIKIGAME_LANG"); lang != "" {
		cfg.Wikipedia.Language = lang
	}
	if level := os.Getenv("WIKIGAME_LOG_LEVEL"); level != "" {
		cfg.Log.Server.Level = level
	}
}

var languageCode = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]+)?$`)

// Validate checks values the game cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if !languageCode.MatchString(c.Wikipedia.Language) {
		errs = append(errs, fmt.Errorf("invalid wikipedia.language '%s': must be a wiki code like 'en' or 'de'", c.Wikipedia.Language))
	}
	if c.Game.CandidateLimit <= 0 {
		errs = append(errs, fmt.Errorf("game.candidate_limit must be positive, got %d", c.Game.CandidateLimit))
	}
	if c.Game.GoalPoints < 0 {
		errs = append(errs, fmt.Errorf("game.goal_points must not be negative, got %d", c.Game.GoalPoints))
	}
	if c.Game.StartAttempts <= 0 {
		errs = append(errs, fmt.Errorf("game.start_attempts must be positive, got %d", c.Game.StartAttempts))
	}
	if c.Request.Retries <= 0 {
		errs = append(errs, fmt.Errorf("request.retries must be positive, got %d", c.Request.Retries))
	}
	if c.Request.Gap < 0 {
		errs = append(errs, fmt.Errorf("request.gap must not be negative, got %v", c.Request.Gap.Std()))
	}
	return errors.Join(errs...)
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# wikigame Configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
# Environment overrides: WIKIGAME_ADDR, WIKIGAME_LANG, WIKIGAME_LOG_LEVEL

`)
	data = append(header, data...)

	reLevel := regexp.MustCompile(`(?m)^(\s+)level:`)
	data = reLevel.ReplaceAll(data, []byte("${1}# Options: DEBUG, INFO, WARN, ERROR\n${1}level:"))

	reLimit := regexp.MustCompile(`(?m)^(\s+)candidate_limit:`)
	data = reLimit.ReplaceAll(data, []byte("${1}# Number of outgoing links offered as quick moves\n${1}candidate_limit:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
