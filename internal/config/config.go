package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the skytag bot configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Feed       FeedConfig       `yaml:"feed"`
	Reddit     RedditConfig     `yaml:"reddit"`
	OCR        OCRConfig        `yaml:"ocr"`
	FlightData FlightDataConfig `yaml:"flight_data"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Cache      CacheConfig      `yaml:"cache"`
	Database   DatabaseConfig   `yaml:"database"`
	Scan       ScanConfig       `yaml:"scan"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds ops HTTP server settings (health + metrics).
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// FeedConfig identifies the watched forum feed.
type FeedConfig struct {
	Subreddit  string `yaml:"subreddit"`
	Limit      int    `yaml:"limit"`        // newest posts fetched per batch
	MaxAgeHour int    `yaml:"max_age_hour"` // posts older than this are skipped
}

// RedditConfig holds script-app credentials for the post source.
type RedditConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	UserAgent    string `yaml:"user_agent"`
}

// OCRConfig holds text extraction settings.
type OCRConfig struct {
	// TessdataPrefix optionally points the OCR engine at a tessdata directory.
	TessdataPrefix  string `yaml:"tessdata_prefix"`
	FetchTimeoutSec int    `yaml:"fetch_timeout_sec"`
}

// FlightDataConfig holds flight status lookup settings.
type FlightDataConfig struct {
	BaseURL        string `yaml:"base_url"`
	RenderWaitSec  int    `yaml:"render_wait_sec"`  // bounded wait for the data table
	SettleDelaySec int    `yaml:"settle_delay_sec"` // fixed delay for async table population
}

// DedupConfig selects and configures the processed-post store.
type DedupConfig struct {
	Backend string `yaml:"backend"` // file, redis (default: file)
	Path    string `yaml:"path"`    // file backend: newline-delimited id list
}

// CacheConfig holds enrichment cache settings (requires redis).
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"`
}

// DatabaseConfig holds redis connection settings, needed when the dedup
// backend is redis or the enrichment cache is enabled.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ScanConfig controls the batch loop.
type ScanConfig struct {
	IntervalSec int `yaml:"interval_sec"` // 0 = run one batch and exit
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Feed.Limit <= 0 {
		c.Feed.Limit = 25
	}
	if c.Feed.MaxAgeHour <= 0 {
		c.Feed.MaxAgeHour = 1
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = "skytag:aircraft-registration-bot:v0 (by /u/skytagbot)"
	}
	if c.OCR.FetchTimeoutSec <= 0 {
		c.OCR.FetchTimeoutSec = 30
	}
	if c.FlightData.BaseURL == "" {
		c.FlightData.BaseURL = "https://www.flightradar24.com/data/aircraft"
	}
	if c.FlightData.RenderWaitSec <= 0 {
		c.FlightData.RenderWaitSec = 20
	}
	if c.FlightData.SettleDelaySec <= 0 {
		c.FlightData.SettleDelaySec = 5
	}
	if c.Dedup.Backend == "" {
		c.Dedup.Backend = "file"
	}
	if c.Dedup.Path == "" {
		c.Dedup.Path = "submissions.csv"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 600
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Feed.Subreddit == "" {
		return fmt.Errorf("feed.subreddit is required")
	}
	switch c.Dedup.Backend {
	case "file", "redis":
		// ok
	default:
		return fmt.Errorf("dedup.backend must be \"file\" or \"redis\", got %q", c.Dedup.Backend)
	}
	if c.Dedup.Backend == "redis" && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required for the redis dedup backend")
	}
	if c.Cache.Enabled && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required when cache.enabled is true")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
