package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppDirName is the per-user data directory under $HOME.
const AppDirName = ".dota-draft-companion"

// Config represents the application configuration.
type Config struct {
	// OpenDota API access
	OpenDota OpenDotaConfig `toml:"opendota"`

	// Pattern mining
	Mining MiningConfig `toml:"mining"`

	// Pattern export/import
	Patterns PatternsConfig `toml:"patterns"`

	// Local database
	Storage StorageConfig `toml:"storage"`

	// REST API server
	API APIConfig `toml:"api"`

	// Logging
	Log LogConfig `toml:"log"`

	// Recommendation request limits
	Recommend RecommendConfig `toml:"recommend"`
}

// OpenDotaConfig contains OpenDota API client settings.
type OpenDotaConfig struct {
	BaseURL      string  `toml:"base_url"`       // API root, e.g. https://api.opendota.com
	RateLimit    float64 `toml:"rate_limit"`     // Requests per second
	Timeout      string  `toml:"timeout"`        // Per-request timeout (e.g., "30s")
	MatchCount   int     `toml:"match_count"`    // Recent matches fetched per refresh
	CacheTTL     string  `toml:"cache_ttl"`      // Recent match list cache TTL
	HeroCacheTTL string  `toml:"hero_cache_ttl"` // Hero stats cache TTL
	WriteCSV     bool    `toml:"write_csv"`      // Also write matches.csv on refresh
}

// MiningConfig contains sequential pattern mining settings.
type MiningConfig struct {
	Miner            string  `toml:"miner"`              // "builtin" or "spmf"
	MinSupport       float64 `toml:"min_support"`        // Fraction in (0, 1]
	MaxPatternLength int     `toml:"max_pattern_length"` // 0 = unlimited (builtin only)
	SPMFJar          string  `toml:"spmf_jar"`           // Path to spmf.jar
	JavaPath         string  `toml:"java_path"`          // Java executable
	WorkDir          string  `toml:"work_dir"`           // Scratch directory for SPMF files
}

// PatternsConfig contains pattern export settings.
type PatternsConfig struct {
	ExportPath string `toml:"export_path"` // SPMF-format pattern file
	Watch      bool   `toml:"watch"`       // Reload when the export file changes
}

// StorageConfig contains database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// APIConfig contains REST API settings.
type APIConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or console
}

// RecommendConfig bounds the number of picks a request may carry.
type RecommendConfig struct {
	MinPicks int `toml:"min_picks"`
	MaxPicks int `toml:"max_picks"`
}

// DataDir returns the application data directory.
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, AppDirName), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dataDir, err := DataDir()
	if err != nil {
		dataDir = AppDirName
	}

	return &Config{
		OpenDota: OpenDotaConfig{
			BaseURL:      "https://api.opendota.com",
			RateLimit:    1,
			Timeout:      "30s",
			MatchCount:   50,
			CacheTTL:     "1h",
			HeroCacheTTL: "24h",
			WriteCSV:     false,
		},
		Mining: MiningConfig{
			Miner:            "builtin",
			MinSupport:       0.005,
			MaxPatternLength: 0,
			SPMFJar:          "spmf.jar",
			JavaPath:         "java",
			WorkDir:          dataDir,
		},
		Patterns: PatternsConfig{
			ExportPath: filepath.Join(dataDir, "spmf_output.txt"),
			Watch:      false,
		},
		Storage: StorageConfig{
			DBPath: filepath.Join(dataDir, "draft.db"),
		},
		API: APIConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Recommend: RecommendConfig{
			MinPicks: 2,
			MaxPicks: 4,
		},
	}
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. Returns the default config if
// the file doesn't exist; values missing from the file keep their defaults.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.OpenDota.Timeout); err != nil {
		return fmt.Errorf("invalid opendota timeout %q: %w", c.OpenDota.Timeout, err)
	}
	if _, err := time.ParseDuration(c.OpenDota.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.OpenDota.CacheTTL, err)
	}
	if _, err := time.ParseDuration(c.OpenDota.HeroCacheTTL); err != nil {
		return fmt.Errorf("invalid hero cache TTL %q: %w", c.OpenDota.HeroCacheTTL, err)
	}
	if c.OpenDota.RateLimit <= 0 {
		return fmt.Errorf("rate limit must be positive: %v", c.OpenDota.RateLimit)
	}
	if c.OpenDota.MatchCount < 0 {
		return fmt.Errorf("match count cannot be negative: %d", c.OpenDota.MatchCount)
	}

	if c.Mining.MinSupport <= 0 || c.Mining.MinSupport > 1 {
		return fmt.Errorf("min support must be in (0, 1]: %v", c.Mining.MinSupport)
	}
	if c.Mining.MaxPatternLength < 0 {
		return fmt.Errorf("max pattern length cannot be negative: %d", c.Mining.MaxPatternLength)
	}
	switch strings.ToLower(c.Mining.Miner) {
	case "builtin", "spmf":
	default:
		return fmt.Errorf("unknown miner %q (expected builtin or spmf)", c.Mining.Miner)
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api port: %d", c.API.Port)
	}

	if c.Recommend.MinPicks < 0 {
		return fmt.Errorf("min picks cannot be negative: %d", c.Recommend.MinPicks)
	}
	if c.Recommend.MaxPicks > 0 && c.Recommend.MaxPicks < c.Recommend.MinPicks {
		return fmt.Errorf("max picks (%d) below min picks (%d)", c.Recommend.MaxPicks, c.Recommend.MinPicks)
	}

	return nil
}

// GetTimeout returns the OpenDota request timeout.
func (c *Config) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(c.OpenDota.Timeout)
}

// GetCacheTTL returns the match list cache TTL.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.OpenDota.CacheTTL)
}

// GetHeroCacheTTL returns the hero stats cache TTL.
func (c *Config) GetHeroCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.OpenDota.HeroCacheTTL)
}
