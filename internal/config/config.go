package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kode4food/learnable/internal/store"
	"github.com/kode4food/learnable/pkg/log"
)

type (
	// Config holds configuration settings for the client and wizard service
	Config struct {
		// Backend
		BaseURL        string
		RequestTimeout time.Duration

		// Session & Fallback Store
		StoreURL    string
		StorePrefix string

		// Wizard Service
		APIHost         string
		APIPort         int
		MaxFlows        int
		ShutdownTimeout time.Duration
		LogLevel        string
	}
)

const (
	EnvPrefix = "LEARNABLE_"

	DefaultBaseURL         = "http://localhost:8000"
	DefaultStorePrefix     = "learnable"
	DefaultStoreDir        = ".learnable"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogLevel        = "info"

	DefaultAPIPort  = 8080
	DefaultAPIHost  = "127.0.0.1"
	DefaultMaxFlows = 1024
	MaxTCPPort      = 65535

	MaxFlows          = 1_000_000
	MaxRequestTimeout = 10 * time.Minute
)

var (
	ErrInvalidAPIPort         = errors.New("invalid API port")
	ErrInvalidBaseURL         = errors.New("invalid backend base URL")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrInvalidMaxFlows        = errors.New("max flows must be positive")
	ErrInvalidShutdownTimeout = errors.New(
		"shutdown timeout must be positive",
	)
	ErrInvalidRequestTimeout = errors.New(
		"request timeout cannot be negative",
	)
	ErrReadConfigFile = errors.New("failed to read config file")
	ErrReadDotEnv     = errors.New("failed to read .env file")
)

// NewDefaultConfig creates a configuration with sensible defaults. The
// request timeout defaults to zero, which leaves backend calls unbounded
func NewDefaultConfig() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		StoreURL:        DefaultStoreURL(),
		StorePrefix:     DefaultStorePrefix,
		APIHost:         DefaultAPIHost,
		APIPort:         DefaultAPIPort,
		MaxFlows:        DefaultMaxFlows,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        DefaultLogLevel,
	}
}

// DefaultStoreURL returns a file bucket under the user's home directory,
// or the in-memory store when no home directory is known
func DefaultStoreURL() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return store.MemoryScheme
	}
	dir := filepath.ToSlash(filepath.Join(home, DefaultStoreDir))
	return "file://" + dir + "?create_dir=true"
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error and existing variables are never replaced
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrReadDotEnv, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %w", ErrReadDotEnv, err)
	}
	return nil
}

// LoadFromFile populates configuration values from a YAML, JSON, or TOML
// file. Keys absent from the file keep their current values
func (c *Config) LoadFromFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: %w", ErrReadConfigFile, err)
	}

	loadViperString(v, "base_url", &c.BaseURL)
	loadViperString(v, "store_url", &c.StoreURL)
	loadViperString(v, "store_prefix", &c.StorePrefix)
	loadViperString(v, "api_host", &c.APIHost)
	loadViperString(v, "log_level", &c.LogLevel)
	if v.IsSet("api_port") {
		c.APIPort = v.GetInt("api_port")
	}
	if v.IsSet("max_flows") {
		c.MaxFlows = v.GetInt("max_flows")
	}
	if v.IsSet("request_timeout") {
		c.RequestTimeout = v.GetDuration("request_timeout")
	}
	if v.IsSet("shutdown_timeout") {
		c.ShutdownTimeout = v.GetDuration("shutdown_timeout")
	}
	return nil
}

// LoadFromEnv populates configuration values from LEARNABLE_ prefixed
// environment variables. Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	if baseURL := getenv("BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}
	if storeURL := getenv("STORE_URL"); storeURL != "" {
		c.StoreURL = storeURL
	}
	if prefix := getenv("STORE_PREFIX"); prefix != "" {
		c.StorePrefix = prefix
	}
	if apiHost := getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt("MAX_FLOWS", &c.MaxFlows, 0, MaxFlows); err != nil {
		return err
	}
	if err := loadEnvDuration(
		"REQUEST_TIMEOUT", &c.RequestTimeout, MaxRequestTimeout,
	); err != nil {
		return err
	}
	return loadEnvDuration(
		"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout, MaxRequestTimeout,
	)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") ||
		u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}

	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.MaxFlows <= 0 {
		return ErrInvalidMaxFlows
	}

	if c.RequestTimeout < 0 {
		return ErrInvalidRequestTimeout
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if _, ok := log.Levels[c.LogLevel]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

func getenv(key string) string {
	return os.Getenv(EnvPrefix + key)
}

func loadViperString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max]
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %q", EnvPrefix, key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s%s: %d out of range [%d, %d]",
			EnvPrefix, key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvDuration accepts Go duration strings ("30s") or bare integers,
// which are read as milliseconds
func loadEnvDuration(key string, dst *time.Duration, max time.Duration) error {
	s := getenv(key)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		ms, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return fmt.Errorf("invalid %s%s: %q", EnvPrefix, key, s)
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d < 0 || d > max {
		return fmt.Errorf("invalid %s%s: %s out of range [0s, %s]",
			EnvPrefix, key, d, max)
	}
	*dst = d
	return nil
}
