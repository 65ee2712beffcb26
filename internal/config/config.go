package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "AITOOL"
	defaultBackendURL = "http://localhost:5001"
	defaultStubAddr   = "localhost:5001"
)

type Config struct {
	BackendURL     string        `mapstructure:"backend_url"`
	File           string        `mapstructure:"file"`
	Dev            bool          `mapstructure:"dev"`
	LogPath        string        `mapstructure:"log_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	Stub           StubConfig    `mapstructure:"stub"`
}

// StubConfig drives the in-process development backend.
type StubConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Addr              string        `mapstructure:"addr"`
	Async             bool          `mapstructure:"async"`
	StepDelay         time.Duration `mapstructure:"step_delay"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes"`
	AllowedExtensions []string      `mapstructure:"allowed_extensions"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"backend":         "backend_url",
	"file":            "file",
	"dev":             "dev",
	"logPath":         "log_path",
	"request-timeout": "request_timeout",
	"poll-interval":   "poll_interval",
	"stub":            "stub.enabled",
	"stub-addr":       "stub.addr",
	"stub-async":      "stub.async",
}

// BindFlags registers the command line flags Load understands.
func BindFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a YAML config file")
	flags.String("backend", "", "Base URL of the document QA backend (default "+defaultBackendURL+")")
	flags.String("file", "", "File to pre-fill in the upload field")
	flags.Bool("dev", false, "Development mode")
	flags.String("logPath", "", "Path to save the log file")
	flags.Duration("request-timeout", 0, "Per-request timeout, 0 disables it")
	flags.Duration("poll-interval", time.Second, "Delay between upload status checks")
	flags.Bool("stub", false, "Start the built-in development backend")
	flags.String("stub-addr", defaultStubAddr, "Listen address of the development backend")
	flags.Bool("stub-async", false, "Make the development backend process uploads asynchronously")
}

// Load merges, from lowest to highest precedence: defaults, the YAML config
// file, .env and AITOOL_* environment variables, then flags that were set.
func Load(flags *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("file", "")
	v.SetDefault("dev", false)
	v.SetDefault("log_path", "")
	v.SetDefault("request_timeout", time.Duration(0))
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("stub.enabled", false)
	v.SetDefault("stub.addr", defaultStubAddr)
	v.SetDefault("stub.async", false)
	v.SetDefault("stub.step_delay", 500*time.Millisecond)
	v.SetDefault("stub.max_upload_bytes", int64(32<<20))
	v.SetDefault("stub.allowed_extensions", []string{"pdf"})

	// backend_url has no default so that --stub can point the client at the
	// development backend unless a URL was given explicitly.
	if err := v.BindEnv("backend_url"); err != nil {
		return nil, fmt.Errorf("failed to bind backend_url: %w", err)
	}

	if err := readConfigFile(v, flags); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.BackendURL == "" {
		cfg.BackendURL = defaultBackendURL
		if cfg.Stub.Enabled {
			cfg.BackendURL = "http://" + cfg.Stub.Addr
		}
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("request_timeout must not be negative, got %s", cfg.RequestTimeout)
	}
	if cfg.Stub.Enabled && cfg.Stub.Addr == "" {
		return nil, fmt.Errorf("stub.addr is required when the stub backend is enabled")
	}

	return &cfg, nil
}

// readConfigFile reads --config when given, otherwise
// ~/.config/aitool/config.yaml if it exists.
func readConfigFile(v *viper.Viper, flags *pflag.FlagSet) error {
	var path string
	if flags != nil {
		path, _ = flags.GetString("config")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(home, ".config", "aitool"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}
