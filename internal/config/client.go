package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig configures the parkctl command line client.
type ClientConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	PageSize       int           `mapstructure:"page_size"`
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	SessionFile    string        `mapstructure:"session_file"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level"`
	OTelEndpoint   string        `mapstructure:"otel_endpoint"`
}

// DefaultClientConfigPath returns ~/.parkctl.yaml.
func DefaultClientConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".parkctl.yaml"
	}
	return filepath.Join(home, ".parkctl.yaml")
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".parkctl", "session.json")
	}
	return filepath.Join(home, ".parkctl", "session.json")
}

// LoadClient reads the YAML config at path (missing file is fine) with PARKCTL_* env overrides.
func LoadClient(path string) (*ClientConfig, error) {
	v := viper.New()
	if path == "" {
		path = DefaultClientConfigPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("api_url", "http://localhost:8080")
	v.SetDefault("page_size", 10)
	v.SetDefault("search_debounce", "500ms")
	v.SetDefault("session_file", defaultSessionFile())
	v.SetDefault("request_timeout", "15s")
	v.SetDefault("log_level", "warn")
	v.SetDefault("otel_endpoint", "")

	// environment overrides, e.g. PARKCTL_API_URL=https://parking.example.com
	v.SetEnvPrefix("PARKCTL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.SearchDebounce < 0 {
		cfg.SearchDebounce = 0
	}
	return &cfg, nil
}
