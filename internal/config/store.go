package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/mekedron/airq-cli/internal/domain"
)

const (
	defaultDirName  = ".airq"
	defaultFileName = "config.yaml"
	envConfigPath   = "AIRQ_CONFIG_PATH"
	envPrefix       = "AIRQ"
)

var (
	// ErrConfigExists is returned when saving would replace a file without overwrite.
	ErrConfigExists = errors.New("config file already exists")
	// ErrInvalidConfig is returned when config payload is malformed.
	ErrInvalidConfig = errors.New("config file is invalid")
)

// Defaults returns the configuration used when no file or env override is present.
func Defaults() domain.Config {
	return domain.Config{
		APIBase:            "http://localhost:8000/api",
		DefaultLocation:    domain.Location{Lat: 37.7749, Lon: -122.4194},
		RequestTimeout:     15 * time.Second,
		RequestMinInterval: 0,
		BreakerFailures:    5,
		Log:                domain.LogConfig{Level: "info", Format: "text"},
		Server:             domain.ServerConfig{Addr: ":8080", GinMode: "release"},
	}
}

// Store loads and writes client configuration.
type Store struct {
	path     string
	validate *validator.Validate
}

// NewStore creates a store using env overrides or defaults.
func NewStore() (*Store, error) {
	if cfg := os.Getenv(envConfigPath); cfg != "" {
		return newStoreAt(cfg), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	return newStoreAt(filepath.Join(home, defaultDirName, defaultFileName)), nil
}

func newStoreAt(path string) *Store {
	return &Store{path: path, validate: validator.New()}
}

// Path returns current config path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the config file is present on disk.
func (s *Store) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat config: %w", err)
}

func (s *Store) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")

	defaults := Defaults()
	v.SetDefault("api_base", defaults.APIBase)
	v.SetDefault("default_location.lat", defaults.DefaultLocation.Lat)
	v.SetDefault("default_location.lon", defaults.DefaultLocation.Lon)
	v.SetDefault("request_timeout", defaults.RequestTimeout.String())
	v.SetDefault("request_min_interval", defaults.RequestMinInterval.String())
	v.SetDefault("breaker_failures", defaults.BreakerFailures)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.gin_mode", defaults.Server.GinMode)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file, applies AIRQ_* env overrides and validates the result.
// A missing file yields defaults.
func (s *Store) Load(_ context.Context) (domain.Config, error) {
	v := s.newViper()

	exists, err := s.Exists()
	if err != nil {
		return domain.Config{}, err
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return domain.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := s.check(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Save writes a configuration payload. An existing file is replaced only when overwrite is set.
func (s *Store) Save(_ context.Context, cfg domain.Config, overwrite bool) error {
	if err := s.check(cfg); err != nil {
		return err
	}
	exists, err := s.Exists()
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return fmt.Errorf("%w: %s", ErrConfigExists, s.path)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("api_base", cfg.APIBase)
	v.Set("default_location.lat", cfg.DefaultLocation.Lat)
	v.Set("default_location.lon", cfg.DefaultLocation.Lon)
	v.Set("request_timeout", cfg.RequestTimeout.String())
	v.Set("request_min_interval", cfg.RequestMinInterval.String())
	v.Set("breaker_failures", cfg.BreakerFailures)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.gin_mode", cfg.Server.GinMode)
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (s *Store) check(cfg domain.Config) error {
	if err := s.validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := domain.NewLocation(cfg.DefaultLocation.Lat, cfg.DefaultLocation.Lon); err != nil {
		return fmt.Errorf("%w: default_location: %v", ErrInvalidConfig, err)
	}
	return nil
}
