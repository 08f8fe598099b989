package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	CatalogAddress        string        `mapstructure:"catalog_address"`
	CatalogToken          string        `mapstructure:"catalog_token"`
	CatalogDatacenter     string        `mapstructure:"catalog_datacenter"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`

	WatchesFile          string        `mapstructure:"watches_file"`
	PublishersFile       string        `mapstructure:"publishers_file"`
	WatchWaitSeconds     int64         `mapstructure:"watch_wait_seconds"`
	WatchIntervalSeconds int64         `mapstructure:"watch_interval_seconds"`
	WatchWait            time.Duration `mapstructure:"-"`
	WatchInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "catalog-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("catalog_address", "localhost:8500")
	v.SetDefault("catalog_token", "")
	v.SetDefault("catalog_datacenter", "")
	v.SetDefault("request_timeout_seconds", 10)

	v.SetDefault("watches_file", "./configs/watches.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("watch_wait_seconds", 300)
	v.SetDefault("watch_interval_seconds", 5)

	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/watch.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
}

// resolve validates the raw seconds and fills the derived durations.
func (cfg *Config) resolve() error {
	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.WatchWaitSeconds <= 0 {
		return fmt.Errorf("invalid watch_wait_seconds (must be positive seconds)")
	}
	if cfg.WatchIntervalSeconds <= 0 {
		return fmt.Errorf("invalid watch_interval_seconds (must be positive seconds)")
	}
	cfg.WatchWait = time.Duration(cfg.WatchWaitSeconds) * time.Second
	cfg.WatchInterval = time.Duration(cfg.WatchIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}
