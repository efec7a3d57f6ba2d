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

	// PublicRoot is the content root that receives temp/curl.debug in debug mode.
	PublicRoot            string        `mapstructure:"public_html_path"`
	UserAgent             string        `mapstructure:"user_agent"`
	BasicUserPrefix       string        `mapstructure:"basic_auth_user_prefix"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	VerifyTLS             bool          `mapstructure:"verify_tls"`
	Debug                 bool          `mapstructure:"debug"`

	RequestsFile       string        `mapstructure:"requests_file"`
	PublishersFile     string        `mapstructure:"publishers_file"`
	RunIntervalSeconds int64         `mapstructure:"run_interval"`
	RunInterval        time.Duration `mapstructure:"-"`

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
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "webapi")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("public_html_path", ".")
	v.SetDefault("user_agent", "AP-WEBAPI/1.0")
	v.SetDefault("basic_auth_user_prefix", "user: ")
	v.SetDefault("request_timeout", 10) // seconds
	v.SetDefault("verify_tls", false)
	v.SetDefault("debug", false)
	v.SetDefault("requests_file", "./configs/requests.yaml")
	v.SetDefault("publishers_file", "")
	v.SetDefault("run_interval", 0) // seconds, 0 runs a single pass
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/history.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.ApplyDurations(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDurations validates the second-based settings and derives their
// time.Duration counterparts.
func (c *Config) ApplyDurations() error {
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout (must be positive seconds)")
	}
	c.RequestTimeout = time.Duration(c.RequestTimeoutSeconds) * time.Second

	if c.RunIntervalSeconds < 0 {
		return fmt.Errorf("invalid run_interval (must be zero or positive seconds)")
	}
	c.RunInterval = time.Duration(c.RunIntervalSeconds) * time.Second

	if c.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if c.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	c.StorageTTL = time.Duration(c.StorageTTLSeconds) * time.Second
	c.StorageCleanupInterval = time.Duration(c.StorageCleanupSeconds) * time.Second
	return nil
}
