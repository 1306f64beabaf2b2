// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Import   ImportConfig   `mapstructure:"import"`
	Backup   BackupConfig   `mapstructure:"backup"`
	LogLevel string         `mapstructure:"log_level"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AdminConfig gates the catalog-reload command. An empty password
// disables admin access entirely.
type AdminConfig struct {
	Password string `mapstructure:"password"`
}

// ImportConfig points at the drink catalog CSV loaded on startup and
// re-read by the admin import command.
type ImportConfig struct {
	CatalogPath   string `mapstructure:"catalog_path"`
	LoadOnStartup bool   `mapstructure:"load_on_startup"`
}

// BackupConfig controls periodic encrypted database uploads to
// S3-compatible storage. Disabled unless a bucket is set. RetentionDays
// of 0 keeps uploads forever.
type BackupConfig struct {
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Prefix        string        `mapstructure:"prefix"`
	Interval      time.Duration `mapstructure:"interval"`
	Passphrase    string        `mapstructure:"passphrase"`
	RetentionDays int           `mapstructure:"retention_days"`
}

// Enabled reports whether backups are configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Load reads configuration from BOTTENDER_* environment variables,
// falling back to a .env file in the working directory.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("BOTTENDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("server.port")
	viper.BindEnv("database.path")
	viper.BindEnv("admin.password")
	viper.BindEnv("import.catalog_path")
	viper.BindEnv("import.load_on_startup")
	viper.BindEnv("backup.bucket")
	viper.BindEnv("backup.region")
	viper.BindEnv("backup.endpoint")
	viper.BindEnv("backup.access_key")
	viper.BindEnv("backup.secret_key")
	viper.BindEnv("backup.prefix")
	viper.BindEnv("backup.interval")
	viper.BindEnv("backup.passphrase")
	viper.BindEnv("backup.retention_days")
	viper.BindEnv("log_level")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("database.path", "bottender.db")

	viper.SetDefault("import.catalog_path", "")
	viper.SetDefault("import.load_on_startup", true)

	viper.SetDefault("backup.region", "auto")
	viper.SetDefault("backup.prefix", "bottender")
	viper.SetDefault("backup.interval", "24h")
	viper.SetDefault("backup.retention_days", 30)

	viper.SetDefault("log_level", "info")
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if cfg.Backup.Enabled() {
		if cfg.Backup.AccessKey == "" || cfg.Backup.SecretKey == "" {
			return fmt.Errorf("backup bucket set but credentials missing")
		}
		if cfg.Backup.Interval <= 0 {
			return fmt.Errorf("invalid backup interval")
		}
		if cfg.Backup.RetentionDays < 0 {
			return fmt.Errorf("backup retention days must not be negative")
		}
	}
	return nil
}
