package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"lapseless/internal/service"
)

// Config keeps runtime settings.
type Config struct {
	DatabaseURL string          `mapstructure:"database_url"`
	Timezone    string          `mapstructure:"timezone"`
	LogLevel    string          `mapstructure:"log_level"`
	Reconcile   ReconcileConfig `mapstructure:"reconcile"`
}

// ReconcileConfig controls the scheduled batch recomputation.
type ReconcileConfig struct {
	At       string        `mapstructure:"at"`
	Interval time.Duration `mapstructure:"interval"`
	Workers  int           `mapstructure:"workers"`
	Timeout  time.Duration `mapstructure:"timeout"`
	OnStart  bool          `mapstructure:"on_start"`
}

// Load reads configuration from an optional YAML file and LAPSELESS_*
// environment variables, with sane defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("lapseless")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LAPSELESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("config file loaded", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "lapseless.db")
	v.SetDefault("timezone", "Local")
	v.SetDefault("log_level", "info")
	v.SetDefault("reconcile.at", "00:05")
	v.SetDefault("reconcile.interval", time.Duration(0))
	v.SetDefault("reconcile.workers", 4)
	v.SetDefault("reconcile.timeout", 5*time.Minute)
	v.SetDefault("reconcile.on_start", true)
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Reconcile.Workers <= 0 {
		return fmt.Errorf("reconcile.workers must be positive, got %d", c.Reconcile.Workers)
	}
	if c.Reconcile.Interval < 0 {
		return fmt.Errorf("reconcile.interval must not be negative")
	}
	if c.Reconcile.Interval == 0 {
		if _, err := service.BuildDailySpec(c.Reconcile.At); err != nil {
			return fmt.Errorf("reconcile.at: %w", err)
		}
	}
	if c.Reconcile.Timeout <= 0 {
		return fmt.Errorf("reconcile.timeout must be positive")
	}
	return nil
}

// Location resolves the configured timezone used to decide "today".
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SetupLogger installs the default slog logger at the given level.
func SetupLogger(level string) {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps a level name to slog; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
