// Package config provides Viper-based configuration loading for the assistant.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ROTZ_STORAGE_DRIVER.
const EnvPrefix = "ROTZ"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig selects where the stores are saved.
type StorageConfig struct {
	// Driver is the key-value backend: "sqlite", "postgres" or "memory".
	Driver string `mapstructure:"driver"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path"`
	// Database holds the PostgreSQL settings used by the postgres driver.
	Database DatabaseConfig `mapstructure:"database"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is the log file path. "stderr" and "stdout" name the standard streams.
	Output string `mapstructure:"output"`
}

// DamageConfig holds damage calculator settings.
type DamageConfig struct {
	// Ruleset is the damage model: "accuracy", "maxhit" or "script".
	Ruleset string `mapstructure:"ruleset"`
	// Script is the Lua file defining roll_damage, required by the script ruleset.
	Script string `mapstructure:"script"`
	// InstructionLimit bounds the Lua instructions executed by a single roll.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// PersistSession saves the attack configuration and latest result across restarts.
	PersistSession bool `mapstructure:"persist_session"`
	// DefaultCritChance is the crit chance of a fresh or reset calculator.
	DefaultCritChance int `mapstructure:"default_crit_chance"`
	// Presets is an optional YAML file of named rune presets.
	Presets string `mapstructure:"presets"`
}

// DashboardConfig holds terminal dashboard settings.
type DashboardConfig struct {
	// SpinFrames is the number of random frames shown before a die settles.
	SpinFrames int `mapstructure:"spin_frames"`
	// SpinInterval is the delay between spin frames.
	SpinInterval time.Duration `mapstructure:"spin_interval"`
	// RandomDelay is how long the random range and chance helpers spin before answering.
	RandomDelay time.Duration `mapstructure:"random_delay"`
	// HistoryLimit caps the attack history. 0 keeps every attack.
	HistoryLimit int `mapstructure:"history_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Damage    DamageConfig    `mapstructure:"damage"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDamage(c.Damage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDashboard(c.Dashboard); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case "memory":
		return nil
	case "sqlite":
		if s.Path == "" {
			return errors.New("storage.path must not be empty for the sqlite driver")
		}
		return nil
	case "postgres":
		return validateDatabase(s.Database)
	}
	return fmt.Errorf("storage.driver must be one of [sqlite, postgres, memory], got %q", s.Driver)
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "storage.database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("storage.database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "storage.database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "storage.database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("storage.database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("storage.database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("storage.database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "storage.database.min_conns must not exceed storage.database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDamage(d DamageConfig) error {
	var errs []string
	switch d.Ruleset {
	case "accuracy", "maxhit":
	case "script":
		if d.Script == "" {
			errs = append(errs, "damage.script must be set when damage.ruleset is script")
		}
	default:
		errs = append(errs, fmt.Sprintf("damage.ruleset must be one of [accuracy, maxhit, script], got %q", d.Ruleset))
	}
	if d.InstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("damage.instruction_limit must be >= 1, got %d", d.InstructionLimit))
	}
	if d.DefaultCritChance < 0 || d.DefaultCritChance > 100 {
		errs = append(errs, fmt.Sprintf("damage.default_crit_chance must be 0-100, got %d", d.DefaultCritChance))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDashboard(d DashboardConfig) error {
	var errs []string
	if d.SpinFrames < 0 {
		errs = append(errs, fmt.Sprintf("dashboard.spin_frames must be >= 0, got %d", d.SpinFrames))
	}
	if d.SpinInterval <= 0 {
		errs = append(errs, "dashboard.spin_interval must be positive")
	}
	if d.RandomDelay < 0 {
		errs = append(errs, "dashboard.random_delay must not be negative")
	}
	if d.HistoryLimit < 0 {
		errs = append(errs, fmt.Sprintf("dashboard.history_limit must be >= 0, got %d", d.HistoryLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and ROTZ_ environment
// overrides applied.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with ROTZ_ prefix
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "rotz-assistant.log")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", "rotz-assistant.db")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.user", "rotz")
	v.SetDefault("storage.database.password", "rotz")
	v.SetDefault("storage.database.name", "rotz")
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("storage.database.max_conns", 4)
	v.SetDefault("storage.database.min_conns", 1)
	v.SetDefault("storage.database.max_conn_lifetime", "1h")

	v.SetDefault("damage.ruleset", "accuracy")
	v.SetDefault("damage.script", "")
	v.SetDefault("damage.instruction_limit", 100000)
	v.SetDefault("damage.persist_session", false)
	v.SetDefault("damage.default_crit_chance", 5)
	v.SetDefault("damage.presets", "")

	v.SetDefault("dashboard.spin_frames", 8)
	v.SetDefault("dashboard.spin_interval", "60ms")
	v.SetDefault("dashboard.random_delay", "500ms")
	v.SetDefault("dashboard.history_limit", 50)
}
