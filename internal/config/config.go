// Package config provides Viper-based configuration loading for the lucky draw.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FrontendConfig selects how players reach the wheel.
type FrontendConfig struct {
	// Mode is "console" (local stdin/stdout) or "telnet" (remote terminals).
	Mode string `mapstructure:"mode"`
}

// DrawConfig holds wheel and draw settings.
type DrawConfig struct {
	// SpinDuration is how long the wheel animates before settling.
	SpinDuration time.Duration `mapstructure:"spin_duration"`
	// Revolutions is the number of full turns before the wheel lands.
	Revolutions int `mapstructure:"revolutions"`
	// HistorySize caps the recent-winners list.
	HistorySize int `mapstructure:"history_size"`
	// PrizesFile is an optional YAML prize catalog; empty uses the built-in catalog.
	PrizesFile string `mapstructure:"prizes_file"`
	// RandomSeed selects a reproducible source when non-zero; zero uses crypto/rand.
	RandomSeed uint64 `mapstructure:"random_seed"`
	// FrameInterval is the redraw period of the text wheel.
	FrameInterval time.Duration `mapstructure:"frame_interval"`
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File redirects log output to a file path; empty logs to stderr.
	File string `mapstructure:"file"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint.
	Addr string `mapstructure:"addr"`
}

// Enabled reports whether the metrics endpoint should be served.
func (m MetricsConfig) Enabled() bool {
	return m.Addr != ""
}

// Config is the top-level application configuration.
type Config struct {
	Frontend FrontendConfig `mapstructure:"frontend"`
	Draw     DrawConfig     `mapstructure:"draw"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateFrontend(c.Frontend); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDraw(c.Draw); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Frontend.Mode == "telnet" {
		if err := validateTelnet(c.Telnet); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateFrontend(f FrontendConfig) error {
	validModes := map[string]bool{"console": true, "telnet": true}
	if !validModes[f.Mode] {
		return fmt.Errorf("frontend.mode must be one of [console, telnet], got %q", f.Mode)
	}
	return nil
}

func validateDraw(d DrawConfig) error {
	var errs []string
	if d.SpinDuration <= 0 {
		errs = append(errs, fmt.Sprintf("draw.spin_duration must be > 0, got %v", d.SpinDuration))
	}
	if d.Revolutions < 1 {
		errs = append(errs, fmt.Sprintf("draw.revolutions must be >= 1, got %d", d.Revolutions))
	}
	if d.HistorySize < 1 {
		errs = append(errs, fmt.Sprintf("draw.history_size must be >= 1, got %d", d.HistorySize))
	}
	if d.FrameInterval <= 0 {
		errs = append(errs, fmt.Sprintf("draw.frame_interval must be > 0, got %v", d.FrameInterval))
	} else if d.FrameInterval > d.SpinDuration && d.SpinDuration > 0 {
		errs = append(errs, "draw.frame_interval must not exceed draw.spin_duration")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 0-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with LUCKYDRAW_ prefix
	v.SetEnvPrefix("LUCKYDRAW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
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

// LoadEnvFile exports the variables in a dotenv file so LUCKYDRAW_* keys in it
// act as overrides. Variables already set in the environment win. A missing
// file is not an error.
//
// Postcondition: Returns nil if path is empty or does not exist.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// Default returns the configuration produced by Load("") with no environment overrides.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("frontend.mode", "console")

	v.SetDefault("draw.spin_duration", "4s")
	v.SetDefault("draw.revolutions", 5)
	v.SetDefault("draw.history_size", 10)
	v.SetDefault("draw.prizes_file", "")
	v.SetDefault("draw.random_seed", 0)
	v.SetDefault("draw.frame_interval", "50ms")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "10m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file", "")

	v.SetDefault("metrics.addr", "")
}
