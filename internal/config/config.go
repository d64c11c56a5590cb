// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firestige.xyz/meshlisten/internal/log"
)

// EnvPrefix prefixes every environment override, e.g. MESHLISTEN_SERIAL_BAUD.
const EnvPrefix = "MESHLISTEN"

// Config is the top-level configuration.
type Config struct {
	Serial SerialConfig     `mapstructure:"serial"`
	Output OutputConfig     `mapstructure:"output"`
	Log    log.LoggerConfig `mapstructure:"log"`
}

// ─── Serial ───

// SerialConfig selects and configures the radio's serial port.
type SerialConfig struct {
	Device      string        `mapstructure:"device"` // Empty = first match of Glob
	Glob        string        `mapstructure:"glob"`
	Baud        int           `mapstructure:"baud"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	DTR         bool          `mapstructure:"dtr"`
}

// ─── Output ───

// OutputConfig controls how decoded packets are emitted.
type OutputConfig struct {
	Format string `mapstructure:"format"` // text / yaml
	PCAP   string `mapstructure:"pcap"`   // Empty = no capture file
}

const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// ─── Loading ───

// Load reads configuration from path. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
func setDefaults(v *viper.Viper) {
	// Serial defaults
	v.SetDefault("serial.device", "")
	v.SetDefault("serial.glob", "/dev/ttyACM*")
	v.SetDefault("serial.baud", 115200)
	v.SetDefault("serial.read_timeout", "1s")
	v.SetDefault("serial.dtr", true)

	// Output defaults
	v.SetDefault("output.format", FormatText)
	v.SetDefault("output.pcap", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pattern", log.DefaultPattern)
	v.SetDefault("log.time", log.DefaultTime)
}

// ValidateAndApplyDefaults validates configuration and normalises values.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}

	// ── Serial validation ──
	if cfg.Serial.Baud <= 0 {
		return fmt.Errorf("invalid serial.baud: %d", cfg.Serial.Baud)
	}
	if cfg.Serial.ReadTimeout <= 0 {
		return fmt.Errorf("invalid serial.read_timeout: %s (must be positive)", cfg.Serial.ReadTimeout)
	}
	if cfg.Serial.Device == "" && cfg.Serial.Glob == "" {
		return fmt.Errorf("serial.glob is required when serial.device is empty")
	}

	// ── Output validation ──
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if cfg.Output.Format != FormatText && cfg.Output.Format != FormatYAML {
		return fmt.Errorf("invalid output format: %s (must be text/yaml)", cfg.Output.Format)
	}

	return nil
}
