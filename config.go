package qtypes

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

/*
Config controls how a Circuit sizes its pool and picks register widths.
A zero DataWidth or ResultWidth means "whatever the backend reports".
*/
type Config struct {
	DataWidth          int    `mapstructure:"data_width"`
	ResultWidth        int    `mapstructure:"result_width"`
	SmallWidth         int    `mapstructure:"small_width"`
	MediumWidth        int    `mapstructure:"medium_width"`
	BigWidth           int    `mapstructure:"big_width"`
	MaxBackendFailures int    `mapstructure:"max_backend_failures"`
	LogLevel           string `mapstructure:"log_level"`
}

// NewConfig returns the defaults: widths 5/14/32 and the backend's full capacity.
func NewConfig() *Config {
	return &Config{
		SmallWidth:         5,
		MediumWidth:        14,
		BigWidth:           32,
		MaxBackendFailures: 1,
		LogLevel:           "info",
	}
}

// LoadConfig reads a Config from v, falling back to NewConfig defaults for unset keys.
func LoadConfig(v *viper.Viper) (*Config, error) {
	defaults := NewConfig()

	v.SetDefault("data_width", defaults.DataWidth)
	v.SetDefault("result_width", defaults.ResultWidth)
	v.SetDefault("small_width", defaults.SmallWidth)
	v.SetDefault("medium_width", defaults.MediumWidth)
	v.SetDefault("big_width", defaults.BigWidth)
	v.SetDefault("max_backend_failures", defaults.MaxBackendFailures)
	v.SetDefault("log_level", defaults.LogLevel)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, wrapError(ConfigError, "load config", err, "unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the canonical widths are positive and ascending.
func (cfg *Config) Validate() error {
	if cfg.DataWidth < 0 || cfg.ResultWidth < 0 {
		return &Error{Kind: ConfigError, Op: "validate config", Err: errors.New("negative pool width")}
	}

	if cfg.SmallWidth <= 0 || cfg.SmallWidth > cfg.MediumWidth || cfg.MediumWidth > cfg.BigWidth {
		return newError(
			ConfigError, "validate config",
			"canonical widths must ascend, got %d/%d/%d",
			cfg.SmallWidth, cfg.MediumWidth, cfg.BigWidth,
		)
	}

	if cfg.BigWidth > maxRegisterWidth {
		return newError(ConfigError, "validate config", "big width %d exceeds %d", cfg.BigWidth, maxRegisterWidth)
	}

	return nil
}

func (cfg *Config) canonicalWidths() []int {
	return []int{cfg.SmallWidth, cfg.MediumWidth, cfg.BigWidth}
}
