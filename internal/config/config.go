package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/openquant/strategist/internal/core"
)

type Config struct {
	Backtest BacktestConfig `mapstructure:"backtest"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Optimize OptimizeConfig `mapstructure:"optimize"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// BacktestConfig holds the portfolio settings for simulation runs.
type BacktestConfig struct {
	InitialCash    float64 `mapstructure:"initial_cash"`
	CommissionRate float64 `mapstructure:"commission_rate"`
}

// StrategyConfig selects the strategy family and its parameters. Params
// keys follow each strategy's parameter names; absent keys take the
// strategy's defaults.
type StrategyConfig struct {
	Name   string         `mapstructure:"name"`
	Params map[string]any `mapstructure:"params"`
}

// OptimizeConfig holds grid-search settings.
type OptimizeConfig struct {
	Workers int          `mapstructure:"workers"` // 0 means one per CPU
	TopN    int          `mapstructure:"top_n"`   // rows shown in the ranking table
	Grid    []AxisConfig `mapstructure:"grid"`
}

// AxisConfig is one parameter dimension of the search grid.
type AxisConfig struct {
	Name   string    `mapstructure:"name"`
	Values []float64 `mapstructure:"values"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Backtest: BacktestConfig{
			InitialCash:    100000,
			CommissionRate: 0.0001,
		},
		Strategy: StrategyConfig{
			Name: "momentum_breakout",
		},
		Optimize: OptimizeConfig{
			Workers: 0,
			TopN:    10,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Backtest.InitialCash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("initial_cash must be positive, got %f", c.Backtest.InitialCash))
	}
	if c.Backtest.CommissionRate < 0 || c.Backtest.CommissionRate >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("commission_rate must be in [0, 1), got %f", c.Backtest.CommissionRate))
	}

	if c.Strategy.Name == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("strategy name required"))
	}

	if c.Optimize.Workers < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("workers cannot be negative, got %d", c.Optimize.Workers))
	}
	if c.Optimize.TopN < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("top_n must be at least 1, got %d", c.Optimize.TopN))
	}
	for _, axis := range c.Optimize.Grid {
		if axis.Name == "" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("grid axis without a name"))
		}
		if len(axis.Values) == 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("grid axis %q has no values", axis.Name))
		}
	}

	return nil
}
