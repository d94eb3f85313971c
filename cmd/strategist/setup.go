package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openquant/strategist/internal/config"
	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/dataset"
	"github.com/openquant/strategist/internal/strategy"
	"github.com/openquant/strategist/internal/strategy/breakout"
	"github.com/openquant/strategist/internal/strategy/macross"
)

// newRegistry wires up the built-in strategy families.
func newRegistry(log *zap.Logger) *strategy.Registry {
	reg := strategy.NewRegistry(log)
	reg.Register("momentum_breakout", breakout.FromParams)
	reg.Register("ma_crossover", macross.FromParams)
	return reg
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadBars reads bars from the given CSV path, or generates a synthetic
// demo series when no path is given.
func loadBars(path string, log *zap.Logger) ([]core.Bar, error) {
	if path == "" {
		log.Warn("no data file specified, using synthetic demo bars")
		return dataset.Synthetic(dataset.DefaultSyntheticConfig()), nil
	}

	bars, err := dataset.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	log.Info("data loaded",
		zap.String("path", path),
		zap.Int("bars", len(bars)),
		zap.String("from", bars[0].Date.Format("2006-01-02")),
		zap.String("to", bars[len(bars)-1].Date.Format("2006-01-02")))
	return bars, nil
}
