package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openquant/strategist/internal/backtest"
	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/logger"
	"github.com/openquant/strategist/internal/report"
)

var (
	backtestData      string
	backtestStrategy  string
	backtestTradesOut string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one strategy against historical data",
	Long:  "Replay the configured strategy over a daily bar series and print performance statistics and the decision-criteria verdict",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestData, "data", "", "CSV bar file (Date,Open,High,Low,Close,Volume); synthetic demo data when omitted")
	backtestCmd.Flags().StringVar(&backtestStrategy, "strategy", "", "strategy name, overrides the config file")
	backtestCmd.Flags().StringVar(&backtestTradesOut, "trades-out", "", "write the closed-trade log to this CSV file")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	name := cfg.Strategy.Name
	if backtestStrategy != "" {
		name = backtestStrategy
	}

	reg := newRegistry(log)
	strat, ok, err := reg.Build(name, cfg.Strategy.Params)
	if !ok {
		return core.WrapError(core.ErrUnknownStrategy,
			fmt.Errorf("%q (available: %v)", name, reg.Names()))
	}
	if err != nil {
		return fmt.Errorf("building strategy %q: %w", name, err)
	}

	bars, err := loadBars(backtestData, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := backtest.New(backtest.Config{
		InitialCash:    cfg.Backtest.InitialCash,
		CommissionRate: cfg.Backtest.CommissionRate,
	}, log)

	res, err := engine.Run(ctx, strat, bars)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	verdict := backtest.Evaluate(res.Stats)
	fmt.Print(report.Backtest(res, verdict))

	if backtestTradesOut != "" {
		if err := report.WriteTradesCSV(res.Trades, backtestTradesOut); err != nil {
			return fmt.Errorf("writing trade log: %w", err)
		}
		log.Info("trade log written",
			zap.String("path", backtestTradesOut),
			zap.Int("trades", len(res.Trades)))
	}

	return nil
}
