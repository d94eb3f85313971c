package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openquant/strategist/internal/backtest"
	"github.com/openquant/strategist/internal/core"
	"github.com/openquant/strategist/internal/logger"
	"github.com/openquant/strategist/internal/metrics"
	"github.com/openquant/strategist/internal/optimize"
	"github.com/openquant/strategist/internal/report"
	"github.com/openquant/strategist/internal/strategy"
)

var (
	optimizeData        string
	optimizeStrategy    string
	optimizeWorkers     int
	optimizeTopN        int
	optimizeRankingOut  string
	optimizeMetricsAddr string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search strategy parameters",
	Long:  "Run every valid combination of the configured parameter grid through the backtest engine and rank the results by score",
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVar(&optimizeData, "data", "", "CSV bar file (Date,Open,High,Low,Close,Volume); synthetic demo data when omitted")
	optimizeCmd.Flags().StringVar(&optimizeStrategy, "strategy", "", "strategy name, overrides the config file")
	optimizeCmd.Flags().IntVar(&optimizeWorkers, "workers", 0, "worker pool size, 0 means one per CPU (overrides config)")
	optimizeCmd.Flags().IntVar(&optimizeTopN, "top", 0, "ranking rows to print (overrides config)")
	optimizeCmd.Flags().StringVar(&optimizeRankingOut, "out", "", "write the full ranking to this CSV file")
	optimizeCmd.Flags().StringVar(&optimizeMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")

	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if len(cfg.Optimize.Grid) == 0 {
		return fmt.Errorf("no parameter grid configured (optimize.grid)")
	}

	name := cfg.Strategy.Name
	if optimizeStrategy != "" {
		name = optimizeStrategy
	}
	workers := cfg.Optimize.Workers
	if optimizeWorkers > 0 {
		workers = optimizeWorkers
	}
	topN := cfg.Optimize.TopN
	if optimizeTopN > 0 {
		topN = optimizeTopN
	}

	reg := newRegistry(log)
	base, ok := reg.Builder(name)
	if !ok {
		return core.WrapError(core.ErrUnknownStrategy,
			fmt.Errorf("%q (available: %v)", name, reg.Names()))
	}

	// Grid values override the config file's baseline parameters.
	builder := func(params map[string]any) (strategy.Strategy, error) {
		merged := make(map[string]any, len(cfg.Strategy.Params)+len(params))
		for k, v := range cfg.Strategy.Params {
			merged[k] = v
		}
		for k, v := range params {
			merged[k] = v
		}
		return base(merged)
	}

	bars, err := loadBars(optimizeData, log)
	if err != nil {
		return err
	}

	grid := optimize.Grid{}
	for _, axis := range cfg.Optimize.Grid {
		grid.Axes = append(grid.Axes, optimize.Axis{Name: axis.Name, Values: axis.Values})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := backtest.New(backtest.Config{
		InitialCash:    cfg.Backtest.InitialCash,
		CommissionRate: cfg.Backtest.CommissionRate,
	}, log)
	opt := optimize.New(engine, name, builder, workers, log)

	metricsAddr := optimizeMetricsAddr
	if metricsAddr == "" && cfg.Metrics.Enabled {
		metricsAddr = cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		mreg := metrics.NewRegistry()
		opt.AttachMetrics(mreg)
		go serveMetrics(metricsAddr, mreg, log)
	}

	sum, err := opt.Run(ctx, bars, grid)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	fmt.Print(report.Ranking(sum, topN))

	if optimizeRankingOut != "" {
		if err := report.WriteRankingCSV(sum, optimizeRankingOut); err != nil {
			return fmt.Errorf("writing ranking: %w", err)
		}
		log.Info("ranking written",
			zap.String("path", optimizeRankingOut),
			zap.Int("rows", len(sum.Results)))
	}

	return nil
}

func serveMetrics(addr string, reg *metrics.Registry, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	log.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn("metrics server stopped", zap.Error(err))
	}
}
