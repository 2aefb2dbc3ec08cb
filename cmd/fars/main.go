// Command fars loads, summarizes and maps FARS accident data.
//
// Usage:
//
//	fars load 2013
//	fars summarize 2013 2014 2015 --xlsx summary.xlsx
//	fars map --state 6 --year 2014 --out ca_2014.png
//	fars validate
//	fars serve
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/fars-data/internal/adapter/boundary"
	"github.com/couchcryptid/fars-data/internal/adapter/mapplot"
	"github.com/couchcryptid/fars-data/internal/config"
	"github.com/couchcryptid/fars-data/internal/domain"
	"github.com/couchcryptid/fars-data/internal/observability"
	"github.com/couchcryptid/fars-data/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run executes the root command; cobra reports the error itself.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fars",
		Short: "Load, summarize and map FARS accident data",
		Long: `Load, summarize and map NHTSA Fatality Analysis Reporting System data.

Data files are read from the data directory as accident_<year>.csv.bz2
(gzip and plain CSV are also accepted). Settings come from the environment;
see FARS_DATA_DIR, FARS_BOUNDARY_FILE, PLOT_FORMAT and LOG_LEVEL.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("data-dir", "", "data directory (overrides FARS_DATA_DIR)")

	root.AddCommand(
		newLoadCmd(),
		newSummarizeCmd(),
		newMapCmd(),
		newValidateCmd(),
		newServeCmd(),
	)
	return root
}

// app is the wiring shared by all subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	pipeline *pipeline.Pipeline
}

// newApp builds the wiring for a one-shot command. Logs go to stderr and
// metrics to a private registry that is never exposed.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return assemble(cfg, observability.NewCLILogger(cfg), observability.NewMetricsWith(prometheus.NewRegistry())), nil
}

// newServiceApp builds the wiring for serve, with the default logger and
// metrics registered for /metrics.
func newServiceApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return assemble(cfg, observability.NewLogger(cfg), observability.NewMetrics()), nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

func assemble(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *app {
	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		pipeline: pipeline.New(cfg.DataDir, logger, metrics),
	}
}

// renderers returns a constructor for map renderers sized from the
// configuration, with state outlines when a boundary file is configured.
func (a *app) renderers() (func(w io.Writer, format string) domain.MapRenderer, error) {
	opts := []mapplot.Option{
		mapplot.WithSize(vg.Length(a.cfg.PlotWidth)*vg.Inch, vg.Length(a.cfg.PlotHeight)*vg.Inch),
	}
	if a.cfg.BoundaryFile != "" {
		b, err := boundary.Load(a.cfg.BoundaryFile)
		if err != nil {
			return nil, err
		}
		a.logger.Debug("state boundaries loaded", "path", a.cfg.BoundaryFile, "states", len(b.States()))
		opts = append(opts, mapplot.WithOutlines(b))
	}
	return func(w io.Writer, format string) domain.MapRenderer {
		all := append(opts[:len(opts):len(opts)], mapplot.WithFormat(format))
		return mapplot.NewRenderer(w, all...)
	}, nil
}

// yearsOrAll parses year arguments, falling back to every year with a data
// file when none are given.
func (a *app) yearsOrAll(args []string) ([]int, error) {
	years, err := domain.ParseYears(args)
	if err != nil {
		return nil, err
	}
	if len(years) > 0 {
		return years, nil
	}
	years, err = domain.DiscoverYears(a.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("no data files in %s", a.cfg.DataDir)
	}
	return years, nil
}
