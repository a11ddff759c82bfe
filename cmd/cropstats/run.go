package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sekarsister/cropstats/internal/config"
	"github.com/sekarsister/cropstats/internal/cpi"
	"github.com/sekarsister/cropstats/internal/grain"
	"github.com/sekarsister/cropstats/internal/metrics"
	"github.com/sekarsister/cropstats/internal/output"
	"github.com/sekarsister/cropstats/internal/statcan"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

type fetchOptions struct {
	outDir      string
	input       string
	cacheDir    string
	metricsFile string
}

// loadConfig resolves the configuration and applies flag overrides on top.
func loadConfig(g globalOptions, opts fetchOptions) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if opts.outDir != "" {
		cfg.OutputDir = opts.outDir
	}
	if opts.cacheDir != "" {
		cfg.CacheDir = opts.cacheDir
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return cfg, logger, nil
}

// openProvider picks the table source: a local file, or the web service
// behind the download cache when a cache directory is configured.
func openProvider(cfg config.Config, input string, logger *slog.Logger) (statcan.Provider, func(), error) {
	if input != "" {
		logger.Info("reading local table", "path", input)
		return statcan.FileProvider{Path: input}, func() {}, nil
	}

	client := statcan.NewClient(cfg.StatCan, logger)
	if cfg.CacheDir == "" {
		return client, func() {}, nil
	}

	cache, err := statcan.OpenCache(cfg.CacheDir, cfg.StatCan.CacheTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}
	closeCache := func() {
		if err := cache.Close(); err != nil {
			logger.Warn("closing cache", "error", err)
		}
	}
	return statcan.CachedProvider{
		Next:     client,
		Cache:    cache,
		Language: cfg.StatCan.Language,
		Logger:   logger,
	}, closeCache, nil
}

func fetchRows(ctx context.Context, p statcan.Provider, tableID string, cols statcan.ColumnSet) ([]statcan.Row, error) {
	raw, err := p.TableCSV(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("fetching table %s: %w", tableID, err)
	}
	rows, err := statcan.Decode(raw, cols)
	if err != nil {
		return nil, fmt.Errorf("decoding table %s: %w", tableID, err)
	}
	return rows, nil
}

func publish(w output.Writer, rec *metrics.Recorder, pipeline string, artifacts ...output.Artifact) error {
	for _, a := range artifacts {
		path, n, err := w.Write(a)
		if err != nil {
			return err
		}
		rec.Artifact(pipeline, n)
		fmt.Printf("   - %s (%d bytes)\n", path, n)
	}
	return nil
}

func writeMetrics(rec *metrics.Recorder, path string, logger *slog.Logger) {
	if path == "" {
		return
	}
	if err := rec.WriteFile(path); err != nil {
		logger.Warn("metrics not written", "error", err)
	}
}

func runGrain(ctx context.Context, g globalOptions, opts fetchOptions, xlsx string) error {
	cfg, logger, err := loadConfig(g, opts)
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	defer writeMetrics(rec, opts.metricsFile, logger)

	provider, closeProvider, err := openProvider(cfg, opts.input, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	fmt.Println("🌾 GRAIN PRODUCTION GROWTH DECOMPOSITION")
	fmt.Printf("Fetching table %s...\n", cfg.Grain.TableID)

	done := rec.Stage("grain", "fetch")
	rows, err := fetchRows(ctx, provider, cfg.Grain.TableID, statcan.GrainColumns())
	done()
	if err != nil {
		return err
	}

	done = rec.Stage("grain", "decompose")
	result := grain.Run(rows, cfg.Grain, logger)
	done()

	rec.Rows("grain", "accepted", result.Aggregation.Accepted)
	for _, reason := range grain.SkipReasons {
		rec.Rows("grain", string(reason), result.Aggregation.Skipped[reason])
	}
	rec.ImplausibleWithin(len(result.Implausible))

	fmt.Println("📁 Output files:")
	done = rec.Stage("grain", "publish")
	err = publish(output.Writer{Dir: cfg.OutputDir}, rec, "grain", grain.Artifacts(result, cfg.Grain.Groups)...)
	done()
	if err != nil {
		return err
	}

	if xlsx != "" {
		if err := grain.WriteWorkbook(result, xlsx); err != nil {
			return err
		}
		fmt.Printf("   - %s\n", xlsx)
	}

	printGrainSummary(os.Stdout, result)
	rec.Success("grain", time.Now())
	return nil
}

func runCPI(ctx context.Context, g globalOptions, opts fetchOptions, years int) error {
	cfg, logger, err := loadConfig(g, opts)
	if err != nil {
		return err
	}
	if years > 0 {
		cfg.CPI.Years = years
	}

	rec := metrics.NewRecorder()
	defer writeMetrics(rec, opts.metricsFile, logger)

	provider, closeProvider, err := openProvider(cfg, opts.input, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	fmt.Println("📈 CONSUMER PRICE INDEX")
	fmt.Printf("Fetching table %s...\n", cfg.CPI.TableID)

	done := rec.Stage("cpi", "fetch")
	rows, err := fetchRows(ctx, provider, cfg.CPI.TableID, statcan.CPIColumns())
	done()
	if err != nil {
		return err
	}

	series, err := cpi.IndexSeries(rows, cfg.CPI)
	rec.Rows("cpi", "accepted", series.Accepted)
	for reason, n := range series.Skipped {
		rec.Rows("cpi", reason, n)
	}
	if errors.Is(err, cpi.ErrNoData) {
		logger.Warn("nothing to publish", "rows", len(rows))
		fmt.Println("No data points found")
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("index rebased",
		"points", len(series.Data),
		"base_date", series.BaseDate,
		"base_value", series.BaseValue,
	)

	fmt.Println("📁 Output files:")
	if err := publish(output.Writer{Dir: cfg.OutputDir}, rec, "cpi", series.Artifact()); err != nil {
		return err
	}

	printCPISummary(os.Stdout, series)
	rec.Success("cpi", time.Now())
	return nil
}

func runGroupings(g globalOptions, w io.Writer) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	data, err := output.Encode(cfg.Grain.Groups.Document())
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
