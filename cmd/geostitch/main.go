package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/geostitch/internal/config"
	"github.com/ironsheep/geostitch/internal/metrics"
	"github.com/ironsheep/geostitch/internal/render"
	"github.com/ironsheep/geostitch/internal/satellite"
	"github.com/ironsheep/geostitch/internal/server"
	"github.com/ironsheep/geostitch/internal/underlay"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("geostitch %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "geostitch: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("geostitch - MCP server for geostationary satellite imagery")
	fmt.Println()
	fmt.Println("Usage: geostitch [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  GEOSTITCH_CONFIG=path          YAML settings file")
	fmt.Println("  GEOSTITCH_RESOLUTION=2         Full-disc resolution in km (1, 2 or 4)")
	fmt.Println("  GEOSTITCH_INTERPOLATION=...    bilinear or nearest")
	fmt.Println("  GEOSTITCH_DEFINITIONS=path     Satellite definitions YAML")
	fmt.Println("  GEOSTITCH_UNDERLAY=path        Equirectangular world image")
	fmt.Println("  GEOSTITCH_CACHE_DIR=path       Underlay cache directory")
	fmt.Println("  GEOSTITCH_BLEND_RATIO=0.1      Edge feather margin")
	fmt.Println("  GEOSTITCH_WORKERS=0            Row workers (0 = all CPUs)")
	fmt.Println("  GEOSTITCH_BACKGROUND=#000000   Background colour")
	fmt.Println("  GEOSTITCH_METRICS_ADDR=:9090   Serve Prometheus metrics")
	fmt.Println("  GEOSTITCH_LOG_LEVEL=debug      Log level")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// stdout is for the MCP protocol.
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("starting", "version", Version, "build_time", BuildTime, "commit", GitCommit)

	offset, err := cfg.Offset()
	if err != nil {
		return err
	}
	background, err := cfg.BackgroundColor()
	if err != nil {
		return err
	}
	registry, err := satellite.LoadFile(cfg.DefinitionsPath, offset)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	renderCfg := render.Config{
		Registry:     registry,
		Offset:       offset,
		UnderlayPath: cfg.UnderlayPath,
		Reproject:    cfg.ReprojectOptions(),
		Background:   background,
		Logger:       logger,
		Metrics:      m,
	}

	if cfg.UnderlayPath != "" {
		cache, err := underlay.Open(ctx, cfg.CacheDir, underlay.GooseMigrator{}, underlay.Options{
			Logger:  logger.With("component", "underlay_cache"),
			Metrics: m,
		})
		if err != nil {
			return err
		}
		renderCfg.Underlays = underlay.NewService(underlay.ServiceConfig{
			Cache:      cache,
			Offset:     offset,
			Reproject:  renderCfg.Reproject,
			Background: background,
			Logger:     logger.With("component", "underlay"),
			Metrics:    m,
		})
		logger.Info("underlay enabled", "path", cfg.UnderlayPath, "cache_dir", cache.Dir())
	}

	logger.Info("serving", "satellites", len(registry.All()), "image_size", offset.ImageSize)
	return server.New(render.New(renderCfg), Version, logger).Run(ctx)
}

// serveMetrics exposes the default registry on addr in the background.
func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return srv
}
