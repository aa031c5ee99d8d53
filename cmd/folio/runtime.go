package main

import (
	"context"
	"fmt"
	"os"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/config"
	"github.com/newthinker/folio/internal/logger"
	"github.com/newthinker/folio/internal/metrics"
	"github.com/newthinker/folio/internal/trace"
	"go.uber.org/zap"
)

// runtime is everything a command needs once config is loaded.
type runtime struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Registry
	tracer  *trace.Tracer
	app     *app.App
}

func loadConfig() (*config.Config, bool, error) {
	if cfgFile == "" {
		return config.Defaults(), false, nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, false, fmt.Errorf("loading config: %w", err)
	}
	return cfg, true, nil
}

// setup loads config, builds the logger, metrics, tracer and App.
// withMetrics is false for one-shot commands that never expose /metrics.
func setup(ctx context.Context, withMetrics bool) (*runtime, error) {
	cfg, fromFile, err := loadConfig()
	if err != nil {
		return nil, err
	}

	opts := logger.Options{Development: cfg.Log.Development, Level: cfg.Log.Level}
	if debug {
		opts = logger.Options{Development: true, Level: "debug"}
	}
	log, err := logger.New(opts)
	if err != nil {
		return nil, err
	}
	if !fromFile {
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	rt := &runtime{cfg: cfg, log: log}
	if withMetrics && cfg.Metrics.Enabled {
		rt.metrics = metrics.NewRegistry()
	}

	rt.tracer, err = trace.New(cfg.Tracing.Enabled, os.Stderr, Version)
	if err != nil {
		return nil, fmt.Errorf("creating tracer: %w", err)
	}

	rt.app, err = app.Build(ctx, cfg, log, rt.metrics, rt.tracer)
	if err != nil {
		return nil, fmt.Errorf("building app: %w", err)
	}
	return rt, nil
}

func (rt *runtime) close(ctx context.Context) {
	if err := rt.tracer.Shutdown(ctx); err != nil {
		rt.log.Warn("tracer shutdown", zap.Error(err))
	}
	_ = rt.log.Sync()
}
