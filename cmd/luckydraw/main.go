// Package main runs the lucky draw wheel on the local terminal or for
// remote Telnet clients.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/luckydraw/internal/config"
	"github.com/cory-johannsen/luckydraw/internal/frontend/console"
	"github.com/cory-johannsen/luckydraw/internal/frontend/handlers"
	"github.com/cory-johannsen/luckydraw/internal/frontend/telnet"
	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/rng"
	"github.com/cory-johannsen/luckydraw/internal/observability"
	"github.com/cory-johannsen/luckydraw/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (defaults and LUCKYDRAW_* env when empty)")
	envFile := flag.String("env", ".env", "dotenv file with LUCKYDRAW_* overrides (ignored when missing)")
	mode := flag.String("mode", "", "override frontend.mode: console or telnet")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Fatalf("loading env file: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *mode != "" {
		cfg.Frontend.Mode = *mode
		if err := cfg.Validate(); err != nil {
			log.Fatalf("applying -mode: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	prizes, err := prize.Load(cfg.Draw.PrizesFile)
	if err != nil {
		logger.Fatal("loading prize catalog", zap.String("path", cfg.Draw.PrizesFile), zap.Error(err))
	}
	logger.Info("prize catalog loaded",
		zap.String("path", cfg.Draw.PrizesFile),
		zap.Int("prizes", len(prizes)),
	)

	var src rng.Source
	if cfg.Draw.RandomSeed != 0 {
		src = rng.NewSeededSource(cfg.Draw.RandomSeed)
		logger.Warn("using seeded random source; draws are reproducible", zap.Uint64("seed", cfg.Draw.RandomSeed))
	} else {
		src = rng.NewCryptoSource()
	}

	metrics := observability.NewMetrics()
	handler, err := handlers.NewDrawHandler(handlers.Options{
		Prizes:        prizes,
		Source:        src,
		SpinDuration:  cfg.Draw.SpinDuration,
		Revolutions:   cfg.Draw.Revolutions,
		HistorySize:   cfg.Draw.HistorySize,
		FrameInterval: cfg.Draw.FrameInterval,
		Observer:      metrics,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("building draw handler", zap.Error(err))
	}

	lifecycle := server.NewLifecycle(logger)
	if cfg.Metrics.Enabled() {
		lifecycle.Add("metrics", observability.NewMetricsServer(cfg.Metrics.Addr, metrics, logger))
	}

	switch cfg.Frontend.Mode {
	case "telnet":
		lifecycle.Add("telnet", telnet.NewAcceptor(cfg.Telnet, handler, logger))
	default:
		term := console.NewTerminal(os.Stdin, os.Stdout)
		serve := func(ctx context.Context, t *console.Terminal, id string) error {
			return handler.Serve(ctx, t, id)
		}
		lifecycle.Add("console", console.NewFrontend(term, serve, logger))
	}

	logger.Info("lucky draw initialized",
		zap.String("mode", cfg.Frontend.Mode),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("metrics_addr", cfg.Metrics.Addr),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
