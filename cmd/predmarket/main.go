package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/predmarket/config"
	"github.com/alejandrodnm/predmarket/internal/adapters/clock"
	"github.com/alejandrodnm/predmarket/internal/adapters/notify"
	"github.com/alejandrodnm/predmarket/internal/adapters/oracle"
	"github.com/alejandrodnm/predmarket/internal/adapters/storage"
	"github.com/alejandrodnm/predmarket/internal/domain"
	"github.com/alejandrodnm/predmarket/internal/engine"
	"github.com/alejandrodnm/predmarket/internal/ports"
	"github.com/alejandrodnm/predmarket/internal/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	demo := flag.Bool("demo", false, "run a scripted demo game and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("predmarket starting",
		"config", *configPath,
		"clock", cfg.Clock.Strategy,
		"oracle", cfg.Oracle.Strategy,
		"demo", *demo,
	)

	ctx := context.Background()

	var store ports.Storage
	var state *domain.GameState
	if cfg.Storage.DSN != "" && !*demo {
		db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer db.Close()
		store = db

		state, err = db.Load(ctx)
		if err != nil {
			slog.Error("failed to load game state", "err", err)
			os.Exit(1)
		}
		slog.Info("game state loaded",
			"accounts", len(state.Accounts),
			"predictions", len(state.Predictions),
			"clock", state.Clock,
		)
	}

	clk := buildClock(cfg, state)
	orc, err := buildOracle(cfg)
	if err != nil {
		slog.Error("failed to build oracle", "err", err)
		os.Exit(1)
	}

	eng := engine.New(engine.Config{
		PayoutNum:  cfg.Game.PayoutNum,
		PayoutDen:  cfg.Game.PayoutDen,
		MinDeposit: cfg.Game.MinDeposit,
		MinStake:   cfg.Game.MinStake,
	}, clk, orc, store)

	if err := eng.Restore(state); err != nil {
		slog.Error("failed to restore game state", "err", err)
		os.Exit(1)
	}

	if *demo {
		runDemo(ctx, eng, notify.NewConsole())
		return
	}

	srv := server.New(server.Config{
		Port:        cfg.Server.Port,
		CORSOrigins: cfg.Server.CORSOrigins,
	}, eng)

	sigCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			slog.Error("server exited with error", "err", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown error", "err", err)
		}
	}

	slog.Info("predmarket stopped cleanly")
}

// buildClock selects the time strategy, resuming the counter from the
// persisted instant after a restart.
func buildClock(cfg *config.Config, state *domain.GameState) ports.Clock {
	if cfg.Clock.Strategy == "wall" {
		return clock.NewWall()
	}
	var start domain.Instant
	if state != nil {
		start = state.Clock
	}
	return clock.NewCounter(start)
}

// buildOracle assembles the price source chain: strategy, then
// optional mock fallback, then optional Redis cache outermost.
func buildOracle(cfg *config.Config) (ports.PriceOracle, error) {
	var orc ports.PriceOracle

	switch cfg.Oracle.Strategy {
	case "mock":
		orc = oracle.NewMock()
	case "live":
		orc = oracle.NewLive(cfg.Oracle.FeedBase)
	case "consensus":
		consensus, err := oracle.NewConsensus(cfg.Oracle.Tolerance,
			oracle.NewLive(cfg.Oracle.FeedBase),
			oracle.NewCoinbase(""),
		)
		if err != nil {
			return nil, err
		}
		orc = consensus
	default:
		return nil, fmt.Errorf("unknown oracle strategy %q", cfg.Oracle.Strategy)
	}

	if cfg.Oracle.Fallback && cfg.Oracle.Strategy != "mock" {
		orc = oracle.NewFallback(orc, oracle.NewMock(), cfg.Oracle.ReportFallback)
	}
	if cfg.Oracle.CacheAddr != "" {
		orc = oracle.NewCached(orc, cfg.Oracle.CacheAddr, cfg.CacheTTLDuration())
	}
	return orc, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
