// Package main provides the HTTP API server binary for the RPG backend.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/crystalfall/rpgserver/internal/api"
	"github.com/crystalfall/rpgserver/internal/config"
	"github.com/crystalfall/rpgserver/internal/game/spell"
	"github.com/crystalfall/rpgserver/internal/observability"
	"github.com/crystalfall/rpgserver/internal/server"
	"github.com/crystalfall/rpgserver/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	// Uploads land on local disk the way the game client expects.
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		logger.Fatal("creating uploads directory", zap.String("dir", cfg.Uploads.Dir), zap.Error(err))
	}

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	characters := pool.Characters()
	monsters := pool.Monsters()
	items := pool.Items()
	accounts := pool.Accounts()

	spellEngine := spell.NewEngine(characters, logger)

	apiServer := api.NewServer(
		characters, monsters, items, accounts,
		spellEngine, pool,
		cfg.Auth, cfg.Uploads, logger,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      apiServer.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add(server.Service{
		Name: "http",
		Start: func() error {
			logger.Info("http server listening", zap.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		Stop: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			_ = httpServer.Shutdown(shutdownCtx)
		},
	})

	watchCtx, stopWatch := context.WithCancel(ctx)
	lifecycle.Add(server.Service{
		Name: "postgres",
		Start: func() error {
			pool.WatchHealth(watchCtx, logger)
			return nil
		},
		Stop: func() {
			stopWatch()
			pool.Close()
		},
	})

	logger.Info("api server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
