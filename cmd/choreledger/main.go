package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/choreledger/internal/auth"
	"github.com/dukerupert/choreledger/internal/config"
	"github.com/dukerupert/choreledger/internal/database"
	"github.com/dukerupert/choreledger/internal/ledger"
	"github.com/dukerupert/choreledger/internal/logging"
	"github.com/dukerupert/choreledger/internal/server"
	"github.com/dukerupert/choreledger/internal/telemetry"
	ws "github.com/dukerupert/choreledger/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	if err := cfg.RequireSecret(); err != nil {
		logger.Error("config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	shutdownTracing, err := telemetry.Setup(ctx, "choreledger", cfg.OTelEndpoint)
	if err != nil {
		logger.Error("set up tracing", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	hub := ws.NewHub(logger.With("component", "websocket"))
	l, err := ledger.New(ctx, db, ledger.Options{
		Logger:      logger.With("component", "ledger"),
		Publisher:   hub,
		Treasury:    ledger.Treasury{Supply: cfg.TreasurySupply},
		TokenName:   cfg.TokenName,
		TokenSymbol: cfg.TokenSymbol,
	})
	if err != nil {
		logger.Error("open ledger", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		logger.Error("token verifier", "error", err)
		os.Exit(1)
	}

	srv := server.New(l, hub, tokens, cfg.RateLimit, logger)

	stopJanitor := make(chan struct{})
	go srv.RateLimiter().Janitor(5*time.Minute, stopJanitor)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("choreledger listening", "addr", httpServer.Addr, "token", l.Symbol(), "treasury_supply", cfg.TreasurySupply)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	close(stopJanitor)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
