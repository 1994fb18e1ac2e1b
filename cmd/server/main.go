package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "zcc-wallet-backend/internal/api/grpc"
	httpapi "zcc-wallet-backend/internal/api/http"
	"zcc-wallet-backend/internal/app"
	"zcc-wallet-backend/internal/config"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/security"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting ZCC wallet backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress(), "driver", cfg.Database.Driver)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("Failed to initialize wallet", "error", err)
		log.Fatalf("Failed to initialize wallet: %v", err)
	}
	defer a.Close()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	webhook := security.NewWebhookVerifier(cfg.Payments.WebhookKeyHash)
	if cfg.Payments.WebhookKeyHash == "" {
		logger.Warn("Payment webhook key not configured; confirmations will be rejected")
	}

	handler := httpapi.NewHandler(httpapi.Services{
		Wallet:        a.Wallet,
		Catalog:       a.Catalog,
		Listings:      a.Listings,
		Unlocks:       a.Unlocks,
		Verifications: a.Verifications,
		Quota:         a.Quota,
		Notifications: a.Notifications,
	}, a.Repos.Health)
	router := httpapi.NewRouter(handler, httpapi.NewAuthMiddleware(tokenManager, webhook))

	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up gRPC health server
	var grpcServer *grpcapi.Server
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer = grpcapi.NewServer(tokenManager, a.Repos.Health)
		go grpcServer.WatchStore(ctx, 15*time.Second)
		go func() {
			logger.Info("gRPC server listening", "address", addr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("Server stopped")
}
