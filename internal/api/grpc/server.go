// Package grpc serves the standard health and reflection services next to the
// HTTP API, so orchestrators and grpcurl can probe the wallet.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"zcc-wallet-backend/internal/api/grpc/interceptor"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/repository"
	"zcc-wallet-backend/internal/security"
)

// WalletServiceName is the health service name reported for the ledger.
const WalletServiceName = "zcc.wallet.v1.Wallet"

// Server wraps a grpc.Server whose health status follows the store.
type Server struct {
	*grpc.Server
	health *health.Server
	store  repository.Pinger
}

func NewServer(tm security.TokenManager, store repository.Pinger) *Server {
	auth := interceptor.NewAuthInterceptor(tm)
	s := grpc.NewServer(grpc.UnaryInterceptor(auth.Unary()))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	return &Server{Server: s, health: hs, store: store}
}

// CheckStore pings the store once and publishes the result.
func (s *Server) CheckStore(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		logger.Warn("Store ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(WalletServiceName, st)
	return st
}

// WatchStore re-checks the store every interval until ctx is done.
func (s *Server) WatchStore(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		pingCtx, cancel := context.WithTimeout(ctx, interval/2)
		s.CheckStore(pingCtx)
		cancel()
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

// Health exposes the health server for in-process checks.
func (s *Server) Health() healthpb.HealthServer {
	return s.health
}
