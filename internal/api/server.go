package api

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/gsfdstack/gsfd-analysis/internal/config"
)

// Server exposes the Analysis service of one loaded corpus over gRPC. Its
// health status follows the corpus: NOT_SERVING while a reload recomputes it.
type Server struct {
	cfg        config.ServerConfig
	grpcServer *grpc.Server
	listener   net.Listener
	health     *health.Server

	// reloadMu serialises reloads so health never flips back early.
	reloadMu sync.Mutex
}

// NewServer listens on cfg.Address and registers service, health and reflection.
func NewServer(cfg config.ServerConfig, service AnalysisServer, opts ...grpc.ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.Address, err)
	}

	grpc_prometheus.EnableHandlingTimeHistogram()
	serverOpts := append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
		grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	}, opts...)
	s := &Server{
		cfg:        cfg,
		grpcServer: grpc.NewServer(serverOpts...),
		listener:   lis,
		health:     health.NewServer(),
	}

	RegisterAnalysisServer(s.grpcServer, service)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	reflection.Register(s.grpcServer)
	grpc_prometheus.Register(s.grpcServer)

	s.setServing(true)
	return s, nil
}

func (s *Server) setServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(AnalysisServiceName, status)
}

// Reload reports NOT_SERVING while recompute runs, then SERVING again.
// Queries keep being answered from the previous corpus in the meantime.
func (s *Server) Reload(ctx context.Context, recompute func(context.Context) error) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	s.setServing(false)
	defer s.setServing(true)
	return recompute(ctx)
}

// Start serves incoming gRPC requests until Shutdown is invoked.
func (s *Server) Start() error {
	if s.grpcServer == nil || s.listener == nil {
		return fmt.Errorf("server not initialised")
	}
	return s.grpcServer.Serve(s.listener)
}

// Shutdown marks the server as not serving, then attempts a graceful stop,
// falling back to Stop after the context expires.
func (s *Server) Shutdown(ctx context.Context) {
	if s.grpcServer == nil {
		return
	}
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.grpcServer.Stop()
		<-stopped
	case <-stopped:
	}
}

// Address returns the bound listener address.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GracefulTimeout returns the configured graceful timeout duration.
func (s *Server) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}
