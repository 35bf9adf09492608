package grpcapi

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/xtding233/montyhall/internal/host"
)

// Server bundles the simulator service with the standard health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

// NewServer registers the simulator and health services for h.
func NewServer(h *host.Host, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	logger = logger.WithPrefix("grpc")

	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(logUnary(logger)))
	gs.RegisterService(&ServiceDesc, NewService(h, logger))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{grpc: gs, health: hs}
}

// Serve blocks until the listener fails or Stop is called.
func (s *Server) Serve(lis net.Listener) error { return s.grpc.Serve(lis) }

// Stop flips health to NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func logUnary(logger *log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("rpc",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"elapsed", time.Since(start),
		)
		return resp, err
	}
}
