package grpcsvc

import (
	"context"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServerOptions задаёт параметры gRPC-сервера витрины.
type ServerOptions struct {
	Logger *log.Entry
	// Registerer — реестр для метрик go-grpc-prometheus; nil отключает метрики.
	Registerer prometheus.Registerer
}

// Server — gRPC-сервер витрины вместе с health-сервисом.
type Server struct {
	*grpc.Server
	Health *health.Server
}

// NewServer создаёт gRPC-сервер, регистрирует витрину, health и reflection.
func NewServer(srv StorefrontServer, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "grpc-server")
	}

	interceptors := []grpc.UnaryServerInterceptor{recoveryInterceptor(logger), loggingInterceptor(logger)}

	var grpcMetrics *promgrpc.ServerMetrics
	if opts.Registerer != nil {
		grpcMetrics = registerServerMetrics(opts.Registerer, logger)
		interceptors = append([]grpc.UnaryServerInterceptor{grpcMetrics.UnaryServerInterceptor()}, interceptors...)
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterStorefrontServer(server, srv)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	// reflection для grpcurl
	reflection.Register(server)

	if grpcMetrics != nil {
		grpcMetrics.InitializeMetrics(server)
	}

	return &Server{Server: server, Health: healthServer}
}

// Shutdown переводит health в NOT_SERVING и ждёт завершения вызовов не дольше timeout.
func (s *Server) Shutdown(timeout time.Duration) {
	s.Health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		s.Stop()
	}
}

func registerServerMetrics(registerer prometheus.Registerer, logger *log.Entry) *promgrpc.ServerMetrics {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := registerer.Register(grpcMetrics); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*promgrpc.ServerMetrics); ok2 {
				return existing
			}
		}
		logger.WithError(err).Warn("failed to register grpc metrics")
	}
	return grpcMetrics
}

func loggingInterceptor(logger *log.Entry) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		resp, err := handler(ctx, req)

		entry := logger.WithFields(log.Fields{
			"method":      info.FullMethod,
			"code":        status.Code(err).String(),
			"duration_ms": time.Since(started).Milliseconds(),
		})
		if err != nil {
			entry.WithError(err).Debug("grpc call failed")
		} else {
			entry.Debug("grpc call")
		}
		return resp, err
	}
}

func recoveryInterceptor(logger *log.Entry) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(log.Fields{
					"method": info.FullMethod,
					"panic":  r,
				}).Error("grpc handler panicked")
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
