package grpc

import (
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	seflowv1 "github.com/simaogato/seflow-backend/internal/adapter/grpc/seflow/v1"
	"github.com/simaogato/seflow-backend/internal/observability"
)

// NewGRPCServer builds the gRPC server with SeflowService, health and reflection registered.
// Interceptor order: logging, then auth. Streaming calls (reflection) are authenticated too.
func NewGRPCServer(srv *Server, apiToken string, logger zerolog.Logger, metrics *observability.Metrics) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(logger, metrics),
			AuthInterceptor(apiToken),
		),
		grpc.ChainStreamInterceptor(StreamAuthInterceptor(apiToken)),
	)

	seflowv1.RegisterSeflowServiceServer(grpcServer, srv)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(seflowv1.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	reflection.Register(grpcServer)

	return grpcServer, healthServer
}
