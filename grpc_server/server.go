package grpcserver

import (
	"panel-rbac/interceptors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewServer builds the gRPC server with logging and JWT interceptors, the
// authorization service and the standard health service.
func NewServer(logger *zap.Logger, authz AuthorizationServer) (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.ZapLoggingInterceptor(logger.Named("grpc")),
			interceptors.AuthInterceptor(LoginMethod, healthpb.Health_Check_FullMethodName),
		),
	)
	RegisterAuthorizationServer(srv, authz)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(AuthorizationServiceName, healthpb.HealthCheckResponse_SERVING)
	return srv, hs
}
