package grpc

import (
	"fmt"
	"log/slog"
	"net"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Emmyme/hids-cli/pkg/auth"
	"github.com/Emmyme/hids-cli/pkg/tlsutil"
)

// MethodRoles lists the roles allowed to call each ThreatService method.
var MethodRoles = auth.Policy{
	MethodAnalyzeRecord: {auth.RoleSensor, auth.RoleAnalyst, auth.RoleAdmin},
	MethodAnalyzeBatch:  {auth.RoleSensor, auth.RoleAnalyst, auth.RoleAdmin},
	MethodGetVerdict:    {auth.RoleAnalyst, auth.RoleAdmin},
	MethodListVerdicts:  {auth.RoleAnalyst, auth.RoleAdmin},
	MethodModelInfo:     {auth.RoleAnalyst, auth.RoleAdmin},
}

// ServerOptions configures optional server features.
type ServerOptions struct {
	// JWT enables bearer authentication and role checks when non-nil.
	JWT *auth.JWTService
	// TLSCertFile and TLSKeyFile enable TLS when both are set.
	TLSCertFile string
	TLSKeyFile  string
	// TLSClientCAFile additionally requires sensors to present a client
	// certificate signed by this CA.
	TLSClientCAFile string
	Reflection      bool
}

// Server wraps the gRPC server with threat service handlers.
type Server struct {
	address    string
	grpcServer *grpclib.Server
	health     *health.Server
	handler    *ThreatServiceHandler
	logger     *slog.Logger
}

// NewServer creates a new gRPC server for the threat service.
func NewServer(handler *ThreatServiceHandler, address string, logger *slog.Logger, opts ServerOptions) (*Server, error) {
	var serverOpts []grpclib.ServerOption

	if opts.JWT != nil {
		serverOpts = append(serverOpts, grpclib.ChainUnaryInterceptor(
			auth.UnaryAuthInterceptor(opts.JWT, []string{
				"/grpc.health.v1.Health/Check",
				"/grpc.health.v1.Health/Watch",
			}),
			auth.RequireRoles(MethodRoles),
		))
	} else {
		logger.Warn("gRPC authentication disabled, no JWT key material configured")
	}

	if opts.TLSCertFile != "" && opts.TLSKeyFile != "" {
		creds, err := tlsutil.ServerCredentials(opts.TLSCertFile, opts.TLSKeyFile, opts.TLSClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpclib.Creds(creds))
		logger.Info("gRPC TLS enabled",
			"cert", opts.TLSCertFile,
			"mutual", opts.TLSClientCAFile != "",
		)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpclib.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterThreatServiceServer(grpcServer, handler)

	if opts.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		address:    address,
		grpcServer: grpcServer,
		health:     healthServer,
		handler:    handler,
		logger:     logger,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve accepts connections on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// Stop marks the service as not serving and gracefully stops the server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
