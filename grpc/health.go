package grpc

import (
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the bot.
const ServiceName = "autothread.Bot"

// HealthServer exposes the standard gRPC health service.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	lis    net.Listener
}

// NewHealthServer creates a server that reports NOT_SERVING until Start.
func NewHealthServer() *HealthServer {
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h)
	return &HealthServer{server: s, health: h}
}

// Start listens on addr and serves in the background.
func (hs *HealthServer) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	hs.lis = lis
	hs.SetServing(true)
	go func() {
		if err := hs.server.Serve(lis); err != nil {
			log.Error().Err(err).Msg("health server stopped")
		}
	}()
	log.Info().Str("addr", lis.Addr().String()).Msg("health endpoint listening")
	return nil
}

// Addr is the bound listen address, empty before Start.
func (hs *HealthServer) Addr() string {
	if hs.lis == nil {
		return ""
	}
	return hs.lis.Addr().String()
}

// SetServing flips the reported status of the bot service and the server as a whole.
func (hs *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	hs.health.SetServingStatus(ServiceName, status)
	hs.health.SetServingStatus("", status)
}

// Stop shuts the server down.
func (hs *HealthServer) Stop() {
	hs.health.Shutdown()
	hs.server.GracefulStop()
}
