package catalog

import (
	"context"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
)

// Server serves a Catalog over gRPC.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	port       int
}

// NewServer creates a server for backend listening on the specified port.
// Pass port 0 for dynamic allocation.
func NewServer(port int, backend Catalog) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	// Get actual port if dynamically allocated
	actualPort := listener.Addr().(*net.TCPAddr).Port

	return &Server{
		grpcServer: newGRPCServer(backend),
		listener:   listener,
		port:       actualPort,
	}, nil
}

func newGRPCServer(backend Catalog) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(logFailures))
	RegisterCatalogServer(s, backend)
	return s
}

func logFailures(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	if err != nil {
		log.Printf("[catalog] %s failed: %v", info.FullMethod, err)
	}
	return resp, err
}

// Port returns the port the server is listening on.
func (s *Server) Port() int {
	return s.port
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	return s.grpcServer.Serve(s.listener)
}

// Stop gracefully stops the server.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
}
