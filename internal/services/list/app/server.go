// Package server wires the list runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/demonlist.space/internal/platform/config"
	"github.com/louisbranch/demonlist.space/internal/services/list/dispatch"
	"github.com/louisbranch/demonlist.space/internal/services/list/domain/demon"
	listsqlite "github.com/louisbranch/demonlist.space/internal/services/list/storage/sqlite"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	DBPath       string `env:"DEMONLIST_SPACE_LIST_DB_PATH"`
	Workers      int    `env:"DEMONLIST_SPACE_LIST_WORKERS"`
	QueueDepth   int    `env:"DEMONLIST_SPACE_LIST_QUEUE_DEPTH"`
	MainSize     int    `env:"DEMONLIST_SPACE_LIST_MAIN_SIZE"`
	ExtendedSize int    `env:"DEMONLIST_SPACE_LIST_EXTENDED_SIZE"`
	TokenSecret  string `env:"DEMONLIST_SPACE_LIST_TOKEN_SECRET"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "list.db")
	}
	return cfg
}

// Server hosts the list command runtime and storage lifecycle. Transports
// register their APIs against the dispatcher it exposes.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *listsqlite.Store
	dispatcher *dispatch.Dispatcher
	bounds     demon.Bounds
	secret     []byte
}

// New creates a configured list server listening on the provided port.
func New(ctx context.Context, port int) (*Server, error) {
	return NewWithAddr(ctx, fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured list server for the provided address.
func NewWithAddr(ctx context.Context, addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openListStore(ctx, env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	workers := env.Workers
	if workers <= 0 {
		workers = dispatch.DefaultWorkers
	}
	store.LimitConnections(workers)

	dispatcher := dispatch.New(store, workers, env.QueueDepth)
	dispatcher.Start()

	bounds := demon.Bounds{Main: env.MainSize, Extended: env.ExtendedSize}
	if bounds.Main <= 0 || bounds.Extended <= 0 {
		bounds = demon.DefaultBounds()
	}
	if strings.TrimSpace(env.TokenSecret) == "" {
		log.Printf("list token secret is not configured; tokens are signed with password hashes only")
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("list.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
		dispatcher: dispatcher,
		bounds:     bounds,
		secret:     []byte(env.TokenSecret),
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Dispatcher returns the command dispatcher bound to the server's store.
func (s *Server) Dispatcher() *dispatch.Dispatcher {
	if s == nil {
		return nil
	}
	return s.dispatcher
}

// Bounds returns the configured main and extended list sizes.
func (s *Server) Bounds() demon.Bounds {
	if s == nil {
		return demon.DefaultBounds()
	}
	return s.bounds
}

// TokenSecret returns the application half of the token signing key.
func (s *Server) TokenSecret() []byte {
	if s == nil {
		return nil
	}
	return s.secret
}

// Run creates and serves a list server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(ctx, port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("list server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		err := <-serveErr
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return fmt.Errorf("serve gRPC: %w", err)
	}
}

// Close releases list server resources. The dispatcher drains before the
// store goes away so in-flight commands keep their connections.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.dispatcher != nil {
		s.dispatcher.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close list store: %v", err)
		}
	}
}

func openListStore(ctx context.Context, path string) (*listsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := listsqlite.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open list sqlite store: %w", err)
	}
	return store, nil
}
