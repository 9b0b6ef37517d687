package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/tempwalk/pkg/dataset"
	"github.com/sanonone/tempwalk/pkg/persistence"
	"github.com/sanonone/tempwalk/pkg/walk"
)

// maxBatchesPerRequest caps GET /walks so one request cannot pin the walker.
const maxBatchesPerRequest = 64

// Options configures the HTTP surface.
type Options struct {
	HTTPAddr  string
	AuthToken string
	// RecordPath is the file written by POST /record.
	RecordPath string
	// Precision is the default precision of recordings.
	Precision persistence.Precision
}

// Server exposes a Walker over HTTP.
type Server struct {
	edges   *dataset.EdgeSet
	sampler *walk.Sampler

	// walkerMu serializes access to walker, which is not safe for concurrent use.
	walkerMu sync.Mutex
	walker   *walk.Walker

	// ctx is canceled on Shutdown to stop record tasks.
	ctx    context.Context
	cancel context.CancelFunc

	opts        Options
	httpServer  *http.Server
	taskManager *TaskManager
	tasksWG     sync.WaitGroup
	// recordSeq numbers record tasks; it feeds recordSeed.
	recordSeq atomic.Uint64
}

// NewServer wires the routes around an existing walker.
func NewServer(edges *dataset.EdgeSet, w *walk.Walker, opts Options) (*Server, error) {
	if w == nil {
		return nil, fmt.Errorf("walker is required")
	}
	if opts.Precision == "" {
		opts.Precision = persistence.Float32
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctx:         ctx,
		cancel:      cancel,
		edges:       edges,
		sampler:     w.Sampler(),
		walker:      w,
		opts:        opts,
		taskManager: NewTaskManager(),
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> Auth -> Mux
	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)
	s.httpServer = &http.Server{
		Addr:              opts.HTTPAddr,
		Handler:           rootMux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run starts the HTTP server and blocks until Shutdown.
func (s *Server) Run() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server and waits for running record tasks.
func (s *Server) Shutdown() {
	log.Println("Starting graceful shutdown of HTTP Server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	s.cancel()
	s.tasksWG.Wait()
}
