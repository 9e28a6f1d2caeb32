// Package http provides the HTTP host surface for the invoice extraction
// pipeline. It is a thin adapter: uploads come in, the batch runs, and the
// resulting report and archive are kept for download until the next run.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dvelkov/invoice-expert/internal/batch"
)

// BatchRunner runs one batch of documents.
type BatchRunner interface {
	Run(ctx context.Context, files []batch.InputFile, startNumber int) (*batch.Result, error)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Limits bounds what a single upload may contain.
type Limits struct {
	MaxFiles           int
	MaxFileSize        int64
	DefaultStartNumber int
}

// lastRun is the retained outcome of the most recent batch, the run state
// the host owns on behalf of the stateless core.
type lastRun struct {
	rows     []batch.ReportRow
	report   []byte
	archive  []byte
	finished time.Time
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	limits     Limits
	httpServer *http.Server
	router     *gin.Engine
	runner     BatchRunner
	logger     *zap.Logger

	mu   sync.RWMutex
	last *lastRun
}

// NewServer creates a new HTTP server around a batch runner.
func NewServer(config ServerConfig, limits Limits, runner BatchRunner, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		config: config,
		limits: limits,
		router: gin.New(),
		runner: runner,
		logger: logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api/v1")
	{
		api.POST("/batches", s.handleCreateBatch)
		api.GET("/batches/last", s.handleLastBatch)
		api.GET("/batches/last/report", s.handleDownloadReport)
		api.GET("/batches/last/archive", s.handleDownloadArchive)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) storeRun(run *lastRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = run
}

func (s *Server) loadRun() *lastRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
