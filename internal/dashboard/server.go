// Package dashboard serves the operational HTTP surface: a health probe and
// aggregate counters over the store.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/golandec/invoicebot/internal/store"
)

// Server exposes /healthz and /api/stats.
type Server struct {
	store *store.Store
	addr  string
	out   io.Writer
}

// Opts holds parameters for creating a Server.
type Opts struct {
	Store *store.Store
	Port  int
	Out   io.Writer
}

// New creates a Server.
func New(opts Opts) (*Server, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("dashboard: store is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Server{
		store: opts.Store,
		addr:  fmt.Sprintf(":%d", opts.Port),
		out:   opts.Out,
	}, nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealthz)
	router.GET("/api/stats", s.handleStats)

	srv := &http.Server{Addr: s.addr, Handler: router}

	errc := make(chan error, 1)
	go func() {
		fmt.Fprintf(s.out, "[dashboard] listening on %s\n", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStats(c *gin.Context) {
	ctx := c.Request.Context()

	clients, err := s.store.CountClients(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	documents, err := s.store.CountDocuments(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}
	questions, err := s.store.CountQuestions(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients":   clients,
		"documents": documents,
		"questions": questions,
	})
}
