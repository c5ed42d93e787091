package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/s0up4200/automater-sync/metrics"
	"github.com/s0up4200/automater-sync/orders"
)

// Defaults for Config
const (
	DefaultListen     = ":8080"
	DefaultWorkers    = 4
	DefaultJobTimeout = 2 * time.Minute
)

// OrderHandler processes order events
type OrderHandler interface {
	OrderPlaced(ctx context.Context, orderID int64) (*orders.Result, error)
	OrderPaid(ctx context.Context, orderID int64) (*orders.Result, error)
}

var _ OrderHandler = (*orders.Processor)(nil)

// Config holds the webhook server settings
type Config struct {
	Listen       string
	Secret       string
	Workers      int
	QueueSize    int
	PaidStatuses []string
	JobTimeout   time.Duration
}

// Server is the webhook HTTP server
type Server struct {
	cfg          Config
	orders       OrderHandler
	pool         *Pool
	router       *gin.Engine
	server       *http.Server
	paidStatuses map[string]struct{}
	logger       zerolog.Logger
}

// New creates a new webhook server and starts its worker pool
func New(cfg Config, handler OrderHandler, logger zerolog.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}
	if len(cfg.PaidStatuses) == 0 {
		cfg.PaidStatuses = []string{"completed"}
	}

	logger = logger.With().Str("component", "webhook").Logger()

	s := &Server{
		cfg:          cfg,
		orders:       handler,
		pool:         NewPool(cfg.Workers, cfg.QueueSize, logger),
		paidStatuses: make(map[string]struct{}, len(cfg.PaidStatuses)),
		logger:       logger,
	}
	for _, status := range cfg.PaidStatuses {
		s.paidStatuses[strings.TrimPrefix(strings.ToLower(strings.TrimSpace(status)), "wc-")] = struct{}{}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger))
	router.Use(recovery(logger))

	router.GET("/healthz", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	router.POST("/webhooks/woocommerce", s.handleWooCommerce)

	s.router = router
	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address until Stop is called
func (s *Server) Start() error {
	s.logger.Info().Str("listen", s.cfg.Listen).Msg("Starting webhook server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

// Stop shuts the HTTP server down and drains the worker pool
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down webhook server")

	shutdownErr := s.server.Shutdown(ctx)
	if err := s.pool.Stop(ctx); err != nil {
		return fmt.Errorf("failed to drain worker pool: %w", err)
	}
	return shutdownErr
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) isPaid(status string) bool {
	_, ok := s.paidStatuses[strings.ToLower(status)]
	return ok
}
