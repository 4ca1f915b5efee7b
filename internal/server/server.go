package server

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/connhub/console/internal/api/http"
	"github.com/connhub/console/internal/api/middleware"
	"github.com/connhub/console/internal/api/ws"
	"github.com/connhub/console/internal/config"
	"github.com/connhub/console/internal/installed"
	"github.com/connhub/console/internal/logging"
	"github.com/connhub/console/internal/monitoring"
	"github.com/connhub/console/internal/store"
	"github.com/connhub/console/internal/storeinfo"
	"github.com/connhub/console/internal/viewstate"
)

// Server wraps the HTTP server and dependencies.
type Server struct {
	router     *gin.Engine
	registry   *installed.Registry
	mirror     *store.Mirror
	hub        *storeinfo.Hub
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
	cancelSub  func()
	background context.CancelFunc
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing ConnHub console service",
		zap.String("port", cfg.Server.Port),
		zap.String("store_url", cfg.Store.BaseURL),
		zap.String("modules_dir", cfg.Modules.Dir),
	)

	metrics := monitoring.NewMetrics()

	// Installed-module registry
	registry := installed.NewRegistry(cfg.Modules.Dir, logger)
	if err := registry.Rescan(); err != nil {
		logger.Warn("Installed module scan failed", zap.Error(err))
	}
	metrics.InstalledModules.Set(float64(registry.Count()))
	logger.Info("Installed modules scanned", zap.Int("modules", registry.Count()))

	// Store catalog mirror
	client := store.NewClient(store.ClientConfig{
		BaseURL: cfg.Store.BaseURL,
		Timeout: cfg.Store.RequestTimeout,
	})
	mirror := store.NewMirror(client, logger).WithMetrics(metrics)

	// First refresh is best-effort: the console starts with installed
	// modules only until the store is reachable.
	if err := mirror.Refresh(context.Background()); err != nil {
		logger.Warn("Initial store catalog refresh failed", zap.Error(err))
	}

	// View flag store
	viewState := viewstate.New(cfg.Data.Dir, logger)
	viewState.RegisterDefaults("connections", map[string]bool{
		"show_installed": true,
		"show_available": true,
	})

	// Store info subscription hub, re-pushed on every catalog refresh
	hub := storeinfo.NewHub(mirror, logger)
	backgroundCtx, cancelBackground := context.WithCancel(context.Background())
	cancelSub := mirror.Subscribe(func() {
		hub.NotifyAll(backgroundCtx)
	})

	// Background refresh loop
	go mirror.Run(backgroundCtx, cfg.Store.RefreshInterval)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := http.NewHandlers(registry, mirror, viewState, logger)
	wsHandler := ws.NewHandler(hub, logger).WithMetrics(metrics)

	// Register routes
	router.GET("/health", handlers.Health)

	// Product list
	router.GET("/products", handlers.Products)
	router.GET("/products/:moduleID", handlers.ModuleProducts)

	// Store catalog
	router.GET("/store", handlers.StoreStatus)
	router.POST("/store/refresh", handlers.RefreshStore)

	// View flags
	router.GET("/view-state/:key", handlers.ViewState)
	router.PUT("/view-state/:key/:flag", handlers.SetViewFlag)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:     router,
		registry:   registry,
		mirror:     mirror,
		hub:        hub,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
		cancelSub:  cancelSub,
		background: cancelBackground,
	}, nil
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.cancelSub()
	s.background()

	s.logger.Sync()
	return nil
}
