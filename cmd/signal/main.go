package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"livecast/internal/core/services"
	httphandlers "livecast/internal/handlers/http"
	"livecast/internal/infrastructure/middleware"
	"livecast/internal/infrastructure/monitoring"
	"livecast/internal/infrastructure/repositories"
	signalws "livecast/internal/infrastructure/signal"
	"livecast/pkg/config"
	"livecast/pkg/logger"
	"livecast/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer zapLogger.Sync()
	sugar := zapLogger.Sugar()

	// Tracing
	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		sugar.Fatalw("failed to initialize tracing", "error", err)
	}

	// Metrics
	collector := monitoring.NewCollector(prometheus.DefaultRegisterer)

	// Repositories (memory, or Redis when configured)
	factory, err := repositories.NewRepositoryFactory(cfg, sugar)
	if err != nil {
		sugar.Fatalw("failed to create repository factory", "error", err)
	}
	defer factory.Close()

	registry := factory.CreateConnectionRegistry()
	rooms := factory.CreateRoomDirectory()

	// Transport hub and core services
	hub := signalws.NewHub(cfg.Signal.WriteTimeout, sugar)
	coordinator := services.NewCoordinatorService(registry, rooms, hub, collector, sugar)
	router := services.NewRouterService(hub, collector, sugar)
	broadcaster := services.NewBroadcastService(rooms, hub, collector, sugar)

	wsServer := signalws.NewWebSocketServer(
		hub,
		coordinator,
		router,
		broadcaster,
		collector,
		iceServersFromConfig(cfg),
		sugar,
	)
	wsServer.SetPingInterval(cfg.Signal.PingInterval)
	wsServer.SetReadTimeout(cfg.Signal.PongTimeout)
	wsServer.SetWriteTimeout(cfg.Signal.WriteTimeout)

	// Health checks
	health := monitoring.NewHealthChecker()
	health.AddCheck("repositories", factory.HealthCheck, cfg.Signal.WriteTimeout)

	// HTTP routes
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.TracingMiddleware())
	engine.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	engine.GET("/ws", middleware.NewWSConnectionLimitMiddleware(cfg), func(c *gin.Context) {
		wsServer.HandleWebSocket(c.Writer, c.Request)
	})

	engine.GET("/health", func(c *gin.Context) {
		status := health.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":      status.Status,
			"timestamp":   status.Timestamp.Unix(),
			"checks":      status.Checks,
			"connections": hub.Count(),
		})
	})

	if cfg.Monitoring.PrometheusEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	roomHandler := httphandlers.NewRoomHandler(coordinator)
	roomHandler.SetupRoutes(engine)

	server := &http.Server{
		Addr:    cfg.Signal.Address,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		sugar.Infow("starting livecast signaling server", "address", cfg.Signal.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	sugar.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Signal.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("graceful shutdown failed", "error", err)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("tracer shutdown failed", "error", err)
	}
}

// iceServersFromConfig converts the configured ICE servers into the shape
// clients consume in the connected event.
func iceServersFromConfig(cfg *config.Config) []webrtc.ICEServer {
	servers := make([]webrtc.ICEServer, 0, len(cfg.WebRTC.ICEServers))
	for _, srv := range cfg.WebRTC.ICEServers {
		ice := webrtc.ICEServer{URLs: srv.URLs}
		if srv.Username != "" {
			ice.Username = srv.Username
			ice.Credential = srv.Credential
		}
		servers = append(servers, ice)
	}
	return servers
}
