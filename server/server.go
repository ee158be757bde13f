package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"agent-hub/cache"
	"agent-hub/confs"
	"agent-hub/db"
	"agent-hub/entities"
	"agent-hub/handlers"
	httpHandler "agent-hub/handlers/http"
	"agent-hub/observability"
	"agent-hub/repositories"
	"agent-hub/services"
	"agent-hub/usecases"
	"agent-hub/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Server struct {
	app      *gin.Engine
	cfg      *confs.Config
	log      zerolog.Logger
	archiver *services.MetricsArchiver
}

// NewServer wires the stores, usecases and routes. database may be nil, in
// which case metrics are only kept in memory.
func NewServer(cfg *confs.Config, log zerolog.Logger, database db.Database) *Server {
	app := gin.New()
	app.Use(gin.Recovery(), observability.RequestLogger(log))

	// Setup CORS middleware
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	app.Use(cors.New(corsCfg))

	// Initialize stores
	agentRepo := repositories.NewAgentMemRepository()
	queueRepo := repositories.NewCommandQueueMemRepository()
	resultRepo := repositories.NewResultMemRepository(time.Now)
	history := cache.NewMetricsCache(cfg.MetricsHistorySize)

	observability.Init(observability.Gauges{
		QueuedCommands:   queueRepo.Depth,
		RegisteredAgents: agentRepo.Count,
	})

	// Real-time hub
	hub := ws.NewManager(log.With().Str("component", "hub").Logger())

	// Initialize use cases
	agentsUC := usecases.NewAgentsUseCase(agentRepo, hub, log, cfg.OnlineWindowMinutes)
	dispatchUC := usecases.NewDispatchUseCase(queueRepo, resultRepo, hub, log)
	telemetryUC := usecases.NewTelemetryUseCase(agentsUC, usecases.TelemetryStores{
		Metrics:  repositories.NewSnapshotMemRepository[entities.SystemMetrics](),
		Ports:    repositories.NewSnapshotMemRepository[[]any](),
		Software: repositories.NewSnapshotMemRepository[entities.InstalledSoftwareData](),
		History:  history,
	}, hub, log)

	var archiver *services.MetricsArchiver
	if database != nil {
		archiver = services.NewMetricsArchiver(history, repositories.NewMetricsArchivePgRepository(database), cfg.ArchiveInterval, log)
	}

	// Initialize handlers
	cmdHandler := httpHandler.NewCommandHandler(dispatchUC)
	agentHandler := httpHandler.NewAgentHandler(agentsUC, telemetryUC)
	telemetryHandler := httpHandler.NewTelemetryHandler(telemetryUC)
	hubHandler := handlers.NewHubHandler(hub, log)
	cacheHandler := handlers.NewCacheHandler(history, archiver)

	app.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	app.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := app.Group("/api")
	{
		command := api.Group("/Command")
		{
			command.POST("", cmdHandler.Queue)
			command.POST("/queue", cmdHandler.Queue)
			command.GET("/pending/:agentId", cmdHandler.Pending)
			command.GET("/:commandId", cmdHandler.Status)
			command.POST("/result", cmdHandler.Result)
		}

		agent := api.Group("/Agent")
		{
			agent.POST("/register", agentHandler.Register)
			agent.POST("/heartbeat", agentHandler.Heartbeat)
		}

		admin := api.Group("/Admin/agents")
		{
			admin.GET("", agentHandler.List)
			admin.GET("/:agentId", agentHandler.Get)
			admin.GET("/:agentId/metrics", agentHandler.Metrics)
			admin.GET("/:agentId/metrics/aggregated", agentHandler.MetricsSummary)
			admin.GET("/:agentId/metrics/average", agentHandler.MetricsSummary)
			admin.GET("/:agentId/metrics/trend", agentHandler.MetricsTrend)
		}

		api.POST("/Metrics", telemetryHandler.PushMetrics)

		ports := api.Group("/NetworkPort")
		{
			ports.POST("", telemetryHandler.SubmitNetworkPorts)
			ports.GET("/:agentId", telemetryHandler.NetworkPorts)
			ports.GET("/:agentId/latest", telemetryHandler.NetworkPorts)
		}

		software := api.Group("/InstalledSoftware")
		{
			software.POST("", telemetryHandler.SubmitInstalledSoftware)
			software.GET("/:agentId/latest", telemetryHandler.InstalledSoftware)
		}

		cacheGroup := api.Group("/cache")
		{
			cacheGroup.POST("/process", cacheHandler.ProcessCache)
			cacheGroup.GET("/stats", cacheHandler.GetCacheStats)
		}

		api.GET("/hub/subscribers", hubHandler.Subscribers)
	}

	app.GET("/adminHub", hubHandler.Serve)
	app.GET("/agentHub", hubHandler.Serve)

	return &Server{app: app, cfg: cfg, log: log, archiver: archiver}
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	if s.archiver != nil {
		archiverDone := s.archiver.Start(ctx)
		defer func() { <-archiverDone }()
	}
	defer cancel()

	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}
