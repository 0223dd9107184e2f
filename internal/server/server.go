// Package server exposes the orchestrator to a browser front-end as JSON
// over HTTP. It owns no state of its own.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"numerologyx/internal/config"
	"numerologyx/internal/logging"
	"numerologyx/internal/session"
	"numerologyx/internal/types"
)

// Orchestrator is the session surface served over HTTP.
type Orchestrator interface {
	State() session.State
	Calculate(ctx context.Context, id types.Identity) (*types.CoreReport, error)
	RequestPredictions(ctx context.Context, year int) (*types.PredictionsReport, error)
	RequestSpatialHarmonyReport(ctx context.Context) (*types.SpatialHarmonyReport, error)
	RequestRemediesReport(ctx context.Context) (*types.RemediesReport, error)
	DailyPulse(ctx context.Context) (*types.DailyPulse, error)
	SendMessage(ctx context.Context, text string) (types.ChatMessage, error)
	TranslateReport(ctx context.Context, kind types.ReportKind, code string) (session.Displayed, error)
	DisplayedReport(kind types.ReportKind) (session.Displayed, error)
	Navigate(view types.View) error
	Reset(ctx context.Context) error
}

// Server is the HTTP adapter.
type Server struct {
	orch   Orchestrator
	cfg    config.ServerConfig
	engine *gin.Engine
	now    func() time.Time
}

// New builds the router.
func New(orch Orchestrator, cfg config.ServerConfig) *Server {
	s := &Server{orch: orch, cfg: cfg, now: time.Now}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", s.health)
	api := router.Group("/api")
	{
		api.GET("/state", s.getState)
		api.POST("/calculate", s.calculate)
		api.POST("/predictions", s.predictions)
		api.GET("/vastu", s.vastu)
		api.GET("/remedies", s.remedies)
		api.GET("/daily-pulse", s.dailyPulse)
		api.POST("/chat", s.chat)
		api.POST("/translate", s.translate)
		api.GET("/display/:kind", s.display)
		api.GET("/export/:kind", s.export)
		api.POST("/view", s.navigate)
		api.POST("/reset", s.reset)
	}
	s.engine = router
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on cfg.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Server("Listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logging.Server("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.ServerDebug("%s %s -> %d (%s)", c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
		if c.Writer.Status() >= http.StatusInternalServerError {
			logging.ServerError("%s %s failed with %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
		}
	}
}
