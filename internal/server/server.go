// Package server exposes the text store and the AI gateway over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/lasi/internal/config"
	"github.com/abhisek/lasi/internal/gateway"
	"github.com/abhisek/lasi/internal/logger"
	"github.com/abhisek/lasi/internal/textstore"
)

// Server is the HTTP API.
type Server struct {
	cfg     config.ServerConfig
	texts   *textstore.Service
	gw      *gateway.Gateway
	log     *logger.Logger
	version string
	engine  *gin.Engine
}

// New builds the server and its routes.
func New(cfg config.ServerConfig, texts *textstore.Service, gw *gateway.Gateway, log *logger.Logger, version string) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{cfg: cfg, texts: texts, gw: gw, log: log, version: version}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.log))
	r.Use(cors.New(corsConfig(s.cfg.AllowedOrigins)))

	r.GET("/healthz", s.health)

	base := strings.TrimRight(s.cfg.BasePath, "/")
	api := r.Group(base)
	api.Use(Throttle(s.cfg.RateLimitPerMinute, s.cfg.RateBurst))
	{
		if base != "" {
			api.GET("/healthz", s.health)
		}
		api.GET("/texts", s.listTexts)
		api.GET("/texts/:name/parts", s.textParts)
		api.POST("/texts", s.uploadText)
		api.DELETE("/texts/:name", s.deleteText)
		api.POST("/texts/preview", s.previewText)

		qa := api.Group("/qa")
		qa.POST("/simplify", s.simplify)
		qa.POST("/format", s.format)
		qa.POST("/questions", s.questions)
		qa.POST("/questions/batch", s.questionsBatch)
		qa.POST("/evaluate", s.evaluate)
		qa.POST("/audio", s.audio)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowWildcard = true
	return cfg
}

// Run serves until ctx is cancelled, then drains in-flight requests for
// up to the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.cfg.Addr, "base_path", s.cfg.BasePath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
