package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/atlasprompt/internal/logger"
	"github.com/ppiankov/atlasprompt/internal/model"
	"github.com/ppiankov/atlasprompt/internal/pipeline"
	"github.com/ppiankov/atlasprompt/internal/worker"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server serves the prompt form, the rendered map and the JSON API
type Server struct {
	pipeline *pipeline.Pipeline
	config   model.ServerConfig
	log      *logger.Logger
	limiter  *worker.Limiter
	engine   *gin.Engine
}

// New creates a server and registers its routes
func New(cfg model.ServerConfig, p *pipeline.Pipeline, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		pipeline: p,
		config:   cfg,
		log:      log.With("component", "server"),
		limiter:  worker.NewLimiter(cfg.RateLimit, cfg.RateBurst),
		engine:   gin.New(),
	}

	// Rate limiting keys on ClientIP, so forwarded headers count only from known proxies
	if err := s.engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s.engine.SetHTMLTemplate(tmpl)
	s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

func (s *Server) routes() {
	s.engine.Use(gin.Recovery())
	s.engine.Use(RequestID())
	s.engine.Use(RequestLogger(s.log))
	s.engine.Use(CORS(s.config.CORSOrigins))

	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/download-json", s.handleDownload)

	// Routes that reach a paid collaborator are rate limited per client
	limited := s.engine.Group("/", RateLimit(s.limiter))
	limited.POST("/get-coordinates", s.handleExtract)
	limited.GET("/map.png", s.handleMap)

	api := s.engine.Group("/api")
	api.GET("/places", s.handlePlaces)
	api.GET("/render-request", s.handleRenderRequest)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweepLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweepLimiter forgets idle clients so the limiter map stays bounded
func (s *Server) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.limiter.Sweep(10 * time.Minute); removed > 0 {
				s.log.Debug("rate limiter swept", "clients", removed)
			}
		}
	}
}
