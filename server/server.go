// Package server is the web front end: a form that takes an uploaded or
// pasted configuration and answers with the spreadsheet as a download.
package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"kastelo.dev/cfgxlsx/excel"
	"kastelo.dev/cfgxlsx/history"
)

// Store is the part of the history store the server uses.
type Store interface {
	Record(ctx context.Context, rec history.Record) error
	Recent(ctx context.Context, limit int) ([]history.Record, error)
}

type Config struct {
	Options excel.Options
	// History is optional.
	History Store
	// MaxUpload limits request bodies, in echo's BodyLimit notation ("10M").
	MaxUpload string
	Logger    zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	Echo *echo.Echo

	opts    excel.Options
	history Store
	log     zerolog.Logger
	now     func() time.Time
}

func New(cfg Config) *Server {
	s := &Server{
		Echo:    echo.New(),
		opts:    cfg.Options,
		history: cfg.History,
		log:     cfg.Logger,
		now:     cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.registerMiddlewares(cfg.MaxUpload)
	s.registerRoutes()
	return s
}

func (s *Server) registerMiddlewares(maxUpload string) {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.log.Info()
			if v.Error != nil {
				ev = s.log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))
	if maxUpload == "" {
		maxUpload = "10M"
	}
	s.Echo.Use(middleware.BodyLimit(maxUpload))
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.IndexHandler)
	s.Echo.POST("/convert", s.ConvertHandler)
	s.Echo.GET("/history", s.HistoryHandler)
	s.Echo.GET("/healthz", s.HealthHandler)
}

func (s *Server) Start(addr string) error {
	s.log.Info().Str("addr", addr).Msg("listening")
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
