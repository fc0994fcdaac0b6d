// Package server exposes the chat over HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/chat"
	"github.com/elee1766/grubguide/src/grubagent"
)

const (
	defaultAddr            = "127.0.0.1:8080"
	defaultBodyLimit       = "64K"
	defaultShutdownTimeout = 10 * time.Second
)

// Chatter answers chat messages. chat.Service implements it.
type Chatter interface {
	Send(ctx context.Context, req chat.Request) chat.Response
	Converse(ctx context.Context, history []aisdk.Turn, message string) ([]aisdk.Turn, string)
}

// Config configures the HTTP server.
type Config struct {
	Addr string
	// AllowedOrigins applies to CORS and WebSocket upgrades. Empty or "*"
	// allows any origin.
	AllowedOrigins  []string
	BodyLimit       string
	ShutdownTimeout time.Duration
	Version         string
	Logger          *slog.Logger
}

// Server is the HTTP server.
type Server struct {
	echo     *echo.Echo
	chat     Chatter
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// New creates the server and registers its routes.
func New(cfg Config, chatter Chatter) (*Server, error) {
	if chatter == nil {
		return nil, errors.New("chat service is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.BodyLimit == "" {
		cfg.BodyLimit = defaultBodyLimit
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = chatErrorHandler(e)

	s := &Server{
		echo:   e,
		chat:   chatter,
		cfg:    cfg,
		logger: cfg.Logger.With("component", "server"),
		conns:  make(map[*websocket.Conn]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(requestLogger(s.logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins(cfg.AllowedOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	s.RegisterRoutes(e)
	return s, nil
}

// RegisterRoutes registers the chat and health routes.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.handleHealth)

	api := e.Group("/api/chat")
	api.POST("", s.handleChat)
	api.GET("/greeting", s.handleGreeting)
	api.GET("/ws", s.handleWebSocket)
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.cfg.Addr
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- s.echo.Start(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops accepting requests, closes open WebSocket sessions and
// waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	s.closeSessions()
	if err := s.echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// chatErrorHandler keeps error bodies on the chat endpoint in the
// {botResponse} shape, so a rejected body still reads as an apology.
func chatErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed || c.Path() != "/api/chat" {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}
		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		_ = c.JSON(code, chat.Response{BotResponse: grubagent.ApologyMessage})
	}
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range allowedOrigins(s.cfg.AllowedOrigins) {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Debug("request", attrs...)
			return nil
		},
	})
}
