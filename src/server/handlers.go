package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elee1766/grubguide/src/chat"
	"github.com/elee1766/grubguide/src/grubagent"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: s.cfg.Version,
	})
}

// handleChat answers POST /api/chat. The body is always a chat.Response.
func (s *Server) handleChat(c echo.Context) error {
	var req chat.Request
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid chat request", "error", err)
		return c.JSON(http.StatusBadRequest, chat.Response{BotResponse: grubagent.ApologyMessage})
	}

	resp := s.chat.Send(c.Request().Context(), req)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGreeting(c echo.Context) error {
	return c.JSON(http.StatusOK, chat.Response{BotResponse: grubagent.GreetingMessage})
}
