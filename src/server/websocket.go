package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/elee1766/grubguide/src/aisdk"
	"github.com/elee1766/grubguide/src/chat"
	"github.com/elee1766/grubguide/src/grubagent"
)

const (
	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
)

// handleWebSocket upgrades the connection and serves one chat session on
// it. The session history lives in this goroutine; a frame that carries
// chatHistory replaces it, and one that is not an array clears it.
func (s *Server) handleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("failed to upgrade websocket", "error", err)
		return nil
	}

	sessionID := "sess_" + uuid.New().String()[:8]
	logger := s.logger.With("session_id", sessionID)
	logger.Info("websocket session started")

	s.track(ws)
	defer func() {
		s.untrack(ws)
		ws.Close()
		logger.Info("websocket session ended")
	}()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(ws, done)

	ctx := c.Request().Context()
	var history []aisdk.Turn
	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			return nil
		}

		var reply string
		var req chat.Request
		if err := json.Unmarshal(message, &req); err != nil {
			logger.Warn("invalid websocket frame", "error", err)
			reply = grubagent.ApologyMessage
		} else {
			if req.ChatHistory != nil {
				history = chat.DecodeHistory(req.ChatHistory)
			}
			history, reply = s.chat.Converse(ctx, history, req.UserMessage)
		}

		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(chat.Response{BotResponse: reply}); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return nil
		}
	}
}

// pingLoop keeps the connection alive. WriteControl may run concurrently
// with the session's writes.
func pingLoop(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Server) track(ws *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[ws] = struct{}{}
}

func (s *Server) untrack(ws *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, ws)
}

// SessionCount returns the number of open WebSocket sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ws := range s.conns {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		ws.Close()
	}
}
