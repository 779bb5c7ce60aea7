// Package overlay publishes the engine's status line and per-object
// snapshots to browser overlay pages over WebSocket. It is a one-way
// broadcast surface: clients connect, receive a frame of JSON per engine
// frame, and render it however they like.
package overlay

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/signalsfoundry/ar-anchor/core"
	"github.com/signalsfoundry/ar-anchor/internal/logging"
)

// StatusFrame is one broadcast message.
type StatusFrame struct {
	Frame     int                   `json:"frame"`
	Timestamp time.Time             `json:"timestamp"`
	Mode      string                `json:"mode"`
	Status    string                `json:"status,omitempty"`
	Objects   []core.ObjectSnapshot `json:"objects,omitempty"`
}

// Server accepts overlay WebSocket connections and broadcasts status
// frames to every connected client. It also doubles as the engine's
// StatusSink so the placement controller's messages reach the overlay.
type Server struct {
	log      logging.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	status  string
}

// NewServer creates an overlay server.
func NewServer(log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// PublishStatus implements core.StatusSink: the text is attached to every
// subsequent broadcast until replaced. An empty string clears it.
func (s *Server) PublishStatus(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = text
}

// Status returns the current status line.
func (s *Server) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// ServeHTTP upgrades the connection and keeps it registered until the
// client goes away. Inbound messages are drained and ignored; the overlay
// surface is write-only.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "overlay upgrade failed", logging.String("error", err.Error()))
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			return
		}
	}
}

// Broadcast sends one status frame to every connected client. Clients that
// fail to write are dropped.
func (s *Server) Broadcast(frame StatusFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frame.Status = s.status
	payload, err := json.Marshal(frame)
	if err != nil {
		s.log.Error(context.Background(), "overlay frame marshal failed", logging.String("error", err.Error()))
		return
	}

	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.log.Warn(context.Background(), "overlay client dropped", logging.String("error", err.Error()))
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// ClientCount returns the number of connected overlay clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
