package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/weldkit/weld/internal/logging"
)

const writeTimeout = 5 * time.Second

// reloadHub tracks connected browsers and broadcasts reload messages
type reloadHub struct {
	mutex   sync.RWMutex
	clients map[*websocket.Conn]struct{}
	logger  logging.Logger
}

func newReloadHub(logger logging.Logger) *reloadHub {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &reloadHub{
		clients: make(map[*websocket.Conn]struct{}),
		logger:  logger.WithComponent("websocket"),
	}
}

// handleWebSocket upgrades the connection and parks it in the hub until
// the client disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	s.hub.add(conn)
	defer s.hub.remove(conn)

	// Clients never send meaningful data; reading keeps the connection
	// alive and detects disconnects.
	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}

func (h *reloadHub) add(conn *websocket.Conn) {
	h.mutex.Lock()
	h.clients[conn] = struct{}{}
	h.mutex.Unlock()

	h.logger.Debug(context.Background(), "client connected", "clients", h.Count())
}

func (h *reloadHub) remove(conn *websocket.Conn) {
	h.mutex.Lock()
	delete(h.clients, conn)
	h.mutex.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
}

// Broadcast sends a text message to every connected client. Slow or dead
// clients are dropped.
func (h *reloadHub) Broadcast(message string) {
	h.mutex.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mutex.RUnlock()

	for _, conn := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := conn.Write(ctx, websocket.MessageText, []byte(message))
		cancel()
		if err != nil {
			h.remove(conn)
		}
	}
}

// Count returns the number of connected clients
func (h *reloadHub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// CloseAll disconnects every client, used during shutdown
func (h *reloadHub) CloseAll() {
	h.mutex.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]struct{})
	h.mutex.Unlock()

	for _, conn := range conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
