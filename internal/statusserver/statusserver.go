// Package statusserver exposes a small read-only HTTP surface alongside the
// pipeline: a liveness check, a JSON status snapshot, and a WebSocket
// stream of tick-phase events for a live-tailing operator tool.
package statusserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/watchgit/fwgp/internal/logger"
)

// Snapshot is the payload served at GET /status.
type Snapshot struct {
	RepoRoot        string   `json:"repo_root"`
	Remote          string   `json:"remote"`
	Branch          string   `json:"branch"`
	LoadedPlugins   []string `json:"loaded_plugins"`
	DisabledPlugins []string `json:"disabled_plugins"`
	TickCount       int64    `json:"tick_count"`
	LastTickAt      string   `json:"last_tick_at"`
}

// StatusProvider supplies the current Snapshot on demand.
type StatusProvider func() Snapshot

// Server is the gin + WebSocket hub status surface.
type Server struct {
	addr     string
	provider StatusProvider
	hub      *hub
	srv      *http.Server
}

// New builds a Server bound to addr (e.g. ":8099"). provider is called on
// every GET /status request.
func New(addr string, provider StatusProvider) *Server {
	s := &Server{addr: addr, provider: provider, hub: newHub()}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.provider())
	})
	router.GET("/events", func(c *gin.Context) {
		s.hub.serveClient(c.Writer, c.Request)
	})

	s.srv = &http.Server{Addr: addr, Handler: router}
	return s
}

// OnTickEvent implements pipeline.TickObserver, broadcasting every phase
// transition to connected WebSocket clients.
func (s *Server) OnTickEvent(tickID, phase string, detail map[string]any) {
	s.hub.broadcastJSON(map[string]any{
		"tick":   tickID,
		"phase":  phase,
		"detail": detail,
		"at":     time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Start runs the hub loop and HTTP server; it blocks until the server
// stops. Callers typically run it in its own goroutine.
func (s *Server) Start() error {
	go s.hub.run()
	logger.Status().Info().Str("addr", s.addr).Msg("status server listening")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// hub is a minimal register/unregister/broadcast WebSocket fan-out.
type hub struct {
	mu        sync.RWMutex
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	register  chan *websocket.Conn
	unregister chan *websocket.Conn
}

func newHub() *hub {
	return &hub{
		clients:    map[*websocket.Conn]bool{},
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					go func(c *websocket.Conn) { h.unregister <- c }(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *hub) broadcastJSON(v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- raw:
	default:
		logger.Status().Warn().Msg("dropping tick event, broadcast channel full")
	}
}

func (h *hub) serveClient(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Status().Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.register <- conn
	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
