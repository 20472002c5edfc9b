package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/vulnmap/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header)
		if origin == "" {
			return true
		}

		allowedOrigins := []string{
			"http://localhost:8080",
			"http://127.0.0.1:8080",
			"http://[::1]:8080",
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				return true
			}
		}

		log.Printf("WebSocket: Rejected origin: %s", origin)
		return false
	},
}

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager pushes periodic store snapshots to connected dashboards.
type WSManager struct {
	Vulns   ports.VulnerabilityRepository
	Runs    ports.RunRepository
	Clients map[*websocket.Conn]*domain.User
	mu      sync.Mutex
}

func NewWSManager(vulns ports.VulnerabilityRepository, runs ports.RunRepository) *WSManager {
	return &WSManager{
		Vulns:   vulns,
		Runs:    runs,
		Clients: make(map[*websocket.Conn]*domain.User),
	}
}

func (m *WSManager) Start(ctx context.Context) {
	go m.processAndBroadcast(ctx)
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Extract user from context (set by AuthMiddleware)
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.Clients[conn] = user
	m.mu.Unlock()

	log.Printf("WebSocket connected: user=%s, role=%s", user.Username, user.Role)

	// Clean up on disconnect
	go func() {
		defer conn.Close()
		defer func() {
			m.mu.Lock()
			delete(m.Clients, conn)
			m.mu.Unlock()
			log.Printf("WebSocket disconnected: user=%s", user.Username)
		}()
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (m *WSManager) processAndBroadcast(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.broadcastSnapshot(ctx)
		}
	}
}

func (m *WSManager) broadcastSnapshot(ctx context.Context) {
	m.mu.Lock()
	connected := len(m.Clients)
	m.mu.Unlock()
	if connected == 0 {
		return
	}

	stats, err := m.Vulns.Stats(ctx)
	if err != nil {
		log.Println("Error getting stats:", err)
		return
	}

	payload := map[string]any{"stats": stats}

	runs, err := m.Runs.ListRuns(ctx, 1)
	if err == nil && len(runs) > 0 {
		payload["last_run"] = runs[0]
	}

	m.broadcastMessage(WSMessage{Type: "snapshot", Payload: payload})
}

// BroadcastRun notifies clients that a loader run finished.
func (m *WSManager) BroadcastRun(run domain.IngestRun) {
	m.broadcastMessage(WSMessage{Type: "run", Payload: run})
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.Clients {
		if err := conn.WriteJSON(msg); err != nil {
			conn.Close()
			delete(m.Clients, conn)
		}
	}
}
