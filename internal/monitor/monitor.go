package monitor

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/ledtheatre/sink"
)

// Hub streams brightness changes of a sink to websocket clients.
type Hub struct {
	mu        sync.RWMutex
	out       *sink.Sink
	clients   map[*websocket.Conn]bool
	changes   uint64
	startTime time.Time
	driver    string
}

type snapshot struct {
	Type     string    `json:"type"`
	Driver   string    `json:"driver"`
	PullUp   bool      `json:"pull_up"`
	Channels []float64 `json:"channels"`
}

type change struct {
	Type string `json:"type"`
	ID   uint64 `json:"id"`
	sink.Change
}

// New attaches a Hub to out. driver is only reported to clients.
func New(out *sink.Sink, driver string) *Hub {
	h := &Hub{
		out:       out,
		clients:   map[*websocket.Conn]bool{},
		startTime: time.Now(),
		driver:    driver,
	}
	out.OnChange(h.Publish)
	return h
}

// Routes registers the websocket and health endpoints on mux.
func (h *Hub) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleWS)
	mux.HandleFunc("/health", h.HandleHealth)
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	h.sendSnapshot(conn)
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"changes":   h.changes,
		"uptime_s":  time.Since(h.startTime).Seconds(),
		"channels":  h.out.Channels(),
		"simulated": h.out.Simulated(),
		"clients":   len(h.clients),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Publish sends c to every client. It is registered as a sink observer.
func (h *Hub) Publish(c sink.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.changes++
	b, _ := json.Marshal(change{Type: "change", ID: h.changes, Change: c})
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write change")
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
}

// sendSnapshot must be called with h.mu held.
func (h *Hub) sendSnapshot(conn *websocket.Conn) {
	b, _ := json.Marshal(snapshot{
		Type:     "snapshot",
		Driver:   h.driver,
		PullUp:   h.out.PullUp(),
		Channels: h.out.Snapshot(),
	})
	conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}
