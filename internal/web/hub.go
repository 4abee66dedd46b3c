// Package web serves the controller's HTTP surface: status and control
// endpoints, a websocket event stream, and Prometheus metrics.
package web

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openclaw/clawevolve/controller/internal/runlog"
)

// #region message

// Message is one websocket frame pushed to dashboard clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
	Time int64  `json:"time"`
}

// #endregion message

// #region hub

// Hub fans controller events out to connected websocket clients. It
// implements the orchestrator event sink, so every emitted event reaches
// every dashboard as it happens.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan Message
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	upgrader websocket.Upgrader
}

// NewHub creates a hub and starts its dispatch loop.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	go h.run()
	return h
}

// Emit queues an event for broadcast. Never blocks: when the channel is
// full the frame is dropped rather than stalling the control loop.
func (h *Hub) Emit(ev runlog.Event) {
	msg := Message{Type: ev.Type, Data: ev, Time: time.Now().Unix()}
	select {
	case h.broadcast <- msg:
	default:
	}
}

// HandleWS upgrades the connection and keeps it registered until the
// client goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WEB] websocket upgrade: %v", err)
		return
	}

	h.register <- ws
	defer func() {
		h.unregister <- ws
		ws.Close()
	}()

	ws.WriteJSON(Message{Type: "status", Data: map[string]any{"connected": true}, Time: time.Now().Unix()})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				// Write errors mean the client is gone; its reader
				// goroutine handles the unregister.
				_ = client.WriteJSON(msg)
			}
			h.mu.RUnlock()
		}
	}
}

// #endregion hub
