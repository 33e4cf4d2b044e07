package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MonitorEvent notifies UI clients that a record was produced or a
// collection changed, so views can refresh without polling.
type MonitorEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Kind string `json:"kind,omitempty"`
}

// MonitorHub fans MonitorEvents out to connected WebSocket clients and
// in-process listeners.
type MonitorHub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	wmu      sync.Mutex

	lmu       sync.RWMutex
	listeners map[chan MonitorEvent]struct{}
}

func NewMonitorHub() *MonitorHub {
	return &MonitorHub{
		clients:   make(map[*websocket.Conn]struct{}),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		listeners: make(map[chan MonitorEvent]struct{}),
	}
}

func (h *MonitorHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	_ = c.SetReadDeadline(time.Time{})
	for {
		// keepalive reads to detect client close
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.Close()
}

func (h *MonitorHub) Broadcast(ev MonitorEvent) {
	data, _ := json.Marshal(ev)
	// snapshot clients to avoid holding the read lock during writes
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	// serialize writes to prevent concurrent writes to the same conn
	h.wmu.Lock()
	for _, c := range clients {
		_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		_ = c.WriteMessage(websocket.TextMessage, data)
	}
	h.wmu.Unlock()
	// sends stay under the lock so Unsubscribe cannot close a channel
	// between the snapshot and the send
	h.lmu.RLock()
	for ch := range h.listeners {
		select {
		case ch <- ev:
		default: // drop if slow
		}
	}
	h.lmu.RUnlock()
}

// Subscribe returns a channel receiving monitor events. Caller must Unsubscribe.
func (h *MonitorHub) Subscribe() chan MonitorEvent {
	ch := make(chan MonitorEvent, 256)
	h.lmu.Lock()
	h.listeners[ch] = struct{}{}
	h.lmu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel.
func (h *MonitorHub) Unsubscribe(ch chan MonitorEvent) {
	h.lmu.Lock()
	if _, ok := h.listeners[ch]; ok {
		delete(h.listeners, ch)
		close(ch)
	}
	h.lmu.Unlock()
}

// handleMonitorEvents streams monitor events to one client as server-sent
// events, for UIs that cannot hold a WebSocket.
func (d *Deps) handleMonitorEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "response writer cannot stream", nil)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ch := d.Monitor.Subscribe()
	defer d.Monitor.Unsubscribe(ch)
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-ch:
			if !open {
				return
			}
			data, _ := json.Marshal(ev)
			_, _ = w.Write([]byte("data: "))
			_, _ = w.Write(data)
			_, _ = w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
