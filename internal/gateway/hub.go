package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"github.com/taskfolk/tasklistd/internal/events"
)

// hub bridges the event bus to websocket clients. The stream is one-way:
// clients only receive change events for their own identity.
type hub struct {
	mu          sync.RWMutex
	clients     map[*wsClient]struct{}
	unsubscribe func()
}

type wsClient struct {
	owner string
	send  chan []byte
}

func newHub(bus *events.Bus) *hub {
	h := &hub{clients: make(map[*wsClient]struct{})}

	h.unsubscribe = bus.Subscribe(func(e events.Event) {
		data, err := json.Marshal(e)
		if err != nil {
			slog.Error("marshal event", "error", err)
			return
		}
		h.broadcast(e.Owner, data)
	})

	return h
}

// broadcast delivers data to the owner's connected clients. Slow clients
// lose events instead of blocking the bus.
func (h *hub) broadcast(owner string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.owner != owner {
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	slog.Debug("ws client connected", "clients", len(h.clients))
}

func (h *hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		slog.Debug("ws client disconnected", "clients", len(h.clients))
	}
}

// serveWS upgrades the request and streams the caller's events until the
// connection drops. Runs behind the authenticate middleware.
func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Error("ws accept", "error", err)
		return
	}

	client := &wsClient{
		owner: identity(r),
		send:  make(chan []byte, 64),
	}
	h.register(client)
	defer h.unregister(client)
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	for {
		select {
		case data, ok := <-client.send:
			if !ok {
				return
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// close detaches the hub from the bus and drops all clients.
func (h *hub) close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
