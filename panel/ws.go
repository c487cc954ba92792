package panel

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"slotboard/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

// Hub fans rendered panels out to websocket subscribers, keyed by panel
// id. Implements Surface.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string][]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string][]*websocket.Conn)}
}

// HandleWS subscribes a client to live updates for one panel.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	panelID := ps.ByName("panelid")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	h.subscribers[panelID] = append(h.subscribers[panelID], conn)
	h.mu.Unlock()

	for {
		// This keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Clean up on disconnect
	h.mu.Lock()
	conns := h.subscribers[panelID]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	h.subscribers[panelID] = newList
	h.mu.Unlock()

	conn.Close()
}

// Push broadcasts the rendered view to every subscriber of the panel.
// Dead connections are dropped from the list.
func (h *Hub) Push(ctx context.Context, panel models.Panel, view models.ViewModel) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.subscribers[panel.PanelID]
	newList := conns[:0]
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}
	h.subscribers[panel.PanelID] = newList
	return nil
}
