package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"fleettrack/internal/bus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	subscribeDepth = 64
)

// Hub upgrades HTTP requests to websockets and relays every event published
// on the bus to each connected client. Clients are read-only consumers;
// inbound messages are drained solely to service control frames.
type Hub struct {
	events   *bus.Bus
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHub(events *bus.Bus, logger *slog.Logger) *Hub {
	return &Hub{
		events: events,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "remoteAddr", r.RemoteAddr, "error", err)
		return
	}
	h.logger.Info("websocket client connected", "remoteAddr", r.RemoteAddr)

	events, cancel := h.events.Subscribe(subscribeDepth)
	done := make(chan struct{})

	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
		_ = conn.Close()
		h.logger.Info("websocket client disconnected", "remoteAddr", r.RemoteAddr)
	}()

	for {
		select {
		case envelope, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(envelope); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
