package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/HunterLewis000/newspaper-app/internal/bus"
)

const redisChannel = "newspaper:events"

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		// Basic same-origin check; good enough for a newsroom LAN.
		host := strings.TrimSpace(r.Host)
		return strings.Contains(origin, "://"+host)
	},
}

// Hub fans broadcast events out to every connected client, the originating
// client included. Per-connection write order is preserved; there is no
// cross-connection ordering guarantee. An optional redis bridge joins
// multiple server instances into one logical bus.
type Hub struct {
	mu      sync.Mutex
	clients map[*hubClient]struct{}

	instance string
	rdb      *redis.Client
}

type hubClient struct {
	ws   *websocket.Conn
	send chan []byte
}

// relayFrame wraps an envelope for the redis bridge; Instance lets each
// server skip its own publications when they come back around.
type relayFrame struct {
	Instance string       `json:"instance"`
	Env      bus.Envelope `json:"env"`
}

func NewHub(rdb *redis.Client) *Hub {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return &Hub{
		clients:  map[*hubClient]struct{}{},
		instance: hex.EncodeToString(buf),
		rdb:      rdb,
	}
}

// Run consumes the redis bridge until ctx is done. No-op without redis.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		return
	}
	sub := h.rdb.Subscribe(ctx, redisChannel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var frame relayFrame
			if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
				continue
			}
			if frame.Instance == h.instance {
				continue
			}
			if data, err := json.Marshal(frame.Env); err == nil {
				h.fanout(data)
			}
		}
	}
}

// Broadcast delivers env to every local client and, when bridged, to the
// other server instances.
func (h *Hub) Broadcast(env bus.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	h.fanout(data)

	if h.rdb != nil {
		frame, err := json.Marshal(relayFrame{Instance: h.instance, Env: env})
		if err != nil {
			return
		}
		if err := h.rdb.Publish(context.Background(), redisChannel, frame).Err(); err != nil {
			log.Printf("hub: redis publish: %v", err)
		}
	}
}

func (h *Hub) fanout(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Slow client: drop the connection rather than block the bus.
			close(c.send)
			delete(h.clients, c)
		}
	}
}

// HandleWS upgrades the connection and joins the client to the bus. Any
// envelope a client publishes is fanned out to all clients, the sender
// included; senders rely on idempotent application to see their own events
// as no-ops.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "websocket upgrade failed", http.StatusBadRequest)
		return
	}

	c := &hubClient{ws: ws, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *hubClient) {
	defer h.drop(c)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var env bus.Envelope
		if err := json.Unmarshal(data, &env); err != nil || strings.TrimSpace(env.Event) == "" {
			continue
		}
		h.Broadcast(env)
	}
}

func (h *Hub) writePump(c *hubClient) {
	for data := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
			return
		}
	}
	_ = c.ws.Close()
}

func (h *Hub) drop(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.ws.Close()
}

// ClientCount reports the number of attached local clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
