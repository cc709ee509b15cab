package signaling

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rahulraut1220/LegalEase/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ErrUnknownConnection is returned for operations on a closed connection.
var ErrUnknownConnection = errors.New("unknown connection")

// Handler receives the frames read from hub connections.
type Handler interface {
	Dispatch(ctx context.Context, connID string, frame []byte)
	Disconnect(ctx context.Context, connID string)
}

type HubConfig struct {
	MaxMessageBytes   int64
	MessagesPerSecond int
	SendQueue         int
	AllowedOrigins    []string
}

// Hub is a WebSocket Transport. Each connection has one read loop and one
// write loop; sends go through a bounded queue.
type Hub struct {
	cfg      HubConfig
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*conn
	rooms map[string][]string
}

type conn struct {
	id      string
	ws      *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter
	rooms   map[string]struct{}
}

func (c *conn) close() {
	c.once.Do(func() { close(c.done) })
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.SendQueue <= 0 {
		cfg.SendQueue = 32
	}
	h := &Hub{
		cfg:   cfg,
		conns: make(map[string]*conn),
		rooms: make(map[string][]string),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.cfg.AllowedOrigins, origin)
}

// HandleWS upgrades the request and serves the connection until it closes.
func (h *Hub) HandleWS(handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn(r.Context(), "websocket upgrade failed", "error", err)
			return
		}

		c := h.register(ws)
		ctx := r.Context()
		logger.Debug(ctx, "signaling connection opened", "conn_id", c.id, "remote", r.RemoteAddr)

		go h.writeLoop(c)
		h.readLoop(ctx, c, handler)

		h.unregister(c)
		handler.Disconnect(ctx, c.id)
	}
}

func (h *Hub) register(ws *websocket.Conn) *conn {
	c := &conn{
		id:    uuid.New().String(),
		ws:    ws,
		send:  make(chan []byte, h.cfg.SendQueue),
		done:  make(chan struct{}),
		rooms: make(map[string]struct{}),
	}
	if h.cfg.MessagesPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(h.cfg.MessagesPerSecond), h.cfg.MessagesPerSecond*2)
	}

	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c *conn) {
	h.mu.Lock()
	delete(h.conns, c.id)
	for room := range c.rooms {
		members := slices.DeleteFunc(h.rooms[room], func(id string) bool { return id == c.id })
		if len(members) == 0 {
			delete(h.rooms, room)
		} else {
			h.rooms[room] = members
		}
	}
	h.mu.Unlock()

	c.close()
}

func (h *Hub) readLoop(ctx context.Context, c *conn, handler Handler) {
	defer c.ws.Close()

	if h.cfg.MaxMessageBytes > 0 {
		c.ws.SetReadLimit(h.cfg.MaxMessageBytes)
	}
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Debug(ctx, "signaling read failed", "conn_id", c.id, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if c.limiter != nil && !c.limiter.Allow() {
			logger.Warn(ctx, "signaling rate limit exceeded, frame dropped", "conn_id", c.id)
			continue
		}
		handler.Dispatch(ctx, c.id, frame)
	}
}

func (h *Hub) writeLoop(c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.ws.Close()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.ws.Close()
				return
			}
		case <-c.done:
			_ = c.ws.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (h *Hub) Join(connID, room string, capacity int) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return nil, ErrUnknownConnection
	}
	members := h.rooms[room]
	if slices.Contains(members, connID) {
		return slices.Clone(members), nil
	}
	if capacity > 0 && len(members) >= capacity {
		return nil, ErrRoomFull
	}

	members = append(members, connID)
	h.rooms[room] = members
	c.rooms[room] = struct{}{}
	return slices.Clone(members), nil
}

func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.rooms[room])
}

func (h *Hub) Send(connID string, frame []byte) bool {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case c.send <- frame:
		return true
	default:
		logger.Warn(context.Background(), "signaling send queue full, frame dropped", "conn_id", connID)
		return false
	}
}

// Len returns the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close sends a close frame to every connection.
func (h *Hub) Close() {
	h.mu.RLock()
	conns := make([]*conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.close()
	}
}
