package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"code.tierpay.io/referral/core/notifications"
	"code.tierpay.io/referral/core/types"
	"code.tierpay.io/referral/logging"
	"code.tierpay.io/referral/metrics"

	"github.com/gorilla/websocket"
)

// Hub keeps the websocket connections of every account, each account has
// its own room. It is the sink of the notifications subscriber.
type Hub struct {
	log *logging.Logger
	cfg WebsocketConfig

	mu    sync.RWMutex
	rooms map[types.AccountID]map[*wsClient]struct{}
}

type wsClient struct {
	hub     *Hub
	conn    *websocket.Conn
	account types.AccountID
	send    chan []byte
	once    sync.Once
	done    chan struct{}
}

func NewHub(log *logging.Logger, cfg WebsocketConfig) *Hub {
	return &Hub{
		log:   log.Named("hub"),
		cfg:   cfg,
		rooms: map[types.AccountID]map[*wsClient]struct{}{},
	}
}

// Publish sends the notification to every connection of the recipient. A
// recipient without connections is not an error, a connection that cannot
// keep up is dropped and reported.
func (h *Hub) Publish(_ context.Context, recipient types.AccountID, n notifications.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrNotificationDeliveryFailure, err)
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.rooms[recipient]))
	for c := range h.rooms[recipient] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	dropped := 0
	for _, c := range clients {
		select {
		case c.send <- payload:
		case <-c.done:
		default:
			dropped++
			c.close()
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%w: dropped %d slow connection(s)", types.ErrNotificationDeliveryFailure, dropped)
	}
	return nil
}

// Connections returns how many connections the account has open.
func (h *Hub) Connections(account types.AccountID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[account])
}

func (h *Hub) join(c *wsClient) {
	h.mu.Lock()
	room, ok := h.rooms[c.account]
	if !ok {
		room = map[*wsClient]struct{}{}
		h.rooms[c.account] = room
	}
	room[c] = struct{}{}
	h.mu.Unlock()
	metrics.WebsocketConnectionsAdd(1)
}

func (h *Hub) leave(c *wsClient) {
	h.mu.Lock()
	room, ok := h.rooms[c.account]
	if ok {
		if _, ok = room[c]; ok {
			delete(room, c)
		}
		if len(room) == 0 {
			delete(h.rooms, c.account)
		}
	}
	h.mu.Unlock()
	if ok {
		metrics.WebsocketConnectionsAdd(-1)
	}
}

// serve runs the connection until the peer goes away or ctx is done.
func (h *Hub) serve(ctx context.Context, conn *websocket.Conn, account types.AccountID) {
	c := &wsClient{
		hub:     h,
		conn:    conn,
		account: account,
		send:    make(chan []byte, h.cfg.SendBuffer),
		done:    make(chan struct{}),
	}
	h.join(c)
	h.log.Debug("websocket connected", logging.AccountID(account.String()))

	go c.writeLoop(ctx)
	c.readLoop()
}

func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.hub.leave(c)
		c.conn.Close()
	})
}

// readLoop only drains control frames, clients never send anything useful.
func (c *wsClient) readLoop() {
	defer c.close()

	pongWait := 2 * c.hub.cfg.PingInterval.Duration
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug("websocket read failed",
					logging.AccountID(c.account.String()),
					logging.Error(err),
				)
			}
			return
		}
	}
}

func (c *wsClient) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(c.hub.cfg.PingInterval.Duration)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	writeTimeout := c.hub.cfg.WriteTimeout.Duration
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeTimeout))
			return
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
