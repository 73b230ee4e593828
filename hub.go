/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	maxMessageSize = 4096
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBuffer     = 64
	writeWait      = 10 * time.Second
)

type Client struct {
	id      string
	conn    *websocket.Conn
	send    chan Event
	isAdmin bool
}

type action struct {
	client *Client
	msg    ClientMessage
}

// Hub owns the live connections and feeds their actions to the room one
// at a time. Each action's deliveries are queued before the next action
// is read.
type Hub struct {
	cfg     *Config
	room    *Room
	metrics *metrics

	clients map[string]*Client

	register chan *Client
	unreg    chan *Client
	actions  chan action
	done     chan struct{}

	mu sync.RWMutex
}

func newHub(cfg *Config, room *Room, m *metrics) *Hub {
	return &Hub{
		cfg:      cfg,
		room:     room,
		metrics:  m,
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		actions:  make(chan action),
		done:     make(chan struct{}),
	}
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()

			h.metrics.connections.Inc()
			logf(h.cfg, "GAMES: Connection %s opened", c.id)

		case c := <-h.unreg:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()

			h.metrics.connections.Dec()
			logf(h.cfg, "GAMES: Connection %s closed", c.id)

			h.dispatch(h.room.Disconnect(c.id))
			h.refreshRoles()

		case a := <-h.actions:
			h.handleAction(a)
		}
	}
}

func (h *Hub) handleAction(a action) {
	id := a.client.id

	var out []Delivery

	switch a.msg.Type {
	case actionJoin:
		var data JoinData
		if err := decodeData(a.msg.Data, &data); err != nil {
			logf(h.cfg, "GAMES: Bad %s payload from %s: %v", a.msg.Type, id, err)
			return
		}
		out = h.room.Join(id, data.Name)

	case actionStartRound, actionNextRound:
		var data RoundData
		if err := decodeData(a.msg.Data, &data); err != nil {
			logf(h.cfg, "GAMES: Bad %s payload from %s: %v", a.msg.Type, id, err)
			return
		}
		round := Round(data)
		if a.msg.Type == actionStartRound {
			out = h.room.StartRound(id, round)
		} else {
			out = h.room.NextRound(id, round)
		}

	case actionSubmitGuess:
		var data GuessData
		if err := decodeData(a.msg.Data, &data); err != nil {
			logf(h.cfg, "GAMES: Bad %s payload from %s: %v", a.msg.Type, id, err)
			return
		}
		out = h.room.SubmitGuess(id, data.Guess)

	case actionResetGame:
		out = h.room.ResetGame(id)

	case actionHardReset:
		out = h.room.HardReset(id)

	default:
		return
	}

	h.metrics.actions.WithLabelValues(a.msg.Type).Inc()

	h.dispatch(out)
	h.refreshRoles()
}

func (h *Hub) dispatch(out []Delivery) {
	for _, d := range out {
		if d.To == "" {
			h.broadcastAll(d.Event)
			continue
		}
		h.sendTo(d.To, d.Event)
	}
}

// sendTo queues ev for a single connection. Unknown ids are ignored.
func (h *Hub) sendTo(id string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[id]
	if !ok {
		return
	}
	h.deliverLocked(c, ev)
}

func (h *Hub) broadcastAll(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		h.deliverLocked(c, ev)
	}
}

// deliverLocked drops clients that cannot keep up. Their socket closes,
// and the read pump then unregisters them.
func (h *Hub) deliverLocked(c *Client, ev Event) {
	select {
	case c.send <- ev:
	default:
		delete(h.clients, c.id)
		close(c.send)
		h.metrics.dropped.Inc()
		logf(h.cfg, "GAMES: Dropped slow connection %s", c.id)
	}
}

func (h *Hub) refreshRoles() {
	h.mu.Lock()
	defer h.mu.Unlock()

	admins := 0
	for _, c := range h.clients {
		c.isAdmin = h.room.IsAdmin(c.id)
		if c.isAdmin {
			admins++
		}
	}
	h.metrics.admins.Set(float64(admins))
}

// count returns the number of live connections.
func (h *Hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		close(c.send)
		_ = c.conn.Close()
		delete(h.clients, id)
	}
}

func (h *Hub) enqueueRegister(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) enqueueUnregister(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.done:
	}
}

func (h *Hub) enqueueAction(a action) bool {
	select {
	case h.actions <- a:
		return true
	case <-h.done:
		return false
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func serveWS(cfg *Config, h *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: Websocket upgrade for %s failed: %v", realIP(r), err)
			return
		}

		client := &Client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan Event, sendBuffer),
		}

		if !h.enqueueRegister(client) {
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(h)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.enqueueUnregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logf(h.cfg, "GAMES: Ignoring malformed message from %s: %v", c.id, err)
			continue
		}

		if !h.enqueueAction(action{client: c, msg: msg}) {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
