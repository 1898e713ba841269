package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Message types.
const (
	MessageDriverStatusUpdate = "driver_status_update"
	MessageJoinDriverRoom     = "join_driver_room"
	MessageLeaveDriverRoom    = "leave_driver_room"
	MessageJoinDriverFeed     = "join_driver_feed"
	MessageLeaveDriverFeed    = "leave_driver_feed"
	MessageError              = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketMessage is the envelope for every frame in both directions.
type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DriverRoom names the room that receives one driver's status updates.
func DriverRoom(driverID uuid.UUID) string {
	return "driver:" + driverID.String()
}

// Client is one websocket connection. Rooms and feed membership are guarded
// by the hub mutex.
type Client struct {
	UserID uuid.UUID
	Role   models.Role
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub

	rooms map[string]bool
	feed  bool
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, role models.Role) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
		Hub:    hub,
		rooms:  make(map[string]bool),
	}
}

// Hub tracks connected clients and routes status updates to them. Every
// client starts on the all-drivers feed.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	log        logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves register and unregister requests until ctx is done, then drops
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.add(client)
			h.log.Debug("websocket client connected", logger.String("user_id", client.UserID.String()))

		case client := <-h.unregister:
			h.remove(client)
			h.log.Debug("websocket client disconnected", logger.String("user_id", client.UserID.String()))

		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			return
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	c.feed = true
	h.clients[c] = true
}

func (h *Hub) remove(c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
}

func (h *Hub) Join(c *Client, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	c.rooms[room] = true
}

func (h *Hub) Leave(c *Client, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(c.rooms, room)
}

func (h *Hub) SetFeed(c *Client, on bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	c.feed = on
}

// GetConnectedClients returns the number of connected clients.
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// PublishStatus delivers the update to feed subscribers and to members of
// the driver's room. Slow clients with a full buffer are skipped.
func (h *Hub) PublishStatus(_ context.Context, update DriverStatusUpdate) error {
	data, err := json.Marshal(WebSocketMessage{Type: MessageDriverStatusUpdate, Data: update})
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}

	room := DriverRoom(update.DriverID)

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.clients {
		if !client.feed && !client.rooms[room] {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.log.Warning("websocket send buffer full, dropping update",
				logger.String("user_id", client.UserID.String()))
		}
	}
	return nil
}

// HandleWebSocket upgrades the request and starts the client pumps.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uuid.UUID, role models.Role) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warning("websocket upgrade failed", logger.Error(err))
		return
	}

	client := newClient(hub, conn, userID, role)
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warning("websocket read error", logger.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.log.Warning("websocket write error", logger.Error(err))
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage applies one subscription command from the client.
func (c *Client) handleMessage(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reply(MessageError, "invalid message")
		return
	}

	switch msg.Type {
	case MessageJoinDriverRoom, MessageLeaveDriverRoom:
		driverID, err := parseDriverID(msg.Data)
		if err != nil {
			c.reply(MessageError, "invalid driver id")
			return
		}
		if msg.Type == MessageJoinDriverRoom {
			c.Hub.Join(c, DriverRoom(driverID))
		} else {
			c.Hub.Leave(c, DriverRoom(driverID))
		}
	case MessageJoinDriverFeed:
		c.Hub.SetFeed(c, true)
	case MessageLeaveDriverFeed:
		c.Hub.SetFeed(c, false)
	default:
		c.reply(MessageError, "unknown message type")
	}
}

// parseDriverID accepts either a bare id string or {"driver_id": "..."}.
func parseDriverID(data json.RawMessage) (uuid.UUID, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return uuid.Parse(strings.TrimSpace(s))
	}
	var obj struct {
		DriverID string `json:"driver_id"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(strings.TrimSpace(obj.DriverID))
}

func (c *Client) reply(msgType string, data interface{}) {
	payload, err := json.Marshal(WebSocketMessage{Type: msgType, Data: data})
	if err != nil {
		return
	}

	// Send is closed once the hub drops the client.
	c.Hub.mutex.RLock()
	defer c.Hub.mutex.RUnlock()
	if !c.Hub.clients[c] {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}
