package kds

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// Client roles
const (
	RoleKitchen = "kitchen"
	RolePOS     = "pos"
)

// Event types
const (
	EventNewOrder     = models.KitchenMessageNewOrder
	EventStatusUpdate = models.KitchenMessageStatusUpdate
	EventQueueStatus  = "queue_status"
)

const (
	defaultSendBuffer = 32
	writeWait         = 5 * time.Second
)

// relayedTopics are pushed to POS terminals as they happen.
var relayedTopics = []string{
	events.TopicOrderCreated,
	events.TopicOrderModified,
	events.TopicOrderStatusChanged,
	events.TopicOrderCompleted,
	events.TopicOrderCancelled,
	events.TopicKitchenStatusChanged,
	events.TopicKitchenBusyStateChanged,
	events.TopicPaymentCompleted,
	events.TopicPaymentFailed,
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Client is one websocket connection. Writes go through a buffered channel
// drained by its own goroutine so a broadcast never waits on the network.
type Client struct {
	conn *websocket.Conn
	role string
	send chan []byte
}

func (c *Client) Role() string { return c.role }

// Hub holds every connected kitchen display and POS terminal.
type Hub struct {
	clients    map[*Client]struct{}
	mutex      sync.Mutex
	sendBuffer int

	bus     *events.EventManager
	handles []events.Handle
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		sendBuffer: defaultSendBuffer,
	}
}

// RegisterClient adds conn under role and starts its writer.
func (h *Hub) RegisterClient(conn *websocket.Conn, role string) *Client {
	c := &Client{conn: conn, role: role, send: make(chan []byte, h.sendBuffer)}

	h.mutex.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mutex.Unlock()

	go h.writePump(c)
	utils.InfoLogger.WithField("role", role).Infof("KDS client connected (%d total)", total)
	return c
}

// UnregisterClient is safe to call more than once.
func (h *Hub) UnregisterClient(c *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.mutex.Unlock()

	c.conn.Close()
	utils.InfoLogger.WithField("role", c.role).Info("KDS client disconnected")
}

// Serve registers conn and blocks reading until the peer goes away.
func (h *Hub) Serve(conn *websocket.Conn, role string) {
	c := h.RegisterClient(conn, role)
	defer h.UnregisterClient(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) ClientCount(role string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if role == "" {
		return len(h.clients)
	}
	n := 0
	for c := range h.clients {
		if c.role == role {
			n++
		}
	}
	return n
}

// Broadcast sends a ticket message to kitchen displays. Having no display
// connected is not an error.
func (h *Hub) Broadcast(msg models.KitchenMessage) error {
	return h.send(Message{Event: msg.Type, Data: msg}, RoleKitchen)
}

// BroadcastQueueStatus pushes a queue snapshot to every client.
func (h *Hub) BroadcastQueueStatus(status services.KitchenQueueStatus) {
	if err := h.send(Message{Event: EventQueueStatus, Data: status}); err != nil {
		utils.ErrorLogger.Errorf("Error broadcasting queue status: %v", err)
	}
}

// Attach relays order, kitchen and payment events to POS terminals.
func (h *Hub) Attach(bus *events.EventManager) {
	h.Detach()
	h.bus = bus
	for _, topic := range relayedTopics {
		h.handles = append(h.handles, bus.Subscribe(topic, h.relay))
	}
}

func (h *Hub) Detach() {
	if h.bus == nil {
		return
	}
	for _, handle := range h.handles {
		h.bus.Unsubscribe(handle)
	}
	h.handles = nil
	h.bus = nil
}

// Close drops every client.
func (h *Hub) Close() {
	h.Detach()

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mutex.Unlock()

	for _, c := range clients {
		h.UnregisterClient(c)
	}
}

func (h *Hub) relay(ev events.Event) error {
	return h.send(Message{Event: ev.Topic(), Data: ev}, RolePOS)
}

// send queues msg for clients in roles (all clients when roles is empty).
// A client whose buffer is full is dropped.
func (h *Hub) send(msg Message, roles ...string) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var slow []*Client
	h.mutex.Lock()
	for c := range h.clients {
		if !hasRole(roles, c.role) {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mutex.Unlock()

	for _, c := range slow {
		utils.ErrorLogger.WithField("role", c.role).Warn("KDS client too slow, disconnecting")
		h.UnregisterClient(c)
	}
	return nil
}

func (h *Hub) writePump(c *Client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithField("role", c.role).Errorf("Error sending message to client: %v", err)
			go h.UnregisterClient(c)
			// keep draining until UnregisterClient closes the channel
			for range c.send {
			}
			return
		}
	}
}

func hasRole(roles []string, role string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
