package kds

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/events"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/services"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, r.URL.Query().Get("role"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, hub *Hub, role string) *websocket.Conn {
	t.Helper()
	before := hub.ClientCount(role)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?role=" + role
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount(role) == before+1 }, time.Second, 10*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestBroadcastReachesKitchenDisplays(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := newTestServer(t, hub)
	kitchen := dial(t, srv, hub, RoleKitchen)

	err := hub.Broadcast(models.KitchenMessage{
		ID:     "msg-1",
		Type:   models.KitchenMessageNewOrder,
		Ticket: models.KitchenTicket{OrderID: 1000, Items: []string{"2x Burger"}},
	})
	require.NoError(t, err)

	msg := readMessage(t, kitchen)
	assert.Equal(t, EventNewOrder, msg.Event)
	data := msg.Data.(map[string]interface{})
	assert.Equal(t, "msg-1", data["id"])
}

func TestBroadcastWithoutDisplaysSucceeds(t *testing.T) {
	hub := NewHub()
	assert.NoError(t, hub.Broadcast(models.KitchenMessage{Type: models.KitchenMessageNewOrder}))
}

func TestRelayGoesToPOSOnly(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := newTestServer(t, hub)
	pos := dial(t, srv, hub, RolePOS)
	kitchen := dial(t, srv, hub, RoleKitchen)

	bus := events.NewEventManager()
	hub.Attach(bus)
	bus.PublishEvent(events.KitchenBusyStateChanged{Busy: true, QueueLength: 6, Threshold: 5})
	hub.BroadcastQueueStatus(services.KitchenQueueStatus{QueueLength: 6, IsBusy: true})

	first := readMessage(t, pos)
	assert.Equal(t, events.TopicKitchenBusyStateChanged, first.Event)
	assert.Equal(t, EventQueueStatus, readMessage(t, pos).Event)

	// kitchen displays only see the queue snapshot
	assert.Equal(t, EventQueueStatus, readMessage(t, kitchen).Event)
}

func TestDetachStopsRelay(t *testing.T) {
	hub := NewHub()
	bus := events.NewEventManager()

	hub.Attach(bus)
	assert.Equal(t, 1, bus.SubscriberCount(events.TopicPaymentCompleted))

	hub.Detach()
	assert.Zero(t, bus.SubscriberCount(events.TopicPaymentCompleted))
}

func TestCloseDropsClients(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)
	dial(t, srv, hub, RoleKitchen)
	dial(t, srv, hub, RolePOS)
	assert.Equal(t, 2, hub.ClientCount(""))

	hub.Close()

	assert.Zero(t, hub.ClientCount(""))
}
