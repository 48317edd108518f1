package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-pos/models"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	published  []published
	declareErr error
	publishErr error
	gate       chan struct{}
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange, key, msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newOrderMessage(orderID int) models.KitchenMessage {
	return models.KitchenMessage{
		ID:     "msg-1",
		Type:   models.KitchenMessageNewOrder,
		Ticket: models.KitchenTicket{OrderID: orderID, Items: []string{"1x Soda"}},
		SentAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewPublisherDeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, 4)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, []string{"kitchen_topic:topic"}, ch.declared)
}

func TestNewPublisherDeclareFailure(t *testing.T) {
	_, err := NewPublisher(&fakeChannel{declareErr: errors.New("access refused")}, 4)
	assert.ErrorContains(t, err, "access refused")
}

func TestBroadcastPublishesJSON(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, 4)
	require.NoError(t, err)

	require.NoError(t, p.Broadcast(newOrderMessage(1000)))
	require.NoError(t, p.Close())

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, Exchange, got.exchange)
	assert.Equal(t, "kitchen.new_order.1000", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, "msg-1", got.msg.MessageId)

	var decoded models.KitchenMessage
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, 1000, decoded.Ticket.OrderID)
	assert.True(t, ch.closed)
}

func TestBroadcastNeverBlocks(t *testing.T) {
	ch := &fakeChannel{gate: make(chan struct{})}
	p, err := NewPublisher(ch, 1)
	require.NoError(t, err)

	// one message held by the stalled publish, one in the buffer
	require.NoError(t, p.Broadcast(newOrderMessage(1)))
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Broadcast(newOrderMessage(2)))

	assert.ErrorIs(t, p.Broadcast(newOrderMessage(3)), ErrQueueFull)

	close(ch.gate)
	require.NoError(t, p.Close())
	assert.Len(t, ch.published, 2)
}

func TestPublishErrorsAreNotFatal(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := NewPublisher(ch, 4)
	require.NoError(t, err)

	assert.NoError(t, p.Broadcast(newOrderMessage(1)))
	assert.NoError(t, p.Close())
}

func TestBroadcastAfterClose(t *testing.T) {
	p, err := NewPublisher(&fakeChannel{}, 4)
	require.NoError(t, err)
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Broadcast(newOrderMessage(1)), ErrClosed)
	assert.NoError(t, p.Close())
}
