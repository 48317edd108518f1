package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

const (
	Exchange = "kitchen_topic"

	DefaultQueueSize = 64
	publishTimeout   = 5 * time.Second
)

var (
	ErrQueueFull = errors.New("kitchen publish queue full")
	ErrClosed    = errors.New("kitchen publisher closed")
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type envelope struct {
	key string
	msg amqp.Publishing
}

// Publisher sends kitchen messages to a topic exchange. Broadcast only
// enqueues; a single goroutine does the network I/O.
type Publisher struct {
	ch   Channel
	conn io.Closer

	mu     sync.Mutex
	closed bool
	queue  chan envelope
	done   chan struct{}
}

// Dial connects to url and declares the kitchen exchange.
func Dial(url string, queueSize int) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	p, err := NewPublisher(ch, queueSize)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewPublisher(ch Channel, queueSize int) (*Publisher, error) {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", Exchange, err)
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	p := &Publisher{
		ch:    ch,
		queue: make(chan envelope, queueSize),
		done:  make(chan struct{}),
	}
	go p.run()
	return p, nil
}

// RoutingKey is kitchen.<message type>.<order id>.
func RoutingKey(msg models.KitchenMessage) string {
	return fmt.Sprintf("kitchen.%s.%d", msg.Type, msg.Ticket.OrderID)
}

func (p *Publisher) Broadcast(msg models.KitchenMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	env := envelope{
		key: RoutingKey(msg),
		msg: amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Type:         msg.Type,
			Timestamp:    msg.SentAt,
			Body:         body,
		},
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- env:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close flushes queued messages and closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done

	var errs []error
	if err := p.ch.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close rabbitmq channel: %w", err))
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) run() {
	defer close(p.done)
	for env := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := p.ch.PublishWithContext(ctx, Exchange, env.key, false, false, env.msg)
		cancel()
		if err != nil {
			utils.ErrorLogger.WithField("routing_key", env.key).Errorf("Failed to publish kitchen message: %v", err)
			continue
		}
		utils.InfoLogger.WithField("routing_key", env.key).Debug("Kitchen message published")
	}
}
