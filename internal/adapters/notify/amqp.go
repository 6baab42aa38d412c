package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/phenrril/sheetstore/internal/domain"
)

const RoutingOrderSubmitted = "order.submitted"

type Event struct {
	Pattern     string       `json:"pattern"`
	Data        domain.Order `json:"data"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// channel es la parte de *amqp.Channel que usa el Publisher.
type channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher avisa por RabbitMQ cada pedido aceptado por el webhook.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  channel
	exchange string
	now      func() time.Time
}

var _ domain.OrderNotifier = (*Publisher)(nil)

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return newPublisher(conn, ch, exchange), nil
}

func newPublisher(conn *amqp.Connection, ch channel, exchange string) *Publisher {
	return &Publisher{conn: conn, channel: ch, exchange: exchange, now: time.Now}
}

func (p *Publisher) OrderSubmitted(ctx context.Context, o domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	at := p.now().UTC()
	body, err := encodeEvent(o, at)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(p.exchange, RoutingOrderSubmitted, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    at,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	log.Debug().Str("exchange", p.exchange).Str("item", o.Item).Msg("order.submitted publicado")
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

func encodeEvent(o domain.Order, at time.Time) ([]byte, error) {
	b, err := json.Marshal(Event{Pattern: RoutingOrderSubmitted, Data: o, SubmittedAt: at})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	return b, nil
}
