package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/divvy/internal/ledger"
)

const publishTimeout = 5 * time.Second

//go:generate mockgen -source=publisher.go -destination=publisher_mock.go -package=event
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends expense events to a durable direct exchange.
type Publisher struct {
	conn       *amqp091.Connection
	channel    Channel
	exchange   string
	routingKey string
}

// Dial connects to the broker at url and declares the exchange.
func Dial(url, exchange, routingKey string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	p, err := NewPublisher(ch, exchange, routingKey)
	if err != nil {
		conn.Close()
		return nil, err
	}

	p.conn = conn

	return p, nil
}

// NewPublisher declares the exchange on an already open channel.
func NewPublisher(ch Channel, exchange, routingKey string) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp091.ExchangeDirect, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declaring exchange: %w", err)
	}

	return &Publisher{channel: ch, exchange: exchange, routingKey: routingKey}, nil
}

func (p *Publisher) PublishExpenseCreated(ctx context.Context, e ledger.Expense) error {
	body, err := NewExpenseCreated(e).ToJSON()
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    e.CreatedAt,
		MessageId:    e.ID.String(),
		Type:         p.routingKey,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing message: %w", err)
	}

	slog.DebugContext(ctx, "published expense event", "expense_id", e.ID, "exchange", p.exchange)

	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}

	if p.conn != nil {
		return p.conn.Close()
	}

	return nil
}
