package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is a topic-exchange publisher for post-checkout events. Delivery
// is at-least-once; consumers must tolerate duplicates.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// TicketMailer enqueues the post-confirmation ticket email job. Failures are
// the caller's to log, never to fail checkout on.
type TicketMailer struct {
	pub *Publisher
}

func NewTicketMailer(pub *Publisher) *TicketMailer {
	return &TicketMailer{pub: pub}
}

func (m *TicketMailer) EnqueueTicketEmail(ctx context.Context, orderID int64, recipient string) error {
	if m == nil || m.pub == nil {
		return nil
	}
	return m.pub.PublishJSON(ctx, "order.confirmed", map[string]any{
		"order_id":  orderID,
		"recipient": recipient,
	})
}
