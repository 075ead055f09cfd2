package rabbitmq

import (
	"log/slog"

	"coursehub/pkg/bus"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Transport implements bus.Transport on one channel using direct reply-to.
// Requests and the reply consumer must share the channel for RabbitMQ to
// route replies back.
type Transport struct {
	Publisher
	ch      *amqp.Channel
	replies chan bus.Message
}

// NewTransport opens a channel, declares the exchange and starts collecting
// replies and returned requests.
func NewTransport(conn *Connection) (*Transport, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := declareExchange(ch); err != nil {
		ch.Close()
		return nil, err
	}

	deliveries, err := ch.Consume(
		directReplyTo,
		"",
		true,  // auto-ack is mandatory for direct reply-to
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, err
	}
	returns := ch.NotifyReturn(make(chan amqp.Return, 16))

	t := &Transport{
		Publisher: Publisher{channel: ch},
		ch:        ch,
		replies:   make(chan bus.Message, 64),
	}
	go t.collect(deliveries, returns)
	return t, nil
}

func (t *Transport) Replies() <-chan bus.Message {
	return t.replies
}

// Close closes the channel; pending requests fail with bus.ErrClosed.
func (t *Transport) Close() error {
	return t.ch.Close()
}

func (t *Transport) collect(deliveries <-chan amqp.Delivery, returns <-chan amqp.Return) {
	defer close(t.replies)
	for deliveries != nil || returns != nil {
		select {
		case d, ok := <-deliveries:
			if !ok {
				deliveries = nil
				continue
			}
			t.replies <- toMessage(d)
		case r, ok := <-returns:
			if !ok {
				returns = nil
				continue
			}
			slog.Warn("request returned by broker",
				slog.String("routing_key", r.RoutingKey),
				slog.String("reply_text", r.ReplyText),
				slog.String("request_id", r.CorrelationId))
			t.replies <- bus.Message{RoutingKey: r.RoutingKey, CorrelationID: r.CorrelationId, Returned: true}
		}
	}
}
