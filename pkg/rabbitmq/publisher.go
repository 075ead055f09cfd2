package rabbitmq

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"coursehub/pkg/bus"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "events"

	// directReplyTo is RabbitMQ's pseudo-queue for RPC replies.
	directReplyTo = "amq.rabbitmq.reply-to"

	faultHeader = "x-fault"
)

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher publishes messages to the events exchange.
type Publisher struct {
	mu      sync.Mutex
	channel amqpPublisher
}

func declareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

// Publish sends msg to the exchange under its routing key. Requests are
// published mandatory so an unbound event type comes back as a return.
func (p *Publisher) Publish(ctx context.Context, msg bus.Message) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.DebugContext(ctx, "publishing message",
		slog.String("routing_key", msg.RoutingKey),
		slog.String("request_id", msg.CorrelationID),
		slog.Bool("expect_reply", msg.ExpectReply))

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx, ExchangeName, msg.RoutingKey, msg.ExpectReply, false, toPublishing(msg))
}

// reply publishes a reply straight to the requester's reply address.
func (p *Publisher) reply(ctx context.Context, msg bus.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx, "", msg.RoutingKey, false, false, toPublishing(msg))
}

func toPublishing(msg bus.Message) amqp.Publishing {
	pub := amqp.Publishing{
		ContentType:   "application/cloudevents+json",
		CorrelationId: msg.CorrelationID,
		Body:          msg.Body,
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now(),
	}
	if msg.ExpectReply {
		pub.ReplyTo = directReplyTo
		pub.DeliveryMode = amqp.Transient
		if msg.TTL > 0 {
			pub.Expiration = strconv.FormatInt(max(msg.TTL.Milliseconds(), 1), 10)
		}
	}
	if msg.Fault != "" {
		pub.Headers = amqp.Table{faultHeader: msg.Fault}
	}
	return pub
}

func toMessage(d amqp.Delivery) bus.Message {
	msg := bus.Message{
		RoutingKey:    d.RoutingKey,
		CorrelationID: d.CorrelationId,
		ReplyTo:       d.ReplyTo,
		ExpectReply:   d.ReplyTo != "",
		Body:          d.Body,
	}
	if fault, ok := d.Headers[faultHeader].(string); ok {
		msg.Fault = fault
	}
	return msg
}
