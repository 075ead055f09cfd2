package rabbitmq

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coursehub/pkg/bus"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig holds configuration for setting up a consumer.
type ConsumerConfig struct {
	QueueName    string
	DLQName      string
	RoutingKeys  []string
	ConsumerName string
	// Concurrency is the number of deliveries handled at once; it is also
	// the prefetch count. Values below 1 mean 1.
	Concurrency int
}

// SetupConsumer declares the queues and handles fire-and-forget events.
// A handler error nacks the delivery into the DLQ.
func SetupConsumer(ctx context.Context, conn *Connection, cfg ConsumerConfig, handler bus.EventHandler) (*sync.WaitGroup, error) {
	return setup(ctx, conn, cfg, func(ctx context.Context, _ *Publisher, d amqp.Delivery) {
		handleEvent(ctx, cfg.ConsumerName, handler, d)
	})
}

// SetupResponder declares the queues and answers requests. Every request gets
// exactly one reply: the handler's, or a fault reply when it fails.
func SetupResponder(ctx context.Context, conn *Connection, cfg ConsumerConfig, handler bus.RequestHandler) (*sync.WaitGroup, error) {
	return setup(ctx, conn, cfg, func(ctx context.Context, pub *Publisher, d amqp.Delivery) {
		respond(ctx, cfg.ConsumerName, pub, handler, d)
	})
}

func setup(ctx context.Context, conn *Connection, cfg ConsumerConfig, process func(context.Context, *Publisher, amqp.Delivery)) (*sync.WaitGroup, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := declareExchange(ch); err != nil {
		return nil, err
	}

	// Declare DLQ
	_, err = ch.QueueDeclare(
		cfg.DLQName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}

	// Declare main queue with DLQ settings
	args := amqp.Table{
		"x-dead-letter-exchange":    "",          // default exchange
		"x-dead-letter-routing-key": cfg.DLQName, // route to DLQ
	}
	_, err = ch.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		args,
	)
	if err != nil {
		return nil, err
	}

	for _, key := range cfg.RoutingKeys {
		if err := ch.QueueBind(cfg.QueueName, key, ExchangeName, false, nil); err != nil {
			return nil, err
		}
	}

	workers := cfg.Concurrency
	if workers < 1 {
		workers = 1
	}
	if err := ch.Qos(workers, 0, false); err != nil {
		return nil, err
	}

	msgs, err := ch.Consume(
		cfg.QueueName,
		cfg.ConsumerName,
		false, // auto-ack = false (manual ack)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, err
	}

	pub := &Publisher{channel: ch}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range msgs {
				process(ctx, pub, d)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		if err := ch.Cancel(cfg.ConsumerName, false); err != nil {
			slog.Warn("consumer cancel failed", slog.String("consumer", cfg.ConsumerName), slog.Any("error", err))
		}
	}()

	slog.Info("consumer started",
		slog.String("consumer", cfg.ConsumerName),
		slog.String("queue", cfg.QueueName),
		slog.Int("workers", workers))
	return &wg, nil
}

func handleEvent(ctx context.Context, consumer string, handler bus.EventHandler, d amqp.Delivery) {
	slog.InfoContext(ctx, "received message",
		slog.String("consumer", consumer),
		slog.String("routing_key", d.RoutingKey),
		slog.String("request_id", d.CorrelationId))

	if err := handler(ctx, toMessage(d)); err != nil {
		slog.ErrorContext(ctx, "error processing message, nacking to DLQ",
			slog.String("consumer", consumer), slog.Any("error", err))
		_ = d.Nack(false, false) // don't requeue, goes to DLQ
		return
	}
	_ = d.Ack(false)
}

type replier interface {
	reply(ctx context.Context, msg bus.Message) error
}

func respond(ctx context.Context, consumer string, pub replier, handler bus.RequestHandler, d amqp.Delivery) {
	req := toMessage(d)
	logger := slog.With(
		slog.String("consumer", consumer),
		slog.String("routing_key", d.RoutingKey),
		slog.String("request_id", d.CorrelationId))
	logger.InfoContext(ctx, "received request")

	if req.ReplyTo == "" {
		logger.WarnContext(ctx, "request without reply address, nacking to DLQ")
		_ = d.Nack(false, false)
		return
	}

	reply, err := handler(ctx, req)
	failed := err != nil
	if failed {
		logger.ErrorContext(ctx, "request handler failed, sending fault reply", slog.Any("error", err))
		reply = bus.FaultReply(req, err)
	}

	replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := pub.reply(replyCtx, reply); err != nil {
		logger.ErrorContext(ctx, "failed to publish reply", slog.Any("error", err))
	}

	if failed {
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
