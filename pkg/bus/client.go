package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"coursehub/pkg/models"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a request when the client is built without one.
const DefaultTimeout = 30 * time.Second

// Client sends requests and events over a Transport. It is safe for
// concurrent use.
type Client struct {
	transport Transport
	codec     Codec
	timeout   time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]chan Message
	closed  bool
}

// NewClient starts routing the transport's replies to waiting requests.
func NewClient(t Transport, source string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		transport: t,
		codec:     Codec{Source: source},
		timeout:   timeout,
		logger:    logger,
		pending:   make(map[string]chan Message),
	}
	go c.route(t.Replies())
	return c
}

// Request publishes req and waits for its single reply, decoded as TResp.
func Request[TReq models.Event, TResp any](ctx context.Context, c *Client, req TReq) (TResp, error) {
	var zero TResp
	eventType := req.EventType()
	requestID := uuid.NewString()
	fail := func(kind Kind, err error) (TResp, error) {
		return zero, &RequestError{Kind: kind, EventType: eventType, RequestID: requestID, Err: err}
	}

	body, err := c.codec.Encode(eventType, CorrelationID(ctx), req)
	if err != nil {
		return fail(KindEncode, err)
	}

	replies, err := c.register(requestID)
	if err != nil {
		return fail(KindPublish, err)
	}
	defer c.unregister(requestID)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.DebugContext(ctx, "sending request",
		slog.String("event_type", eventType),
		slog.String("request_id", requestID),
		slog.String("correlation_id", CorrelationID(ctx)))

	msg := Message{RoutingKey: eventType, CorrelationID: requestID, ExpectReply: true, Body: body}
	if deadline, ok := ctx.Deadline(); ok {
		msg.TTL = time.Until(deadline)
	}
	if err := c.transport.Publish(ctx, msg); err != nil {
		return fail(KindPublish, err)
	}

	select {
	case reply, ok := <-replies:
		switch {
		case !ok:
			return fail(KindPublish, ErrClosed)
		case reply.Returned:
			return fail(KindUnroutable, ErrUnroutable)
		case reply.Fault != "":
			return fail(KindRemoteFault, &RemoteFault{Message: reply.Fault})
		}
		resp, _, err := Decode[TResp](reply.Body)
		if err != nil {
			return fail(KindDecode, err)
		}
		return resp, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(KindTimeout, ctx.Err())
		}
		return fail(KindCancelled, ctx.Err())
	}
}

// Publish sends event without waiting for any reply.
func (c *Client) Publish(ctx context.Context, event models.Event) error {
	body, err := c.codec.Encode(event.EventType(), CorrelationID(ctx), event)
	if err != nil {
		return err
	}
	return c.transport.Publish(ctx, Message{
		RoutingKey:    event.EventType(),
		CorrelationID: uuid.NewString(),
		Body:          body,
	})
}

func (c *Client) register(id string) (chan Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	ch := make(chan Message, 1)
	c.pending[id] = ch
	return ch, nil
}

func (c *Client) unregister(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// route hands each reply to its waiting request. The first reply wins; a
// reply nobody waits for is dropped.
func (c *Client) route(replies <-chan Message) {
	for msg := range replies {
		c.mu.Lock()
		ch, ok := c.pending[msg.CorrelationID]
		if ok {
			delete(c.pending, msg.CorrelationID)
		}
		c.mu.Unlock()

		if !ok {
			c.logger.Warn("dropping reply without pending request",
				slog.String("request_id", msg.CorrelationID),
				slog.Bool("returned", msg.Returned))
			continue
		}
		ch <- msg
	}

	c.mu.Lock()
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
}
