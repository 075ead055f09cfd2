package bus

import (
	"context"
	"time"
)

// Message is the transport-neutral form of a bus message.
type Message struct {
	// RoutingKey is the event type for requests and the reply address for replies.
	RoutingKey string
	// CorrelationID pairs a reply with its request.
	CorrelationID string
	// ReplyTo is filled in by the transport for requests that expect a reply.
	ReplyTo string
	// ExpectReply marks requests; events published with Publish leave it false.
	ExpectReply bool
	// TTL lets the broker drop a request nobody is waiting for anymore.
	TTL  time.Duration
	Body []byte
	// Fault carries the responder's error text when it failed to handle the request.
	Fault string
	// Returned is set on messages the broker could not route to any queue.
	Returned bool
}

// Transport moves messages to and from the broker.
type Transport interface {
	Publish(ctx context.Context, msg Message) error
	// Replies yields replies and returned requests until the transport closes.
	Replies() <-chan Message
}

type correlationKey struct{}

// WithCorrelationID stores the business correlation id carried in events.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID, if any.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
