package bus

import (
	"context"

	"coursehub/pkg/models"
)

// RequestHandler answers one request. A returned error is sent back to the
// requester as a fault reply.
type RequestHandler func(ctx context.Context, req Message) (Message, error)

// EventHandler processes one fire-and-forget event.
type EventHandler func(ctx context.Context, msg Message) error

// HandleRequest adapts a typed function into a RequestHandler. The reply is
// encoded by codec and addressed to the request's ReplyTo.
func HandleRequest[TReq models.Event, TResp any](codec Codec, fn func(ctx context.Context, req TReq) (TResp, error)) RequestHandler {
	return func(ctx context.Context, req Message) (Message, error) {
		payload, meta, err := Decode[TReq](req.Body)
		if err != nil {
			return Message{}, err
		}
		ctx = WithCorrelationID(ctx, meta.CorrelationID)

		resp, err := fn(ctx, payload)
		if err != nil {
			return Message{}, err
		}

		body, err := codec.Encode(meta.Type+".reply", meta.CorrelationID, resp)
		if err != nil {
			return Message{}, err
		}
		return Message{RoutingKey: req.ReplyTo, CorrelationID: req.CorrelationID, Body: body}, nil
	}
}

// HandleEvent adapts a typed function into an EventHandler. The function
// receives the CloudEvent id, usable as an idempotency key.
func HandleEvent[T models.Event](fn func(ctx context.Context, eventID string, event T) error) EventHandler {
	return func(ctx context.Context, msg Message) error {
		payload, meta, err := Decode[T](msg.Body)
		if err != nil {
			return err
		}
		return fn(WithCorrelationID(ctx, meta.CorrelationID), meta.ID, payload)
	}
}

// FaultReply builds the reply sent when a RequestHandler fails.
func FaultReply(req Message, err error) Message {
	return Message{RoutingKey: req.ReplyTo, CorrelationID: req.CorrelationID, Fault: err.Error()}
}
