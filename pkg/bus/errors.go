package bus

import (
	"errors"
	"fmt"
)

var (
	// ErrUnroutable means no queue was bound for the request's event type.
	ErrUnroutable = errors.New("no subscriber for event")
	// ErrClosed is returned for requests pending when the transport closed.
	ErrClosed = errors.New("transport closed")
)

// Kind classifies a failed request.
type Kind int

const (
	KindEncode Kind = iota + 1
	KindPublish
	KindUnroutable
	KindTimeout
	KindCancelled
	KindRemoteFault
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindEncode:
		return "encode"
	case KindPublish:
		return "publish"
	case KindUnroutable:
		return "unroutable"
	case KindTimeout:
		return "timeout"
	case KindCancelled:
		return "cancelled"
	case KindRemoteFault:
		return "remote_fault"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RequestError is the only error type returned by Request.
type RequestError struct {
	Kind      Kind
	EventType string
	RequestID string
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("bus request %s [%s]: %s: %v", e.EventType, e.RequestID, e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// OutcomeUnknown reports whether the remote side may have acted on the request.
// It is false only when the request never reached a handler. A fault or an
// undecodable reply can follow a committed handler, so they count as unknown.
func (e *RequestError) OutcomeUnknown() bool {
	switch e.Kind {
	case KindTimeout, KindCancelled, KindRemoteFault, KindDecode:
		return true
	}
	return false
}

// RemoteFault is the error carried by a fault reply.
type RemoteFault struct {
	Message string
}

func (f *RemoteFault) Error() string { return "remote handler failed: " + f.Message }
