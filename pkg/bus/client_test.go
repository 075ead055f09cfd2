package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"coursehub/pkg/models"
)

type echoRequest struct {
	ID string `json:"id"`
}

func (echoRequest) EventType() string { return "test.echo" }

type echoReply struct {
	ID string `json:"id"`
}

// fakeTransport records published messages and lets a test play the
// remote side through onPublish.
type fakeTransport struct {
	mu        sync.Mutex
	published []Message
	replies   chan Message
	onPublish func(Message)
	err       error
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: make(chan Message, 16)}
}

func (f *fakeTransport) Publish(ctx context.Context, msg Message) error {
	f.mu.Lock()
	f.published = append(f.published, msg)
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.onPublish != nil {
		go f.onPublish(msg)
	}
	return nil
}

func (f *fakeTransport) Replies() <-chan Message { return f.replies }

func (f *fakeTransport) Published() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.published...)
}

// answer replays a request through a real RequestHandler and queues the reply.
func (f *fakeTransport) answer(h RequestHandler) func(Message) {
	return func(req Message) {
		req.ReplyTo = "reply-queue"
		reply, err := h(context.Background(), req)
		if err != nil {
			reply = FaultReply(req, err)
		}
		f.replies <- reply
	}
}

func requireKind(t *testing.T, err error, kind Kind) *RequestError {
	t.Helper()
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, reqErr.Kind, err)
	}
	return reqErr
}

func TestRequest_ReturnsCorrelatedReply(t *testing.T) {
	tr := newFakeTransport()
	responder := Codec{Source: "students"}
	var seen models.UserRegistered
	tr.onPublish = tr.answer(HandleRequest(responder, func(ctx context.Context, req models.UserRegistered) (models.Response, error) {
		seen = req
		return models.Success(), nil
	}))
	c := NewClient(tr, "auth", time.Second, nil)

	resp, err := Request[models.UserRegistered, models.Response](context.Background(), c, models.UserRegistered{ID: "u-1", UserName: "ana"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Valid {
		t.Errorf("expected valid reply, got %s", resp)
	}
	if seen.ID != "u-1" || seen.UserName != "ana" {
		t.Errorf("responder saw %+v", seen)
	}

	published := tr.Published()
	if len(published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(published))
	}
	if published[0].RoutingKey != models.EventUserRegistered {
		t.Errorf("expected routing key %s, got %s", models.EventUserRegistered, published[0].RoutingKey)
	}
	if !published[0].ExpectReply || published[0].CorrelationID == "" {
		t.Errorf("request not marked for reply: %+v", published[0])
	}
	if ttl := published[0].TTL; ttl <= 0 || ttl > time.Second {
		t.Errorf("expected the request to expire within the client timeout, got %v", ttl)
	}
}

func TestRequest_Timeout(t *testing.T) {
	tr := newFakeTransport()
	c := NewClient(tr, "auth", 20*time.Millisecond, nil)

	_, err := Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: "1"})
	reqErr := requireKind(t, err, KindTimeout)
	if !reqErr.OutcomeUnknown() {
		t.Error("a timed out request may have been handled remotely")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected to unwrap to DeadlineExceeded, got %v", err)
	}
}

func TestRequest_Cancelled(t *testing.T) {
	tr := newFakeTransport()
	c := NewClient(tr, "auth", time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	tr.onPublish = func(Message) { cancel() }

	_, err := Request[echoRequest, echoReply](ctx, c, echoRequest{ID: "1"})
	requireKind(t, err, KindCancelled)
}

func TestRequest_Unroutable(t *testing.T) {
	tr := newFakeTransport()
	tr.onPublish = func(req Message) {
		tr.replies <- Message{CorrelationID: req.CorrelationID, Returned: true}
	}
	c := NewClient(tr, "auth", time.Second, nil)

	_, err := Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: "1"})
	reqErr := requireKind(t, err, KindUnroutable)
	if !errors.Is(err, ErrUnroutable) {
		t.Errorf("expected ErrUnroutable, got %v", err)
	}
	if reqErr.OutcomeUnknown() {
		t.Error("an unroutable request was never handled")
	}
}

func TestRequest_RemoteFault(t *testing.T) {
	tr := newFakeTransport()
	tr.onPublish = tr.answer(HandleRequest(Codec{Source: "x"}, func(ctx context.Context, req echoRequest) (echoReply, error) {
		return echoReply{}, errors.New("database unavailable")
	}))
	c := NewClient(tr, "auth", time.Second, nil)

	_, err := Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: "1"})
	if !requireKind(t, err, KindRemoteFault).OutcomeUnknown() {
		t.Error("a fault reply may follow a committed handler")
	}
	var fault *RemoteFault
	if !errors.As(err, &fault) || fault.Message != "database unavailable" {
		t.Errorf("expected remote fault message, got %v", err)
	}
}

func TestRequest_PublishError(t *testing.T) {
	tr := newFakeTransport()
	tr.err = errors.New("channel closed")
	c := NewClient(tr, "auth", time.Second, nil)

	_, err := Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: "1"})
	requireKind(t, err, KindPublish)
}

func TestRequest_DecodeError(t *testing.T) {
	tr := newFakeTransport()
	tr.onPublish = func(req Message) {
		tr.replies <- Message{CorrelationID: req.CorrelationID, Body: []byte("not json")}
	}
	c := NewClient(tr, "auth", time.Second, nil)

	_, err := Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: "1"})
	if !requireKind(t, err, KindDecode).OutcomeUnknown() {
		t.Error("an undecodable reply may follow a committed handler")
	}
}

func TestRequestError_OutcomeUnknown(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindEncode, false},
		{KindPublish, false},
		{KindUnroutable, false},
		{KindTimeout, true},
		{KindCancelled, true},
		{KindRemoteFault, true},
		{KindDecode, true},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := (&RequestError{Kind: tt.kind}).OutcomeUnknown(); got != tt.want {
				t.Errorf("OutcomeUnknown: expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRequest_SingleReply(t *testing.T) {
	tr := newFakeTransport()
	codec := Codec{Source: "remote"}
	tr.onPublish = func(req Message) {
		first, _ := codec.Encode("test.echo.reply", "", echoReply{ID: "first"})
		second, _ := codec.Encode("test.echo.reply", "", echoReply{ID: "second"})
		stray, _ := codec.Encode("test.echo.reply", "", echoReply{ID: "stray"})
		tr.replies <- Message{CorrelationID: "unknown-request", Body: stray}
		tr.replies <- Message{CorrelationID: req.CorrelationID, Body: first}
		tr.replies <- Message{CorrelationID: req.CorrelationID, Body: second}
	}
	c := NewClient(tr, "auth", time.Second, nil)

	resp, err := Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: "1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ID != "first" {
		t.Errorf("expected the first reply, got %q", resp.ID)
	}
}

func TestRequest_ConcurrentRequestsGetTheirOwnReply(t *testing.T) {
	tr := newFakeTransport()
	tr.onPublish = tr.answer(HandleRequest(Codec{Source: "remote"}, func(ctx context.Context, req echoRequest) (echoReply, error) {
		return echoReply{ID: req.ID}, nil
	}))
	c := NewClient(tr, "auth", time.Second, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			resp, err := Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: id})
			if err != nil {
				errs <- err
				return
			}
			if resp.ID != id {
				errs <- fmt.Errorf("request %s got reply %s", id, resp.ID)
			}
		}(fmt.Sprint(i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestRequest_TransportClosed(t *testing.T) {
	tr := newFakeTransport()
	tr.onPublish = func(Message) { close(tr.replies) }
	c := NewClient(tr, "auth", time.Second, nil)

	_, err := Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: "1"})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	tr.onPublish = nil
	_, err = Request[echoRequest, echoReply](context.Background(), c, echoRequest{ID: "2"})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after close, got %v", err)
	}
}

func TestPublish_IsFireAndForget(t *testing.T) {
	tr := newFakeTransport()
	c := NewClient(tr, "auth", time.Second, nil)

	ctx := WithCorrelationID(context.Background(), "corr-1")
	if err := c.Publish(ctx, models.UserRegistrationRevoked{ID: "u-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	published := tr.Published()
	if len(published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(published))
	}
	if published[0].ExpectReply {
		t.Error("events must not wait for a reply")
	}
	event, meta, err := Decode[models.UserRegistrationRevoked](published[0].Body)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if event.ID != "u-1" || meta.CorrelationID != "corr-1" || meta.Source != "auth" {
		t.Errorf("unexpected event %+v meta %+v", event, meta)
	}
}
