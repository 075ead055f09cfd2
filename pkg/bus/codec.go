package bus

import (
	"encoding/json"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

const correlationExtension = "correlationid"

// Meta is the envelope information of a decoded message.
type Meta struct {
	ID            string
	Type          string
	Source        string
	CorrelationID string
	Time          time.Time
}

// Codec encodes payloads as CloudEvents from one source service.
type Codec struct {
	Source string
}

// Encode wraps data in a CloudEvent of the given type.
func (c Codec) Encode(eventType, correlationID string, data any) ([]byte, error) {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetSource(c.Source)
	e.SetType(eventType)
	e.SetTime(time.Now().UTC())
	if correlationID != "" {
		e.SetExtension(correlationExtension, correlationID)
	}
	if err := e.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return nil, fmt.Errorf("set data: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// Decode unwraps a CloudEvent and decodes its data into T.
func Decode[T any](body []byte) (T, Meta, error) {
	var out T
	var e cloudevents.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return out, Meta{}, fmt.Errorf("decode cloudevent: %w", err)
	}

	meta := Meta{ID: e.ID(), Type: e.Type(), Source: e.Source(), Time: e.Time()}
	if v, ok := e.Extensions()[correlationExtension]; ok {
		meta.CorrelationID = fmt.Sprint(v)
	}

	if err := e.DataAs(&out); err != nil {
		return out, meta, fmt.Errorf("decode %s data: %w", e.Type(), err)
	}
	return out, meta, nil
}
