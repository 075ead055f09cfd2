package models

import (
	"encoding/json"
	"strings"
)

// ResponseError is a single failure reason. Field is empty when the message
// is not tied to an input field.
type ResponseError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

const unspecifiedFailure = "reply marked invalid without errors"

// Response is the reply shape of every request sent over the bus.
// Valid is true exactly when Errors is empty.
type Response struct {
	Valid  bool            `json:"valid"`
	Errors []ResponseError `json:"errors"`
}

// Success returns a valid response.
func Success() Response {
	return Response{Valid: true, Errors: []ResponseError{}}
}

// Failure returns an invalid response carrying one error per message.
func Failure(messages ...string) Response {
	errs := make([]ResponseError, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, ResponseError{Message: m})
	}
	return NewResponse(errs)
}

// NewResponse derives Valid from errs.
func NewResponse(errs []ResponseError) Response {
	if len(errs) == 0 {
		return Success()
	}
	return Response{Valid: false, Errors: errs}
}

// UnmarshalJSON keeps the invariant for replies from other services: a reply
// is only valid when it says so and carries no errors, and an invalid reply
// always carries at least one error.
func (r *Response) UnmarshalJSON(data []byte) error {
	type raw Response
	var decoded raw
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Errors == nil {
		decoded.Errors = []ResponseError{}
	}
	if !decoded.Valid && len(decoded.Errors) == 0 {
		decoded.Errors = append(decoded.Errors, ResponseError{Message: unspecifiedFailure})
	}
	decoded.Valid = len(decoded.Errors) == 0
	*r = Response(decoded)
	return nil
}

// Messages returns the error messages in order.
func (r Response) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Message)
	}
	return out
}

func (r Response) String() string {
	if r.Valid {
		return "valid"
	}
	return "invalid: " + strings.Join(r.Messages(), "; ")
}
