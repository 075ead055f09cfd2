// Package command is the in-process pipeline every saga participant runs its
// local mutation through: self-validation, one repository change, one commit.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coursehub/pkg/notification"
)

// ErrNoHandler is returned by Dispatcher.Send for an unregistered command.
var ErrNoHandler = errors.New("no handler registered for command")

// Error is one violated rule.
type Error struct {
	Field   string
	Message string
}

// Command carries the input of one local mutation and validates itself.
type Command interface {
	CommandName() string
	Validate() []Error
}

// IsValid reports whether c has no validation errors.
func IsValid(c Command) bool {
	return len(c.Validate()) == 0
}

// Kind tells why a command did or did not go through.
type Kind int

const (
	Succeeded Kind = iota
	Rejected
	NotFound
	NotCommitted
)

func (k Kind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case Rejected:
		return "rejected"
	case NotFound:
		return "not_found"
	case NotCommitted:
		return "not_committed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of a handled command. Callers that only need the
// boolean use OK; Kind separates validation rejections from commit failures.
type Result struct {
	Kind Kind
}

func (r Result) OK() bool { return r.Kind == Succeeded }

// UnitOfWork is the commit boundary of a single service.
type UnitOfWork interface {
	Commit(ctx context.Context) (bool, error)
}

// Handler executes one command type.
type Handler interface {
	Handle(ctx context.Context, cmd Command) (Result, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, cmd Command) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

// Typed adapts a handler for a concrete command type.
func Typed[C Command](fn func(ctx context.Context, cmd C) (Result, error)) Handler {
	return HandlerFunc(func(ctx context.Context, cmd Command) (Result, error) {
		typed, ok := cmd.(C)
		if !ok {
			return Result{}, fmt.Errorf("handler for %T received %T", *new(C), cmd)
		}
		return fn(ctx, typed)
	})
}

// Reject publishes one notification per validation error.
func Reject(ctx context.Context, pub notification.Publisher, errs []Error) Result {
	for _, e := range errs {
		pub.Publish(ctx, notification.Notification{Key: e.Field, Value: e.Message})
	}
	return Result{Kind: Rejected}
}

// Commit commits uow and maps the outcome to a Result.
func Commit(ctx context.Context, uow UnitOfWork) (Result, error) {
	ok, err := uow.Commit(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Kind: NotCommitted}, nil
	}
	return Result{Kind: Succeeded}, nil
}

// Validation accumulates rule violations in declaration order.
type Validation struct {
	errs []Error
}

// Require adds message for field when value is blank.
func (v *Validation) Require(field, value, message string) {
	v.Check(strings.TrimSpace(value) != "", field, message)
}

// Check adds message for field when ok is false.
func (v *Validation) Check(ok bool, field, message string) {
	if !ok {
		v.errs = append(v.errs, Error{Field: field, Message: message})
	}
}

func (v *Validation) Errors() []Error {
	return v.errs
}
