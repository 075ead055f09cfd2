package command

import (
	"context"

	"coursehub/pkg/notification"
)

// Scope is the set of dependencies one delivery works with: its own
// dispatcher, repositories behind it and notification collector. Nothing in
// a scope is shared with another delivery.
type Scope struct {
	Dispatcher    *Dispatcher
	Notifications *notification.Collector
	release       func()
}

// NewScope builds a scope; release runs once on Release.
func NewScope(d *Dispatcher, n *notification.Collector, release func()) *Scope {
	return &Scope{Dispatcher: d, Notifications: n, release: release}
}

// Release frees what the scope acquired. Calling it again is a no-op.
func (s *Scope) Release() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
}

// ScopeOpener opens a fresh scope per delivery.
type ScopeOpener interface {
	Open(ctx context.Context) (*Scope, error)
}

// ScopeFunc adapts a function to ScopeOpener.
type ScopeFunc func(ctx context.Context) (*Scope, error)

func (f ScopeFunc) Open(ctx context.Context) (*Scope, error) { return f(ctx) }
