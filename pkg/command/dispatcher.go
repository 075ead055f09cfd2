package command

import (
	"context"
	"fmt"
	"log/slog"
)

// Dispatcher routes commands to handlers through an explicit table keyed by
// CommandName. It is built once per scope and is not safe for concurrent
// registration.
type Dispatcher struct {
	handlers map[string]Handler
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{handlers: make(map[string]Handler), logger: logger}
}

// Register binds name to h, replacing any previous handler.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Send runs cmd through its handler.
func (d *Dispatcher) Send(ctx context.Context, cmd Command) (Result, error) {
	name := cmd.CommandName()
	h, ok := d.handlers[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNoHandler, name)
	}

	res, err := h.Handle(ctx, cmd)
	if err != nil {
		d.logger.ErrorContext(ctx, "command failed", slog.String("command", name), slog.Any("error", err))
		return res, err
	}
	d.logger.DebugContext(ctx, "command handled", slog.String("command", name), slog.String("result", res.Kind.String()))
	return res, nil
}
