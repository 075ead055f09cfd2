// Package notification collects domain notifications raised while a command
// is handled, for presentation and logging.
package notification

import (
	"context"
	"log/slog"
	"sync"

	"coursehub/pkg/models"
)

// Notification is a single domain message. Key is usually the offending field.
type Notification struct {
	Key   string
	Value string
}

// Publisher receives notifications.
type Publisher interface {
	Publish(ctx context.Context, n Notification)
}

// Collector keeps the notifications of one scope in publication order.
type Collector struct {
	mu     sync.Mutex
	items  []Notification
	logger *slog.Logger
}

// NewCollector returns an empty collector that also logs every notification.
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{logger: logger}
}

func (c *Collector) Publish(ctx context.Context, n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "domain notification", slog.String("key", n.Key), slog.String("value", n.Value))
}

// Notifications returns a copy of what was published so far.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// HasNotifications reports whether anything was published.
func (c *Collector) HasNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) > 0
}

// ResponseErrors converts what was published so far into envelope errors.
func (c *Collector) ResponseErrors() []models.ResponseError {
	notes := c.Notifications()
	out := make([]models.ResponseError, 0, len(notes))
	for _, n := range notes {
		out = append(out, models.ResponseError{Field: n.Key, Message: n.Value})
	}
	return out
}
