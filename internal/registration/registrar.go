package registration

import (
	"context"

	"coursehub/pkg/bus"
	"coursehub/pkg/models"
)

// BusRegistrar sends registrations to the students service over the bus.
type BusRegistrar struct {
	Client *bus.Client
}

func (r BusRegistrar) Register(ctx context.Context, event models.UserRegistered) (models.Response, error) {
	return bus.Request[models.UserRegistered, models.Response](ctx, r.Client, event)
}

func (r BusRegistrar) Revoke(ctx context.Context, event models.UserRegistrationRevoked) error {
	return r.Client.Publish(ctx, event)
}
