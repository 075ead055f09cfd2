package courses

import (
	"context"

	"coursehub/pkg/bus"
	"coursehub/pkg/models"
)

// PaymentRequester asks the payments service to validate a payment.
type PaymentRequester interface {
	RequestPayment(ctx context.Context, req models.PaymentRequested) (models.Response, error)
}

type BusPaymentRequester struct {
	Client *bus.Client
}

func (r BusPaymentRequester) RequestPayment(ctx context.Context, req models.PaymentRequested) (models.Response, error) {
	return bus.Request[models.PaymentRequested, models.Response](ctx, r.Client, req)
}
