package courses

import (
	"context"
	"database/sql"
	"log/slog"

	"coursehub/pkg/command"
	"coursehub/pkg/database"
	"coursehub/pkg/notification"
)

// ScopeFactory opens one transaction-backed scope per enrollment request.
type ScopeFactory struct {
	DB       *sql.DB
	Payments PaymentRequester
	Logger   *slog.Logger
}

func (f ScopeFactory) Open(ctx context.Context) (*command.Scope, error) {
	uow, err := database.Begin(ctx, f.DB)
	if err != nil {
		return nil, err
	}
	notes := notification.NewCollector(f.Logger)

	d := command.NewDispatcher(f.Logger)
	d.Register(ValidatePaymentCourseCommand, NewValidatePaymentCourseHandler(
		NewCourseRepository(uow.Tx()),
		NewEnrollmentRepository(uow.Tx()),
		f.Payments,
		uow,
		notes,
	))
	return command.NewScope(d, notes, uow.Release), nil
}
