package students

import (
	"context"
	"errors"
	"log/slog"

	"coursehub/pkg/command"
	"coursehub/pkg/models"
)

const (
	msgRegistrationFailed = "Falha ao cadastrar estudante"
	msgCancelled          = "Operação cancelada"
)

// UserRegisteredHandler answers UserRegistered requests.
type UserRegisteredHandler struct {
	Scopes command.ScopeOpener
	Logger *slog.Logger
}

func NewUserRegisteredHandler(scopes command.ScopeOpener, logger *slog.Logger) *UserRegisteredHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserRegisteredHandler{Scopes: scopes, Logger: logger}
}

// Handle creates the student. Cancellation is answered with a failure
// envelope; any other error is returned to the transport.
func (h *UserRegisteredHandler) Handle(ctx context.Context, event models.UserRegistered) (models.Response, error) {
	logger := h.Logger.With(slog.String("student_id", event.ID))

	scope, err := h.Scopes.Open(ctx)
	if err != nil {
		return h.fail(ctx, logger, err)
	}
	defer scope.Release()

	res, err := scope.Dispatcher.Send(ctx, AddUser{
		ID:          event.ID,
		FirstName:   event.FirstName,
		LastName:    event.LastName,
		UserName:    event.UserName,
		DateOfBirth: event.DateOfBirth,
		IsAdmin:     event.IsAdmin,
	})
	if err != nil {
		return h.fail(ctx, logger, err)
	}
	if !res.OK() {
		logger.WarnContext(ctx, "student not registered",
			slog.String("result", res.Kind.String()),
			slog.Int("notifications", len(scope.Notifications.Notifications())))
		return models.Failure(msgRegistrationFailed), nil
	}

	logger.InfoContext(ctx, "student registered")
	return models.Success(), nil
}

func (h *UserRegisteredHandler) fail(ctx context.Context, logger *slog.Logger, err error) (models.Response, error) {
	if errors.Is(err, context.Canceled) {
		logger.WarnContext(ctx, "student registration cancelled")
		return models.Failure(msgCancelled), nil
	}
	return models.Response{}, err
}
