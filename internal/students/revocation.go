package students

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"coursehub/pkg/command"
	"coursehub/pkg/models"
)

// RevocationConsumer removes students whose identity account was rolled
// back by the auth service. Events are processed at most once per id.
type RevocationConsumer struct {
	DB     *sql.DB
	Scopes command.ScopeOpener
	Logger *slog.Logger
}

func NewRevocationConsumer(db *sql.DB, scopes command.ScopeOpener, logger *slog.Logger) *RevocationConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RevocationConsumer{DB: db, Scopes: scopes, Logger: logger}
}

func (c *RevocationConsumer) Handle(ctx context.Context, eventID string, event models.UserRegistrationRevoked) error {
	logger := c.Logger.With(slog.String("event_id", eventID), slog.String("student_id", event.ID))

	var exists bool
	err := c.DB.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM idempotency_keys WHERE event_id = $1)", eventID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check idempotency: %w", err)
	}
	if exists {
		logger.InfoContext(ctx, "duplicate revocation ignored")
		return nil
	}

	scope, err := c.Scopes.Open(ctx)
	if err != nil {
		return err
	}
	defer scope.Release()

	res, err := scope.Dispatcher.Send(ctx, RemoveUser{ID: event.ID})
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("remove student %s: %s", event.ID, res.Kind)
	}

	if _, err := c.DB.ExecContext(ctx, "INSERT INTO idempotency_keys (event_id) VALUES ($1) ON CONFLICT DO NOTHING", eventID); err != nil {
		logger.WarnContext(ctx, "idempotency key not recorded", slog.Any("error", err))
	}

	logger.InfoContext(ctx, "student registration revoked")
	return nil
}
