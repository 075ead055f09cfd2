package students

import (
	"context"
	"database/sql"
	"log/slog"

	"coursehub/pkg/command"
	"coursehub/pkg/database"
	"coursehub/pkg/notification"
)

// ScopeFactory opens one transaction-backed scope per delivery.
type ScopeFactory struct {
	DB     *sql.DB
	Logger *slog.Logger
}

func (f ScopeFactory) Open(ctx context.Context) (*command.Scope, error) {
	uow, err := database.Begin(ctx, f.DB)
	if err != nil {
		return nil, err
	}
	repo := NewRepository(uow.Tx())
	notes := notification.NewCollector(f.Logger)

	d := command.NewDispatcher(f.Logger)
	d.Register(AddUserCommand, NewAddUserHandler(repo, uow, notes))
	d.Register(RemoveUserCommand, NewRemoveUserHandler(repo, uow, notes))
	return command.NewScope(d, notes, uow.Release), nil
}
