package students

import (
	"context"
	"log/slog"
	"time"

	"coursehub/pkg/command"
	"coursehub/pkg/notification"

	"github.com/google/uuid"
)

const (
	AddUserCommand    = "AddUser"
	RemoveUserCommand = "RemoveUser"
)

// AddUser creates the student for a registered identity account.
type AddUser struct {
	ID          string
	FirstName   string
	LastName    string
	UserName    string
	DateOfBirth time.Time
	IsAdmin     bool
}

func (AddUser) CommandName() string { return AddUserCommand }

func (c AddUser) Validate() []command.Error {
	var v command.Validation
	v.Check(isUUID(c.ID), "Id", "O id do estudante é inválido")
	v.Require("FirstName", c.FirstName, "O nome é obrigatório")
	v.Require("LastName", c.LastName, "O sobrenome é obrigatório")
	v.Require("UserName", c.UserName, "O nome de usuário é obrigatório")
	v.Check(!c.DateOfBirth.IsZero(), "DateOfBirth", "A data de nascimento é obrigatória")
	v.Check(!c.DateOfBirth.After(time.Now()), "DateOfBirth", "A data de nascimento não pode estar no futuro")
	return v.Errors()
}

func (c AddUser) student() Student {
	return Student{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		UserName:    c.UserName,
		DateOfBirth: c.DateOfBirth,
		IsAdmin:     c.IsAdmin,
		CreatedAt:   time.Now().UTC(),
	}
}

// RemoveUser drops a student whose registration was revoked.
type RemoveUser struct {
	ID string
}

func (RemoveUser) CommandName() string { return RemoveUserCommand }

func (c RemoveUser) Validate() []command.Error {
	var v command.Validation
	v.Check(isUUID(c.ID), "Id", "O id do estudante é inválido")
	return v.Errors()
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

const msgRevoked = "O cadastro deste estudante foi revogado"

// StudentWriter is the repository surface the handlers need.
type StudentWriter interface {
	Add(ctx context.Context, s Student) error
	Delete(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

func NewAddUserHandler(repo StudentWriter, uow command.UnitOfWork, pub notification.Publisher) command.Handler {
	return command.Typed(func(ctx context.Context, cmd AddUser) (command.Result, error) {
		if errs := cmd.Validate(); len(errs) > 0 {
			return command.Reject(ctx, pub, errs), nil
		}
		revoked, err := repo.IsRevoked(ctx, cmd.ID)
		if err != nil {
			return command.Result{}, err
		}
		if revoked {
			return command.Reject(ctx, pub, []command.Error{{Field: "Id", Message: msgRevoked}}), nil
		}
		if err := repo.Add(ctx, cmd.student()); err != nil {
			return command.Result{}, err
		}
		return command.Commit(ctx, uow)
	})
}

// NewRemoveUserHandler deletes the student and leaves a revocation marker
// that AddUser checks, so the request may arrive before or after the
// registration. A student that never made it to this service is not an error.
func NewRemoveUserHandler(repo StudentWriter, uow command.UnitOfWork, pub notification.Publisher) command.Handler {
	return command.Typed(func(ctx context.Context, cmd RemoveUser) (command.Result, error) {
		if errs := cmd.Validate(); len(errs) > 0 {
			return command.Reject(ctx, pub, errs), nil
		}
		found, err := repo.Delete(ctx, cmd.ID)
		if err != nil {
			return command.Result{}, err
		}
		if !found {
			slog.InfoContext(ctx, "student to remove not found", slog.String("student_id", cmd.ID))
		}
		if err := repo.Revoke(ctx, cmd.ID); err != nil {
			return command.Result{}, err
		}
		return command.Commit(ctx, uow)
	})
}
