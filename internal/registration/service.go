// Package registration runs the user registration saga from the auth
// service: it creates the identity account, asks the students service to
// create the student and removes the account again when that fails.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coursehub/internal/identity"
	"coursehub/pkg/bus"
	"coursehub/pkg/models"
)

const defaultCompensationTimeout = 10 * time.Second

// AccountStore is the identity side of the saga.
type AccountStore interface {
	CreateAccount(ctx context.Context, in identity.NewAccount) (identity.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// StudentRegistrar reaches the students service.
type StudentRegistrar interface {
	Register(ctx context.Context, event models.UserRegistered) (models.Response, error)
	Revoke(ctx context.Context, event models.UserRegistrationRevoked) error
}

type TokenIssuer interface {
	Issue(account identity.Account) (string, error)
}

// RejectedError is returned when the students service answered with an
// invalid envelope.
type RejectedError struct {
	Response models.Response
}

func (e *RejectedError) Error() string {
	return "student registration rejected: " + strings.Join(e.Response.Messages(), "; ")
}

// Service is the registration saga initiator and compensator.
type Service struct {
	accounts AccountStore
	students StudentRegistrar
	tokens   TokenIssuer
	logger   *slog.Logger

	CompensationTimeout time.Duration
}

func NewService(accounts AccountStore, students StudentRegistrar, tokens TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts:            accounts,
		students:            students,
		tokens:              tokens,
		logger:              logger,
		CompensationTimeout: defaultCompensationTimeout,
	}
}

// RegisterUser creates the account and the student. When it returns an
// error neither of them is left behind, except when the compensation itself
// failed, in which case the compensation error is joined to the cause.
func (s *Service) RegisterUser(ctx context.Context, req models.RegisterUserRequest) (models.RegisterUserResponse, error) {
	account, err := s.accounts.CreateAccount(ctx, identity.NewAccount{
		UserName:    req.UserName,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		return models.RegisterUserResponse{}, fmt.Errorf("create account: %w", err)
	}

	event := models.UserRegistered{
		ID:          account.ID,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		UserName:    account.UserName,
		DateOfBirth: account.DateOfBirth,
		IsAdmin:     account.IsAdmin,
	}

	resp, err := s.students.Register(ctx, event)
	if err == nil && !resp.Valid {
		err = &RejectedError{Response: resp}
	}
	if err != nil {
		var reqErr *bus.RequestError
		var rejected *RejectedError
		if errors.As(err, &reqErr) || errors.As(err, &rejected) {
			return models.RegisterUserResponse{}, s.compensate(ctx, account, err)
		}
		s.logger.ErrorContext(ctx, "registration failed outside the saga contract",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return models.RegisterUserResponse{}, err
	}

	out := models.RegisterUserResponse{ID: account.ID, UserName: account.UserName}
	if s.tokens != nil {
		token, err := s.tokens.Issue(account)
		if err != nil {
			s.logger.WarnContext(ctx, "access token not issued", slog.String("account_id", account.ID), slog.Any("error", err))
		}
		out.AccessToken = token
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("account_id", account.ID),
		slog.String("correlation_id", bus.CorrelationID(ctx)))
	return out, nil
}

// compensate deletes the account once and returns cause. It runs detached
// from ctx so a cancelled caller still gets its account removed.
func (s *Service) compensate(ctx context.Context, account identity.Account, cause error) error {
	s.logger.WarnContext(ctx, "compensating registration",
		slog.String("account_id", account.ID), slog.Any("cause", cause))

	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.CompensationTimeout)
	defer cancel()

	var reqErr *bus.RequestError
	if errors.As(cause, &reqErr) && reqErr.OutcomeUnknown() {
		// The student may have been committed even though no valid reply arrived.
		if err := s.students.Revoke(cctx, models.UserRegistrationRevoked{ID: account.ID}); err != nil {
			s.logger.ErrorContext(ctx, "revocation not published",
				slog.String("account_id", account.ID), slog.Any("error", err))
		}
	}

	if err := s.accounts.DeleteAccount(cctx, account.ID); err != nil {
		s.logger.ErrorContext(ctx, "compensation failed",
			slog.String("account_id", account.ID), slog.Any("error", err))
		return errors.Join(cause, fmt.Errorf("delete account %s: %w", account.ID, err))
	}
	return cause
}
