package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"coursehub/pkg/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Store persists accounts in the auth database.
type Store struct {
	DB   *sql.DB
	cost int
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, cost: bcrypt.DefaultCost}
}

// CreateAccount stores a new account in its own transaction.
func (s *Store) CreateAccount(ctx context.Context, in NewAccount) (Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := Account{
		ID:          uuid.NewString(),
		UserName:    in.UserName,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		IsAdmin:     in.IsAdmin,
		CreatedAt:   time.Now().UTC(),
	}

	uow, err := database.Begin(ctx, s.DB)
	if err != nil {
		return Account{}, err
	}
	defer uow.Release()

	_, err = uow.Tx().ExecContext(ctx,
		`INSERT INTO accounts (id, user_name, password_hash, first_name, last_name, date_of_birth, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		account.ID, account.UserName, string(hash), account.FirstName, account.LastName,
		account.DateOfBirth, account.IsAdmin, account.CreatedAt,
	)
	if database.IsUniqueViolation(err) {
		return Account{}, ErrUserNameTaken
	}
	if err != nil {
		return Account{}, fmt.Errorf("insert account: %w", err)
	}

	ok, err := uow.Commit(ctx)
	if err != nil {
		return Account{}, err
	}
	if !ok {
		return Account{}, errors.New("account not committed")
	}

	slog.InfoContext(ctx, "account created", slog.String("account_id", account.ID))
	return account, nil
}

// DeleteAccount removes an account. Deleting a missing account is not an error.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		slog.WarnContext(ctx, "account to delete not found", slog.String("account_id", id))
	}
	return nil
}

// Authenticate returns the account when password matches.
func (s *Store) Authenticate(ctx context.Context, userName, password string) (Account, error) {
	var a Account
	var hash string
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, user_name, password_hash, first_name, last_name, date_of_birth, is_admin, created_at
		 FROM accounts WHERE user_name = $1`, userName,
	).Scan(&a.ID, &a.UserName, &hash, &a.FirstName, &a.LastName, &a.DateOfBirth, &a.IsAdmin, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, fmt.Errorf("load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return a, nil
}
