// Package students is the students service: it answers registration
// requests from the auth service and owns the student aggregate.
package students

import (
	"context"
	"fmt"
	"time"

	"coursehub/pkg/database"
)

// Student is the student aggregate.
type Student struct {
	ID          string
	FirstName   string
	LastName    string
	UserName    string
	DateOfBirth time.Time
	IsAdmin     bool
	CreatedAt   time.Time
}

// Repository writes students through the scope's transaction.
type Repository struct {
	q database.Querier
}

func NewRepository(q database.Querier) *Repository {
	return &Repository{q: q}
}

func (r *Repository) Add(ctx context.Context, s Student) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO students (id, first_name, last_name, user_name, date_of_birth, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.FirstName, s.LastName, s.UserName, s.DateOfBirth, s.IsAdmin, s.CreatedAt,
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: student %s", database.ErrDuplicate, s.ID)
	}
	if err != nil {
		return fmt.Errorf("insert student %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes a student and reports whether one existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.q.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete student %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke marks id as revoked so a registration delivered after the
// revocation cannot recreate the student.
func (r *Repository) Revoke(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, "INSERT INTO revoked_students (id) VALUES ($1) ON CONFLICT DO NOTHING", id)
	if err != nil {
		return fmt.Errorf("revoke student %s: %w", id, err)
	}
	return nil
}

func (r *Repository) IsRevoked(ctx context.Context, id string) (bool, error) {
	var revoked bool
	err := r.q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM revoked_students WHERE id = $1)", id).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked student %s: %w", id, err)
	}
	return revoked, nil
}
