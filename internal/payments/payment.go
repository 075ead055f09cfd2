package payments

import (
	"context"
	"fmt"
	"time"

	"coursehub/pkg/database"
)

const StatusApproved = "approved"

// Payment is a recorded charge. Only the last four card digits are kept.
type Payment struct {
	ID           string
	CourseID     string
	StudentID    string
	Total        int64
	CardName     string
	CardLastFour string
	Status       string
	CreatedAt    time.Time
}

type Repository struct {
	q database.Querier
}

func NewRepository(q database.Querier) *Repository {
	return &Repository{q: q}
}

func (r *Repository) Add(ctx context.Context, p Payment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO payments (id, course_id, student_id, total, card_name, card_last_four, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.CourseID, p.StudentID, p.Total, p.CardName, p.CardLastFour, p.Status, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func lastFour(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}
