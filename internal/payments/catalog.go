// Package payments is the payments service: it prices purchases from the
// course store and records approved payments.
package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursehub/pkg/database"
)

// Course is the part of a course the payments service needs.
type Course struct {
	ID    string
	Name  string
	Price int64
}

// CourseCatalog reads courses from the courses database, which is the only
// source of prices.
type CourseCatalog struct {
	q database.Querier
}

func NewCourseCatalog(q database.Querier) *CourseCatalog {
	return &CourseCatalog{q: q}
}

func (c *CourseCatalog) GetByID(ctx context.Context, id string) (Course, error) {
	var course Course
	err := c.q.QueryRowContext(ctx, "SELECT id, name, price FROM courses WHERE id = $1", id).
		Scan(&course.ID, &course.Name, &course.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, fmt.Errorf("course %s: %w", id, database.ErrNotFound)
	}
	if err != nil {
		return Course{}, fmt.Errorf("load course %s: %w", id, err)
	}
	return course, nil
}
