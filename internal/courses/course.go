// Package courses is the courses service: the course catalogue, the
// enrollment store and the initiator of the payment saga.
package courses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coursehub/pkg/database"

	"github.com/google/uuid"
)

// Course is a course on sale. Price is in cents.
type Course struct {
	ID    string
	Name  string
	Price int64
}

// Enrollment links a student to a course they paid for.
type Enrollment struct {
	ID        string
	StudentID string
	CourseID  string
	CreatedAt time.Time
}

type CourseRepository struct {
	q database.Querier
}

func NewCourseRepository(q database.Querier) *CourseRepository {
	return &CourseRepository{q: q}
}

// GetByID returns database.ErrNotFound when the course does not exist.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (Course, error) {
	var c Course
	err := r.q.QueryRowContext(ctx, "SELECT id, name, price FROM courses WHERE id = $1", id).
		Scan(&c.ID, &c.Name, &c.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, fmt.Errorf("course %s: %w", id, database.ErrNotFound)
	}
	if err != nil {
		return Course{}, fmt.Errorf("load course %s: %w", id, err)
	}
	return c, nil
}

type EnrollmentRepository struct {
	q database.Querier
}

func NewEnrollmentRepository(q database.Querier) *EnrollmentRepository {
	return &EnrollmentRepository{q: q}
}

// Add stores a new enrollment. Enrolling the same student in the same
// course twice fails with database.ErrDuplicate.
func (r *EnrollmentRepository) Add(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	e := Enrollment{ID: uuid.NewString(), StudentID: studentID, CourseID: courseID, CreatedAt: time.Now().UTC()}
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO enrollments (id, student_id, course_id, created_at) VALUES ($1, $2, $3, $4)",
		e.ID, e.StudentID, e.CourseID, e.CreatedAt,
	)
	if database.IsUniqueViolation(err) {
		return Enrollment{}, fmt.Errorf("%w: student %s already enrolled in course %s", database.ErrDuplicate, studentID, courseID)
	}
	if err != nil {
		return Enrollment{}, fmt.Errorf("insert enrollment: %w", err)
	}
	return e, nil
}

func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)",
		studentID, courseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}
