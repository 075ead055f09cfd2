package courses

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"coursehub/pkg/card"
	"coursehub/pkg/command"
	"coursehub/pkg/database"
	"coursehub/pkg/models"
	"coursehub/pkg/notification"
)

const ValidatePaymentCourseCommand = "ValidatePaymentCourse"

const (
	msgCourseNotFound  = "Curso não encontrado"
	msgAlreadyEnrolled = "Estudante já matriculado neste curso"
)

// ValidatePaymentCourse buys a course for a student. It carries no amount:
// the payments service charges the stored course price.
type ValidatePaymentCourse struct {
	CourseID           string
	StudentID          string
	CardName           string
	CardNumber         string
	CardExpirationDate string
	CardCVV            string
}

func (ValidatePaymentCourse) CommandName() string { return ValidatePaymentCourseCommand }

func (c ValidatePaymentCourse) Validate() []command.Error {
	var v command.Validation
	v.Require("CourseId", c.CourseID, "O id do curso é obrigatório")
	v.Require("StudentId", c.StudentID, "O id do estudante é obrigatório")
	v.Require("CardName", c.CardName, "O nome no cartão é obrigatório")
	if strings.TrimSpace(c.CardNumber) == "" {
		v.Require("CardNumber", c.CardNumber, "O número do cartão é obrigatório")
	} else {
		v.Check(card.IsValidNumber(c.CardNumber), "CardNumber", "O número do cartão é inválido")
	}
	v.Require("CardExpirationDate", c.CardExpirationDate, "A data de validade do cartão é obrigatória")
	v.Require("CardCVV", c.CardCVV, "O código de segurança do cartão é obrigatório")
	return v.Errors()
}

func (c ValidatePaymentCourse) event() models.PaymentRequested {
	return models.PaymentRequested{
		CourseID:           c.CourseID,
		StudentID:          c.StudentID,
		CardName:           c.CardName,
		CardNumber:         c.CardNumber,
		CardExpirationDate: c.CardExpirationDate,
		CardCVV:            c.CardCVV,
	}
}

type CourseReader interface {
	GetByID(ctx context.Context, id string) (Course, error)
}

type EnrollmentWriter interface {
	Add(ctx context.Context, studentID, courseID string) (Enrollment, error)
	Exists(ctx context.Context, studentID, courseID string) (bool, error)
}

// NewValidatePaymentCourseHandler returns the handler that asks the
// payments service to charge the student and records the enrollment when
// the payment is approved.
func NewValidatePaymentCourseHandler(
	courses CourseReader,
	enrollments EnrollmentWriter,
	payments PaymentRequester,
	uow command.UnitOfWork,
	pub notification.Publisher,
) command.Handler {
	return command.Typed(func(ctx context.Context, cmd ValidatePaymentCourse) (command.Result, error) {
		if errs := cmd.Validate(); len(errs) > 0 {
			return command.Reject(ctx, pub, errs), nil
		}

		course, err := courses.GetByID(ctx, cmd.CourseID)
		if errors.Is(err, database.ErrNotFound) {
			pub.Publish(ctx, notification.Notification{Key: "Course", Value: msgCourseNotFound})
			return command.Result{Kind: command.NotFound}, nil
		}
		if err != nil {
			return command.Result{}, err
		}

		enrolled, err := enrollments.Exists(ctx, cmd.StudentID, course.ID)
		if err != nil {
			return command.Result{}, err
		}
		if enrolled {
			pub.Publish(ctx, notification.Notification{Key: "StudentId", Value: msgAlreadyEnrolled})
			return command.Result{Kind: command.Rejected}, nil
		}

		// A timeout here may follow an approved charge; the rollback leaves it
		// without an enrollment.
		resp, err := payments.RequestPayment(ctx, cmd.event())
		if err != nil {
			return command.Result{}, err
		}
		if !resp.Valid {
			for _, e := range resp.Errors {
				pub.Publish(ctx, notification.Notification{Key: e.Field, Value: e.Message})
			}
			return command.Result{Kind: command.Rejected}, nil
		}

		// The charge is not refunded if the enrollment below fails.
		enrollment, err := enrollments.Add(ctx, cmd.StudentID, course.ID)
		if err != nil {
			return command.Result{}, err
		}
		slog.DebugContext(ctx, "enrollment staged", slog.String("enrollment_id", enrollment.ID))
		return command.Commit(ctx, uow)
	})
}
