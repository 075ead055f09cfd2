package payments

import (
	"context"
	"errors"
	"log/slog"

	"coursehub/pkg/command"
	"coursehub/pkg/database"
	"coursehub/pkg/models"
	"coursehub/pkg/notification"
)

const (
	msgCourseNotFound = "Curso não encontrado"
	msgPaymentFailed  = "Falha ao processar pagamento"
)

type CourseFinder interface {
	GetByID(ctx context.Context, id string) (Course, error)
}

// PaymentRequestedHandler answers PaymentRequested requests.
type PaymentRequestedHandler struct {
	Catalog CourseFinder
	Scopes  command.ScopeOpener
	Logger  *slog.Logger
}

func NewPaymentRequestedHandler(catalog CourseFinder, scopes command.ScopeOpener, logger *slog.Logger) *PaymentRequestedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentRequestedHandler{Catalog: catalog, Scopes: scopes, Logger: logger}
}

// Handle charges the stored course price; whatever amount the client had in
// mind is never read.
func (h *PaymentRequestedHandler) Handle(ctx context.Context, event models.PaymentRequested) (models.Response, error) {
	logger := h.Logger.With(slog.String("course_id", event.CourseID), slog.String("student_id", event.StudentID))

	scope, err := h.Scopes.Open(ctx)
	if err != nil {
		return models.Response{}, err
	}
	defer scope.Release()

	course, err := h.Catalog.GetByID(ctx, event.CourseID)
	if errors.Is(err, database.ErrNotFound) {
		scope.Notifications.Publish(ctx, notification.Notification{Key: "Course", Value: msgCourseNotFound})
		return models.NewResponse(scope.Notifications.ResponseErrors()), nil
	}
	if err != nil {
		return models.Response{}, err
	}

	res, err := scope.Dispatcher.Send(ctx, ValidatePaymentCourse{Payment: models.NewPaymentCourse(course.Price, event)})
	if err != nil {
		return models.Response{}, err
	}
	if res.OK() {
		logger.InfoContext(ctx, "payment approved", slog.Int64("total", course.Price))
		return models.Success(), nil
	}

	logger.WarnContext(ctx, "payment not approved", slog.String("result", res.Kind.String()))
	resp := models.NewResponse(scope.Notifications.ResponseErrors())
	if resp.Valid {
		resp = models.Failure(msgPaymentFailed)
	}
	return resp, nil
}
