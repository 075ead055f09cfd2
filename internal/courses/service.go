package courses

import (
	"context"
	"log/slog"

	"coursehub/pkg/command"
	"coursehub/pkg/models"
)

const msgEnrollmentFailed = "Falha ao processar matrícula"

// Service runs enrollment requests coming from the HTTP API.
type Service struct {
	Scopes command.ScopeOpener
	Logger *slog.Logger
}

func NewService(scopes command.ScopeOpener, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Scopes: scopes, Logger: logger}
}

// Enroll buys courseID for the student in req. The Result tells callers
// why an enrollment did not happen; the envelope carries the messages.
func (s *Service) Enroll(ctx context.Context, courseID string, req models.EnrollRequest) (command.Result, models.Response, error) {
	scope, err := s.Scopes.Open(ctx)
	if err != nil {
		return command.Result{}, models.Response{}, err
	}
	defer scope.Release()

	res, err := scope.Dispatcher.Send(ctx, ValidatePaymentCourse{
		CourseID:           courseID,
		StudentID:          req.StudentID,
		CardName:           req.CardName,
		CardNumber:         req.CardNumber,
		CardExpirationDate: req.CardExpirationDate,
		CardCVV:            req.CardCVV,
	})
	if err != nil {
		return res, models.Response{}, err
	}
	if res.OK() {
		s.Logger.InfoContext(ctx, "student enrolled",
			slog.String("course_id", courseID), slog.String("student_id", req.StudentID))
		return res, models.Success(), nil
	}

	resp := models.NewResponse(scope.Notifications.ResponseErrors())
	if resp.Valid {
		resp = models.Failure(msgEnrollmentFailed)
	}
	return res, resp, nil
}
