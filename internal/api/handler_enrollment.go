package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"coursehub/pkg/bus"
	"coursehub/pkg/command"
	"coursehub/pkg/database"
	"coursehub/pkg/middleware"
	"coursehub/pkg/models"

	"github.com/gin-gonic/gin"
)

// Enroller runs the payment saga for one course purchase.
type Enroller interface {
	Enroll(ctx context.Context, courseID string, req models.EnrollRequest) (command.Result, models.Response, error)
}

// EnrollmentHandler handles enrollment HTTP requests on the courses service.
type EnrollmentHandler struct {
	Enroller Enroller
	Logger   *slog.Logger
}

func NewEnrollmentHandler(e Enroller, logger *slog.Logger) *EnrollmentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrollmentHandler{Enroller: e, Logger: logger}
}

// Enroll godoc
// @Summary      Buy a course
// @Description  Charges the stored course price and enrolls the student
// @Tags         enrollments
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Course ID"
// @Param        request  body      models.EnrollRequest  true  "Card details"
// @Success      201      {object}  models.Response
// @Failure      400      {object}  models.ErrorResponse
// @Failure      404      {object}  models.Response
// @Failure      409      {object}  models.ErrorResponse
// @Failure      422      {object}  models.Response
// @Failure      503      {object}  models.ErrorResponse
// @Router       /courses/{id}/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)
	courseID := c.Param("id")

	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	res, resp, err := h.Enroller.Enroll(c.Request.Context(), courseID, req)
	if err != nil {
		h.Logger.WarnContext(c.Request.Context(), "enrollment failed",
			slog.String("course_id", courseID),
			slog.String("correlation_id", correlationID),
			slog.Any("error", err))

		var reqErr *bus.RequestError
		switch {
		case errors.Is(err, database.ErrDuplicate):
			c.JSON(http.StatusConflict, models.ErrorResponse{Error: "student already enrolled in this course"})
		case errors.As(err, &reqErr):
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "payments service unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to enroll"})
		}
		return
	}

	switch res.Kind {
	case command.Succeeded:
		c.JSON(http.StatusCreated, resp)
	case command.NotFound:
		c.JSON(http.StatusNotFound, resp)
	case command.Rejected:
		c.JSON(http.StatusUnprocessableEntity, resp)
	default:
		c.JSON(http.StatusInternalServerError, resp)
	}
}
