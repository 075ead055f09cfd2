package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"coursehub/pkg/bus"
	"coursehub/pkg/command"
	"coursehub/pkg/database"
	"coursehub/pkg/models"
)

type mockEnroller struct {
	courseID string
	req      models.EnrollRequest
	res      command.Result
	resp     models.Response
	err      error
}

func (m *mockEnroller) Enroll(ctx context.Context, courseID string, req models.EnrollRequest) (command.Result, models.Response, error) {
	m.courseID, m.req = courseID, req
	return m.res, m.resp, m.err
}

const enrollBody = `{"studentId":"s-1","cardName":"ANA SOUZA","cardNumber":"4532015112830366","cardExpirationDate":"12/29","cardCvv":"123","total":1}`

func TestEnroll_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		enroller   *mockEnroller
		wantStatus int
	}{
		{"enrolled", &mockEnroller{res: command.Result{Kind: command.Succeeded}, resp: models.Success()}, http.StatusCreated},
		{"course missing", &mockEnroller{res: command.Result{Kind: command.NotFound}, resp: models.Failure("Curso não encontrado")}, http.StatusNotFound},
		{"declined", &mockEnroller{res: command.Result{Kind: command.Rejected}, resp: models.Failure("recusado")}, http.StatusUnprocessableEntity},
		{"not committed", &mockEnroller{res: command.Result{Kind: command.NotCommitted}, resp: models.Failure("Falha ao processar matrícula")}, http.StatusInternalServerError},
		{"duplicate", &mockEnroller{err: fmt.Errorf("%w: enrollment", database.ErrDuplicate)}, http.StatusConflict},
		{"payments down", &mockEnroller{err: &bus.RequestError{Kind: bus.KindUnroutable, Err: bus.ErrUnroutable}}, http.StatusServiceUnavailable},
		{"unexpected", &mockEnroller{err: errors.New("boom")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewCoursesRouter(NewEnrollmentHandler(tt.enroller, nil))
			w := postJSON(router, "/courses/c-1/enrollments", enrollBody, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestEnroll_BindsPathAndBody(t *testing.T) {
	enroller := &mockEnroller{res: command.Result{Kind: command.Succeeded}, resp: models.Success()}
	router := NewCoursesRouter(NewEnrollmentHandler(enroller, nil))

	w := postJSON(router, "/courses/c-1/enrollments", enrollBody, nil)
	if enroller.courseID != "c-1" || enroller.req.StudentID != "s-1" || enroller.req.CardCVV != "123" {
		t.Errorf("request not bound: %s %+v", enroller.courseID, enroller.req)
	}

	var resp models.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !resp.Valid || len(resp.Errors) != 0 {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}
