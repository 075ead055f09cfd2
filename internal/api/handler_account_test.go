package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coursehub/internal/identity"
	"coursehub/internal/registration"
	"coursehub/pkg/bus"
	"coursehub/pkg/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockRegistrar struct {
	got           models.RegisterUserRequest
	correlationID string
	out           models.RegisterUserResponse
	err           error
}

func (m *mockRegistrar) RegisterUser(ctx context.Context, req models.RegisterUserRequest) (models.RegisterUserResponse, error) {
	m.got = req
	m.correlationID = bus.CorrelationID(ctx)
	return m.out, m.err
}

type mockAuth struct {
	account identity.Account
	err     error
}

func (m *mockAuth) Authenticate(ctx context.Context, userName, password string) (identity.Account, error) {
	return m.account, m.err
}

type mockTokens struct{}

func (mockTokens) Issue(a identity.Account) (string, error) { return "token-for-" + a.ID, nil }

const registerBody = `{"firstName":"Ana","lastName":"Souza","userName":"ana@example.com","password":"s3cret-pass","dateOfBirth":"1999-04-12T00:00:00Z"}`

func postJSON(router http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRegister_Success(t *testing.T) {
	reg := &mockRegistrar{out: models.RegisterUserResponse{ID: "acc-1", UserName: "ana@example.com", AccessToken: "tok"}}
	router := NewAuthRouter(NewAccountHandler(reg, &mockAuth{}, mockTokens{}, nil))

	w := postJSON(router, "/accounts", registerBody, map[string]string{"X-Correlation-ID": "corr-1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var out models.RegisterUserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if out.ID != "acc-1" || out.AccessToken != "tok" {
		t.Errorf("unexpected response: %+v", out)
	}
	if reg.got.UserName != "ana@example.com" || reg.got.DateOfBirth.Year() != 1999 {
		t.Errorf("request not bound: %+v", reg.got)
	}
	if reg.correlationID != "corr-1" {
		t.Errorf("expected correlation id on the saga context, got %q", reg.correlationID)
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	reg := &mockRegistrar{}
	router := NewAuthRouter(NewAccountHandler(reg, &mockAuth{}, mockTokens{}, nil))

	w := postJSON(router, "/accounts", `{"userName":"not-an-email"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if reg.got.UserName != "" {
		t.Error("saga must not run for an invalid body")
	}
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"user name taken", errors.Join(identity.ErrUserNameTaken), http.StatusConflict},
		{"student rejected", &registration.RejectedError{Response: models.Failure("Falha ao cadastrar estudante")}, http.StatusUnprocessableEntity},
		{"timeout", &bus.RequestError{Kind: bus.KindTimeout, Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
		{"unroutable", &bus.RequestError{Kind: bus.KindUnroutable, Err: bus.ErrUnroutable}, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewAuthRouter(NewAccountHandler(&mockRegistrar{err: tt.err}, &mockAuth{}, mockTokens{}, nil))
			w := postJSON(router, "/accounts", registerBody, nil)
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRegister_RejectedReturnsEnvelope(t *testing.T) {
	err := &registration.RejectedError{Response: models.Failure("Operação cancelada")}
	router := NewAuthRouter(NewAccountHandler(&mockRegistrar{err: err}, &mockAuth{}, mockTokens{}, nil))

	w := postJSON(router, "/accounts", registerBody, nil)
	var resp models.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Valid || resp.Errors[0].Message != "Operação cancelada" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		auth       *mockAuth
		body       string
		wantStatus int
	}{
		{"ok", &mockAuth{account: identity.Account{ID: "acc-1"}}, `{"userName":"ana@example.com","password":"s3cret-pass"}`, http.StatusOK},
		{"bad credentials", &mockAuth{err: identity.ErrInvalidCredentials}, `{"userName":"ana@example.com","password":"nope"}`, http.StatusUnauthorized},
		{"missing password", &mockAuth{}, `{"userName":"ana@example.com"}`, http.StatusBadRequest},
		{"store down", &mockAuth{err: errors.New("db down")}, `{"userName":"ana@example.com","password":"x"}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewAuthRouter(NewAccountHandler(&mockRegistrar{}, tt.auth, mockTokens{}, nil))
			w := postJSON(router, "/accounts/login", tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var out models.LoginResponse
				if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil || out.AccessToken != "token-for-acc-1" {
					t.Errorf("unexpected body %s (%v)", w.Body.String(), err)
				}
			}
		})
	}
}
