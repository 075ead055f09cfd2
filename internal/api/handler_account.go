package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"coursehub/internal/identity"
	"coursehub/internal/registration"
	"coursehub/pkg/bus"
	"coursehub/pkg/middleware"
	"coursehub/pkg/models"

	"github.com/gin-gonic/gin"
)

// UserRegisterer runs the registration saga.
type UserRegisterer interface {
	RegisterUser(ctx context.Context, req models.RegisterUserRequest) (models.RegisterUserResponse, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, userName, password string) (identity.Account, error)
}

type TokenIssuer interface {
	Issue(account identity.Account) (string, error)
}

// AccountHandler handles account HTTP requests on the auth service.
type AccountHandler struct {
	Registrar UserRegisterer
	Auth      Authenticator
	Tokens    TokenIssuer
	Logger    *slog.Logger
}

func NewAccountHandler(reg UserRegisterer, auth Authenticator, tokens TokenIssuer, logger *slog.Logger) *AccountHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountHandler{Registrar: reg, Auth: auth, Tokens: tokens, Logger: logger}
}

// Register godoc
// @Summary      Register a user
// @Description  Creates the identity account and the student. Either both exist afterwards or neither does.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      models.RegisterUserRequest  true  "Registration request"
// @Success      201      {object}  models.RegisterUserResponse
// @Failure      400      {object}  models.ErrorResponse
// @Failure      409      {object}  models.ErrorResponse
// @Failure      422      {object}  models.Response
// @Failure      503      {object}  models.ErrorResponse
// @Failure      504      {object}  models.ErrorResponse
// @Router       /accounts [post]
func (h *AccountHandler) Register(c *gin.Context) {
	correlationID := middleware.GetCorrelationID(c)

	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	out, err := h.Registrar.RegisterUser(c.Request.Context(), req)
	if err != nil {
		h.Logger.WarnContext(c.Request.Context(), "registration failed",
			slog.String("correlation_id", correlationID), slog.Any("error", err))
		h.registrationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

func (h *AccountHandler) registrationError(c *gin.Context, err error) {
	var rejected *registration.RejectedError
	var reqErr *bus.RequestError
	switch {
	case errors.Is(err, identity.ErrUserNameTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: identity.ErrUserNameTaken.Error()})
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, rejected.Response)
	case errors.As(err, &reqErr) && reqErr.Kind == bus.KindTimeout:
		c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{Error: "students service did not answer"})
	case errors.As(err, &reqErr):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "students service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to register user"})
	}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for an access token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        request  body      models.LoginRequest  true  "Credentials"
// @Success      200      {object}  models.LoginResponse
// @Failure      400      {object}  models.ErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Router       /accounts/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	account, err := h.Auth.Authenticate(c.Request.Context(), req.UserName, req.Password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.Logger.ErrorContext(c.Request.Context(), "login failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to log in"})
		return
	}

	token, err := h.Tokens.Issue(account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, models.LoginResponse{AccessToken: token})
}
