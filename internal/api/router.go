package api

import (
	"log/slog"
	"net/http"

	_ "coursehub/docs"
	"coursehub/pkg/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func newEngine(logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// NewAuthRouter creates the auth service router.
func NewAuthRouter(h *AccountHandler) *gin.Engine {
	r := newEngine(h.Logger)
	r.POST("/accounts", h.Register)
	r.POST("/accounts/login", h.Login)
	return r
}

// NewCoursesRouter creates the courses service router.
func NewCoursesRouter(h *EnrollmentHandler) *gin.Engine {
	r := newEngine(h.Logger)
	r.POST("/courses/:id/enrollments", h.Enroll)
	return r
}
