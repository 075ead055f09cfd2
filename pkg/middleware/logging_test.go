package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(CorrelationID(), RequestLogger(logger))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(CorrelationIDHeader, "abc")
	r.ServeHTTP(w, req)

	out := buf.String()
	for _, want := range []string{"level=ERROR", "path=/boom", "status=500", "correlation_id=abc"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log line %q", want, out)
		}
	}
}
