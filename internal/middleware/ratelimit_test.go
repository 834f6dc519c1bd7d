package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/coursecatalog/internal/app/models/dto"
)

func newLimitedRouter(rl *RateLimiter, subject string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	setSubject := func(c *gin.Context) {
		if subject != "" {
			c.Set(ContextKeySubject, subject)
		}
		c.Next()
	}
	router.GET("/", setSubject, rl.Handler(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func requestFrom(router http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_PerClientIP(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, zerolog.Nop())
	router := newLimitedRouter(rl, "")

	assert.Equal(t, http.StatusNoContent, requestFrom(router, "10.0.0.1").Code)

	w := requestFrom(router, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, string(dto.ErrorCodeTooManyRequests), decodeErrorCode(t, w))

	assert.Equal(t, http.StatusNoContent, requestFrom(router, "10.0.0.2").Code)
}

func TestRateLimiter_KeysBySubject(t *testing.T) {
	rl := NewRateLimiter(0.001, 1, zerolog.Nop())
	router := newLimitedRouter(rl, "student-1")

	assert.Equal(t, http.StatusNoContent, requestFrom(router, "10.0.0.1").Code)
	// Same subject from another address shares the bucket.
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(router, "10.0.0.2").Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 10, zerolog.Nop())
	rl.now = func() time.Time { return now }

	rl.getLimiter("old")
	now = now.Add(10 * time.Minute)
	rl.getLimiter("recent")

	assert.Equal(t, 1, rl.Cleanup(5*time.Minute))
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "recent")
	assert.Equal(t, 0, rl.Cleanup(5*time.Minute))
}
