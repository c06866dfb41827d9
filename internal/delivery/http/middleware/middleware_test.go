package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contact-form-service/internal/delivery/http/middleware"
	"contact-form-service/internal/domain"
	"contact-form-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorHandler())
	r.Use(handlers...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.RequestIDKey))
	})

	t.Run("Should generate an id", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
		assert.Equal(t, rec.Header().Get(middleware.RequestIDHeader), rec.Body.String())
	})

	t.Run("Should reuse the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "abc-123")
		rec := serve(r, req)
		assert.Equal(t, "abc-123", rec.Body.String())
	})

	t.Run("Should replace an oversized id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, strings.Repeat("a", 500))
		rec := serve(r, req)
		assert.Len(t, rec.Body.String(), 36)
	})

	t.Run("Should expose the id on the request context", func(t *testing.T) {
		r := newEngine()
		r.GET("/ctx", func(c *gin.Context) {
			c.String(http.StatusOK, domain.RequestIDFrom(c.Request.Context()))
		})
		req := httptest.NewRequest(http.MethodGet, "/ctx", nil)
		req.Header.Set(middleware.RequestIDHeader, "ctx-42")
		rec := serve(r, req)
		assert.Equal(t, "ctx-42", rec.Body.String())
	})
}

func TestErrorHandler(t *testing.T) {
	r := newEngine()
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperror.NotFound("Form session not found or expired"))
	})
	r.GET("/raw", func(c *gin.Context) {
		_ = c.Error(errors.New("database password is hunter2"))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/app", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Form session not found or expired")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestRateLimitInMemory(t *testing.T) {
	cfg := middleware.DefaultRateLimitConfig(3, time.Minute)
	r := newEngine(middleware.RateLimitMiddleware(cfg, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other clients have their own budget
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestCORS(t *testing.T) {
	r := newEngine(middleware.CORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: []string{"https://example.com"},
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("Should allow a listed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://example.com")
		rec := serve(r, req)
		assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Should refuse preflight from other origins", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := serve(r, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Should ignore localhost outside development", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := serve(r, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCSRFHeader(t *testing.T) {
	r := newEngine(middleware.CSRFMiddleware(false))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "token"})
	req.Header.Set(middleware.CSRFTokenHeaderName, "token")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "token"})
	req.Header.Set(middleware.CSRFTokenHeaderName, "other")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(middleware.SecurityHeadersMiddleware(true))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "form-action 'self'")
}
