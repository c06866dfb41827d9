package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"contact-form-service/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	// CSRFTokenCookieName is the name of the cookie that stores the CSRF token
	CSRFTokenCookieName = "csrf_token"
	// CSRFTokenHeaderName is the header API clients echo the token in
	CSRFTokenHeaderName = "X-CSRF-Token"
	// CSRFTokenFormField is the hidden input HTML forms echo the token in
	CSRFTokenFormField = "csrf_token"
	// CSRFTokenContextKey exposes the current token to handlers rendering forms
	CSRFTokenContextKey = "CSRFToken"
	// CSRFTokenLength is the length of the generated token in bytes (32 bytes = 64 hex chars)
	CSRFTokenLength = 32
	// CSRFTokenExpiry is how long the token is valid
	CSRFTokenExpiry = 24 * time.Hour
)

// generateCSRFToken creates a cryptographically secure random token
func generateCSRFToken() (string, error) {
	bytes := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRFMiddleware implements the double-submit cookie pattern.
//
// Every request gets a csrf_token cookie if it has none. State-changing
// requests must echo the cookie value in the X-CSRF-Token header or in the
// csrf_token form field. The token is stored in the gin context under
// CSRFTokenContextKey so pages can embed it.
func CSRFMiddleware(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		csrfCookie, err := c.Cookie(CSRFTokenCookieName)

		if err != nil || csrfCookie == "" {
			newToken, err := generateCSRFToken()
			if err != nil {
				_ = c.Error(apperror.Internal(err))
				c.Abort()
				return
			}

			// SameSite=Lax keeps the cookie off cross-site subrequests
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(
				CSRFTokenCookieName,
				newToken,
				int(CSRFTokenExpiry.Seconds()),
				"/",
				"",
				secureCookie,
				false, // readable by JS so API clients can echo it
			)
			csrfCookie = newToken
		}
		c.Set(CSRFTokenContextKey, csrfCookie)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		submitted := c.GetHeader(CSRFTokenHeaderName)
		if submitted == "" {
			submitted = c.PostForm(CSRFTokenFormField)
		}

		if submitted == "" {
			_ = c.Error(apperror.Forbidden("Missing CSRF token"))
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(submitted), []byte(csrfCookie)) != 1 {
			_ = c.Error(apperror.Forbidden("Invalid CSRF token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
