package middleware

import (
	"errors"
	"net/http"

	"contact-form-service/internal/delivery/http/response"
	"contact-form-service/pkg/apperror"
	"contact-form-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed",
					"request_id", c.GetString(RequestIDKey),
					"status", appErr.Code,
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
			return
		}

		// Internal details are logged, never returned to the client
		logger.Log.Error("Internal Server Error",
			"request_id", c.GetString(RequestIDKey),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
