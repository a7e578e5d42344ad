package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/klass-lk/blogboot/internal/apperror"
)

// SendError writes err as {error_code, message}. Errors that are not
// ApiErrors are logged and answered with a generic 500.
func SendError(c *gin.Context, err error) {
	apiErr, ok := apperror.As(err)
	if !ok {
		slog.ErrorContext(c.Request.Context(), "unhandled error",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error_code": apperror.ErrInternal.ErrorCode,
			"message":    "An unknown error occurred",
		})
		return
	}

	status := apiErr.StatusCode()
	if status >= http.StatusInternalServerError && apiErr.Cause != nil {
		slog.ErrorContext(c.Request.Context(), apiErr.Message,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", apiErr.Cause,
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error_code": apiErr.ErrorCode,
		"message":    apiErr.Message,
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
	}
	return "Invalid request: " + strings.Join(fields, ", ")
}
