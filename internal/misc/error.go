package misc

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/jsonapi"
	"github.com/pkg/errors"
)

// ConfigError means the plugin is not configured well enough to talk to Telegram
type ConfigError struct {
	Message string
}

func (err *ConfigError) Error() string {
	return err.Message
}

// ValidationError means a required request field is missing or malformed
type ValidationError struct {
	Field   string
	Message string
}

func (err *ValidationError) Error() string {
	return err.Message
}

// NewConfigError returns a ConfigError carrying a stack trace
func NewConfigError(message string) error {
	return errors.WithStack(&ConfigError{Message: message})
}

// NewValidationError returns a ValidationError carrying a stack trace
func NewValidationError(field string, message string) error {
	return errors.WithStack(&ValidationError{Field: field, Message: message})
}

// IsConfigError reports whether err wraps a ConfigError
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func ReturnError(ctx *gin.Context, status int, title string, code string, detail string) {
	ctx.Header("Content-Type", jsonapi.MediaType)
	ctx.Status(status)
	if err := jsonapi.MarshalErrors(ctx.Writer, []*jsonapi.ErrorObject{{
		Title:  title,
		Code:   code,
		Status: strconv.Itoa(status),
		Detail: detail,
	}}); err != nil {
		http.Error(ctx.Writer, err.Error(), http.StatusInternalServerError)
	}
	ctx.Abort()
}

func ReturnStandardError(ctx *gin.Context, status int, detail string) {
	switch status {
	case http.StatusUnauthorized:
		ReturnError(ctx, status, "hook secret is missing or invalid", "error.unauthorized", detail)
	case http.StatusBadRequest:
		ReturnError(ctx, status, "errors occurred when processing request", "error.bad_request", detail)
	case http.StatusNotFound:
		ReturnError(ctx, status, "requested or related resources cannot be found", "error.not_found", detail)
	default:
		ReturnError(ctx, http.StatusInternalServerError, "something unexpected happened at the server side", "error.internal", detail)
	}
}
