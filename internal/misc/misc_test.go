package misc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetQuery(t *testing.T) {
	params := map[string]string{"notice_message": "Telegram Notifier: success!", "notice_status": "success"}
	tests := []struct {
		name     string
		rawURL   string
		fallback string
		want     string
	}{
		{"plain", "http://example.com/admin", "/", "http://example.com/admin?notice_message=Telegram+Notifier%3A+success%21&notice_status=success"},
		{"keeps other parameters", "/admin?orderby=username", "/", "/admin?notice_message=Telegram+Notifier%3A+success%21&notice_status=success&orderby=username"},
		{"replaces parameters", "/admin?notice_status=error&notice_status=info", "/", "/admin?notice_message=Telegram+Notifier%3A+success%21&notice_status=success"},
		{"empty uses fallback", "", "/admin", "/admin?notice_message=Telegram+Notifier%3A+success%21&notice_status=success"},
		{"unparsable uses fallback", "http://[::1", "/admin", "/admin?notice_message=Telegram+Notifier%3A+success%21&notice_status=success"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SetQuery(tt.rawURL, tt.fallback, params))
		})
	}
}

func TestErrors(t *testing.T) {
	configErr := NewConfigError("no bot key")
	assert.Equal(t, "no bot key", configErr.Error())
	assert.True(t, IsConfigError(configErr))
	assert.True(t, IsConfigError(errors.Wrap(configErr, "cannot poll")))
	assert.False(t, IsValidationError(configErr))

	validationErr := NewValidationError("id", `"id" is required`)
	assert.Equal(t, `"id" is required`, validationErr.Error())
	assert.True(t, IsValidationError(validationErr))
	assert.False(t, IsConfigError(validationErr))

	var target *ValidationError
	require.True(t, errors.As(validationErr, &target))
	assert.Equal(t, "id", target.Field)

	assert.False(t, IsConfigError(errors.New("plain")))
	assert.False(t, IsValidationError(nil))
}

func TestReturnStandardError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		status int
		want   int
		code   string
	}{
		{http.StatusUnauthorized, http.StatusUnauthorized, "error.unauthorized"},
		{http.StatusBadRequest, http.StatusBadRequest, "error.bad_request"},
		{http.StatusNotFound, http.StatusNotFound, "error.not_found"},
		{http.StatusTeapot, http.StatusInternalServerError, "error.internal"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ReturnStandardError(ctx, tt.status, "detail")

			assert.True(t, ctx.IsAborted())
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "application/vnd.api+json", w.Header().Get("Content-Type"))
			var document struct {
				Errors []struct {
					Code   string `json:"code"`
					Status string `json:"status"`
					Detail string `json:"detail"`
				} `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &document))
			require.Len(t, document.Errors, 1)
			assert.Equal(t, tt.code, document.Errors[0].Code)
			assert.Equal(t, "detail", document.Errors[0].Detail)
		})
	}
}

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	previous := logger
	t.Cleanup(func() { logger = previous })

	buf := &bytes.Buffer{}
	InitLogger(buf, false)
	Logger("admin").Debug("hidden")
	Logger("admin").Info("shown", "error", errors.New("boom"))
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=admin")
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	InitLogger(buf, true)
	Logger("cron").Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
