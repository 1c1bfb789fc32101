package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"telegram-notifier/internal/misc"
)

// HookSecretHeader carries the secret shared with the form platform
const HookSecretHeader = "X-Hook-Secret"

// HookMiddleware rejects webhook calls without the shared secret
func HookMiddleware(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		given := ctx.GetHeader(HookSecretHeader)
		if given == "" {
			misc.ReturnStandardError(ctx, http.StatusUnauthorized, "hook secret missing")
			return
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			misc.ReturnStandardError(ctx, http.StatusUnauthorized, "hook secret invalid")
			return
		}
		ctx.Next()
	}
}
