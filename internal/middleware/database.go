package middleware

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DatabaseMiddleware exposes the shared connection as "DB"
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("DB", db.WithContext(ctx.Request.Context()))
		ctx.Next()
	}
}
