package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/jsonapi"
)

func APIMiddleware(ctx *gin.Context) {
	ctx.Header("Content-Type", jsonapi.MediaType)
	ctx.Next()
}
