package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const diagnosticsUser = "operator"

// DiagnosticsAuth guards "Check deployment" with HTTP basic auth against a
// bcrypt hash. An empty hash leaves the route open.
func DiagnosticsAuth(passwordHash string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if passwordHash == "" {
			ctx.Next()
			return
		}

		user, password, ok := ctx.Request.BasicAuth()
		if !ok || user != diagnosticsUser ||
			bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
			ctx.Header("WWW-Authenticate", `Basic realm="diagnostics"`)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "diagnostics require operator credentials"})
			return
		}
		ctx.Next()
	}
}
