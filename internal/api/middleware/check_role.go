package middleware

import (
	"Touchstone/internal/pkg/response"
	"Touchstone/internal/pkg/security"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// CheckRoles 需要先经过 AuthMiddleware
func CheckRoles(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !security.HasAnyRole(c.GetStringSlice("roles"), allowed...) {
			log.WarnContext(c.Request.Context(), "role check rejected", "user_id", c.GetUint64("user_id"), "path", c.FullPath())
			response.Fail(c, response.Forbidden, "权限不足：仅审核员或管理员可操作")
			c.Abort()
			return
		}
		c.Next()
	}
}
