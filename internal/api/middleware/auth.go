package middleware

import (
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/redis"
	"Touchstone/internal/pkg/response"
	"Touchstone/internal/pkg/security"
	log "log/slog"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 只做校验，token 由账号服务签发
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, "Token 缺失或格式错误")
			return
		}

		claims, err := security.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}

		// 注销的 token 由账号服务按签名写入黑名单
		signature, err := security.ExtractSignature(token)
		if err != nil {
			abortUnauthorized(c, "Token 缺失或格式错误")
			return
		}
		revoked, err := redis.Exists(c.Request.Context(), consts.JwtBlacklistKey+signature)
		if err != nil {
			log.ErrorContext(c.Request.Context(), "check jwt blacklist failed", "err", err)
			response.Fail(c, response.InternalServerError, "系统异常，请稍后重试")
			c.Abort()
			return
		}
		if revoked {
			abortUnauthorized(c, "Token 已注销")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("roles", claims.Roles)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Fail(c, response.Unauthorized, msg)
	c.Abort()
}
