package middleware

import (
	"Touchstone/internal/pkg/logger"
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const traceHeader = "X-Trace-ID"

// TraceMiddleware 沿用上游传入的 trace id，内容服务调用审核接口时可以串起两边日志
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" || len(traceID) > 128 {
			traceID = "req-" + uuid.NewString()
		}

		c.Set(logger.TraceIDKey, traceID)
		//nolint:staticcheck // 与 logger.NewTraceContext 使用同一个字符串 key
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.TraceIDKey, traceID))
		c.Header(traceHeader, traceID)
		c.Next()
	}
}
