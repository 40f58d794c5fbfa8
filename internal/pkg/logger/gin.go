package logger

import (
	"Touchstone/internal/api/config"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type accessLine struct {
	Time        string `json:"time"`
	Level       string `json:"level"`
	Msg         string `json:"msg"`
	TraceID     string `json:"trace_id"`
	LogToken    string `json:"log_token,omitempty"`
	TargetIndex string `json:"target_index,omitempty"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	Status      int    `json:"status"`
	UserID      uint64 `json:"user_id,omitempty"`
	Latency     string `json:"latency"`
}

// SetupGin 访问日志与 panic 恢复，Prometheus 抓取不记录
func SetupGin(r *gin.Engine) {
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Output:    LogWriter,
		SkipPaths: []string{"/metrics"},
		Formatter: func(p gin.LogFormatterParams) string {
			line := accessLine{
				Time:        p.TimeStamp.Format(time.RFC3339),
				Level:       "INFO",
				Msg:         "GIN_ACCESS",
				LogToken:    config.Cfg.Logstash.Token,
				TargetIndex: config.Cfg.Logstash.Index,
				Method:      p.Method,
				Path:        p.Path,
				Status:      p.StatusCode,
				Latency:     p.Latency.String(),
			}
			line.TraceID, _ = p.Keys[TraceIDKey].(string)
			if line.TraceID == "" && p.Request != nil {
				line.TraceID = TraceID(p.Request.Context())
			}
			line.UserID, _ = p.Keys["user_id"].(uint64)
			if p.StatusCode >= 500 {
				line.Level = "ERROR"
			}

			b, err := json.Marshal(line)
			if err != nil {
				return ""
			}
			return string(b) + "\n"
		},
	}))

	r.Use(gin.Recovery())
}
