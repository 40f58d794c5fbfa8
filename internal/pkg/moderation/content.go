package moderation

import (
	"Touchstone/internal/model"
	"context"
	"time"
)

const (
	FieldContent = "content"
	FieldTitle   = "title"
)

// Content 待审核内容
type Content struct {
	ContentType string
	ContentID   *uint64
	UserID      uint64
	Title       string
	Body        string
}

func (c *Content) Field(name string) string {
	if name == FieldTitle {
		return c.Title
	}
	return c.Body
}

// SpamDetector 垃圾内容检测后端
type SpamDetector interface {
	Detect(ctx context.Context, in *Content, cfg SpamDetectionConfig) (hit bool, reason string, err error)
}

// ViolationSource 用户违规历史
type ViolationSource interface {
	CountViolationsSince(ctx context.Context, userID uint64, since time.Time) (int64, error)
	ViolationScore(ctx context.Context, userID uint64) (float64, error)
}

// LogSink 审核日志写入
type LogSink interface {
	WriteLog(ctx context.Context, entry *model.ModerationLog) error
}
