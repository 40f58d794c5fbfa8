package logger

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	"gorm.io/gorm/logger"
)

const gormSQLLimit = 1024

// SlogGormLogger 批量 upsert 的 SQL 很长，日志里截断
type SlogGormLogger struct {
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

// NewGormLogger 默认只记录 Warn 以上
func NewGormLogger() *SlogGormLogger {
	return &SlogGormLogger{LogLevel: logger.Warn, SlowThreshold: 200 * time.Millisecond}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		log.InfoContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		log.WarnContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		log.ErrorContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, logger.ErrRecordNotFound) && l.LogLevel >= logger.Error
	slow := l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn
	if !failed && !slow && l.LogLevel < logger.Info {
		return
	}

	sql, rows := fc()
	op, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	attrs := []any{
		log.String("op", strings.ToUpper(op)),
		log.String("sql", truncate(sql, gormSQLLimit)),
		log.Duration("latency", elapsed),
		log.Int64("rows", rows),
	}
	switch {
	case failed:
		log.ErrorContext(ctx, "MySQL error", append(attrs, "err", err)...)
	case slow:
		log.WarnContext(ctx, "MySQL slow", attrs...)
	default:
		log.InfoContext(ctx, "MySQL", attrs...)
	}
}
