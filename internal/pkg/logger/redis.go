package logger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = 50 * time.Millisecond

// RedisLoggerHook 记录失败与慢命令，redis.Nil 不算错误
type RedisLoggerHook struct {
	slow time.Duration
}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{slow: redisSlowThreshold}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis dial failed", "addr", addr, "err", err)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		s.report(ctx, time.Since(start), err, 1, cmd)
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		var first redis.Cmder
		if len(cmds) > 0 {
			first = cmds[0]
		}
		s.report(ctx, time.Since(start), err, len(cmds), first)
		return err
	}
}

func (s *RedisLoggerHook) report(ctx context.Context, elapsed time.Duration, err error, count int, cmd redis.Cmder) {
	// 旧版本服务端不支持 CLIENT SETINFO，连接仍可用
	if errors.Is(err, redis.Nil) || (cmd != nil && cmd.Name() == "client" && err != nil && strings.Contains(err.Error(), "setinfo")) {
		err = nil
	}
	if err == nil && elapsed <= s.slow {
		return
	}

	attrs := []any{log.Duration("latency", elapsed), log.Int("cmd_count", count)}
	if cmd != nil {
		attrs = append(attrs, log.String("command", cmd.Name()), log.String("args", redisArgs(cmd)))
	}
	if err != nil {
		log.ErrorContext(ctx, "Redis command failed", append(attrs, "err", err)...)
		return
	}
	log.WarnContext(ctx, "Redis command slow", attrs...)
}

func redisArgs(cmd redis.Cmder) string {
	switch cmd.Name() {
	case "auth", "hello":
		return "[PROTECTED]"
	}
	return truncate(fmt.Sprint(cmd.Args()...), 256)
}
