package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"time"
)

const (
	esBodyLimit     = 512
	esSlowThreshold = 300 * time.Millisecond
)

// ESTransport 记录索引同步请求，只有 _update 这类小请求会带上 body
type ESTransport struct {
	Transport http.RoundTripper
}

func (t *ESTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body := peekBody(&req.Body)

	start := time.Now()
	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	attrs := []any{
		log.String("method", req.Method),
		log.String("path", req.URL.Path),
		log.Duration("latency", elapsed),
		log.String("req_body", truncate(body, esBodyLimit)),
	}
	ctx := req.Context()
	if err != nil {
		log.ErrorContext(ctx, "ES request failed", append(attrs, "err", err)...)
		return nil, err
	}

	attrs = append(attrs, log.Int("status", resp.StatusCode))
	switch {
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound:
		// 失败时才读响应，避免每次复制文档
		attrs = append(attrs, log.String("res_body", truncate(peekBody(&resp.Body), esBodyLimit)))
		log.WarnContext(ctx, "ES request rejected", attrs...)
	case elapsed > esSlowThreshold:
		log.WarnContext(ctx, "ES request slow", attrs...)
	default:
		log.DebugContext(ctx, "ES request", attrs...)
	}
	return resp, nil
}

// peekBody 读出 body 后放回一个可重复读取的副本
func peekBody(rc *io.ReadCloser) string {
	if *rc == nil || *rc == http.NoBody {
		return ""
	}
	b, _ := io.ReadAll(*rc)
	_ = (*rc).Close()
	*rc = io.NopCloser(bytes.NewReader(b))
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...[truncated]"
}
