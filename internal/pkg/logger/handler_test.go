package logger

import (
	"bytes"
	"context"
	log "log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteFilterHandler(t *testing.T) {
	var local, remote bytes.Buffer
	h := &ContextHandler{&TeeHandler{handlers: []log.Handler{
		log.NewJSONHandler(&local, nil),
		&RemoteFilterHandler{next: log.NewJSONHandler(&remote, nil)},
	}}}
	l := log.New(h)

	l.Info("boot")
	l.InfoContext(NewTraceContext(context.Background(), "job-heat_full"), "batch done")
	l.Warn("config fallback")

	assert.Equal(t, 3, strings.Count(local.String(), "\n"))
	out := remote.String()
	assert.NotContains(t, out, "boot")
	assert.Contains(t, out, `"trace_id":"job-heat_full-`)
	assert.Contains(t, out, "config fallback")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...[truncated]", truncate("abc", 2))
}
