package moderation

import (
	log "log/slog"
	"strings"

	"github.com/liuzl/gocc"
)

// Normalizer 匹配前的文本归一化
type Normalizer interface {
	Normalize(s string) string
}

// LowerNormalizer 只做小写
type LowerNormalizer struct{}

func (LowerNormalizer) Normalize(s string) string {
	return strings.ToLower(s)
}

// ChineseNormalizer 小写并繁转简，转换失败时退回小写
type ChineseNormalizer struct {
	t2s *gocc.OpenCC
}

// NewChineseNormalizer 字典不可用时返回只做小写的实现
func NewChineseNormalizer() Normalizer {
	t2s, err := gocc.New("t2s")
	if err != nil {
		log.Warn("gocc t2s unavailable, falling back to lower-case matching", "err", err)
		return LowerNormalizer{}
	}
	return &ChineseNormalizer{t2s: t2s}
}

func (n *ChineseNormalizer) Normalize(s string) string {
	s = strings.ToLower(s)
	out, err := n.t2s.Convert(s)
	if err != nil {
		return s
	}
	return out
}
