package service

import (
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/moderation"
	"Touchstone/internal/pkg/redis"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultSpamWindow     = 10
	defaultSpamDuplicates = 3
)

// DuplicateSpamDetector 按用户统计窗口内相同内容的发布次数
type DuplicateSpamDetector struct {
	norm moderation.Normalizer
}

func NewDuplicateSpamDetector(norm moderation.Normalizer) *DuplicateSpamDetector {
	if norm == nil {
		norm = moderation.LowerNormalizer{}
	}
	return &DuplicateSpamDetector{norm: norm}
}

func (d *DuplicateSpamDetector) Detect(ctx context.Context, in *moderation.Content, cfg moderation.SpamDetectionConfig) (bool, string, error) {
	text := strings.Join(strings.Fields(d.norm.Normalize(in.Title+"\n"+in.Body)), " ")
	if text == "" {
		return false, "", nil
	}

	window := cfg.WindowMinutes
	if window <= 0 {
		window = defaultSpamWindow
	}
	limit := cfg.MaxDuplicates
	if limit <= 0 {
		limit = defaultSpamDuplicates
	}

	sum := sha1.Sum([]byte(text))
	key := consts.SpamFingerprintKey + strconv.FormatUint(in.UserID, 10) + ":" + hex.EncodeToString(sum[:])
	n, err := redis.IncrWithExpire(ctx, key, time.Duration(window)*time.Minute)
	if err != nil {
		return false, "", err
	}
	if n > int64(limit) {
		return true, fmt.Sprintf("%d 分钟内重复发布相同内容 %d 次", window, n), nil
	}
	return false, "", nil
}
