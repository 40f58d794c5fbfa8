package util

import (
	"strconv"
	"time"
)

const TimeLayout = time.RFC3339

// FormatTime 零值返回空串
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// FormatTimePtr 同 FormatTime，nil 返回空串
func FormatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTime(*t)
}

// Page 规范化页码，返回 limit 和 offset
func Page(page, pageSize, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return pageSize, (page - 1) * pageSize
}

// ParseUint64 解析路径参数
func ParseUint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// FormatUint64 id 转字符串，redis 成员和键后缀使用
func FormatUint64(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// StrSliceToUInt64Slice redis 集合成员转 id
func StrSliceToUInt64Slice(strs []string) ([]uint64, error) {
	out := make([]uint64, 0, len(strs))
	for _, s := range strs {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// UInt64SliceToAny 转为 redis 可变参数
func UInt64SliceToAny(ids []uint64) []interface{} {
	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatUint(id, 10))
	}
	return out
}
