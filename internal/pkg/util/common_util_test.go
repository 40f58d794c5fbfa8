package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage(t *testing.T) {
	limit, offset := Page(0, 0, 20, 100)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = Page(3, 500, 20, 100)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 200, offset)
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "", FormatTime(time.Time{}))
	assert.Equal(t, "", FormatTimePtr(nil))
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-01-02T03:04:05Z", FormatTimePtr(&ts))
}

func TestValidateDTO(t *testing.T) {
	type req struct {
		Kind string `validate:"required,oneof=post comment"`
	}
	assert.NoError(t, ValidateDTO(&req{Kind: "post"}))
	assert.Error(t, ValidateDTO(&req{Kind: "video"}))
	assert.Error(t, ValidateDTO(&req{}))

	type body struct {
		ContentType string `json:"content_type" validate:"required"`
		UserID      uint64 `json:"user_id" validate:"required"`
	}
	err := ValidateDTO(&body{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content_type:required")
	assert.Contains(t, err.Error(), "user_id:required")
}

func TestStrSliceToUInt64Slice(t *testing.T) {
	ids, err := StrSliceToUInt64Slice([]string{"1", "42"})
	assert.NoError(t, err)
	assert.Equal(t, []uint64{1, 42}, ids)

	_, err = StrSliceToUInt64Slice([]string{"x"})
	assert.Error(t, err)

	assert.Equal(t, []interface{}{"7"}, UInt64SliceToAny([]uint64{7}))
}
