package model

import (
	"database/sql/driver"
	"time"

	"github.com/goccy/go-json"
)

// UserSimilarity 用户两两相似度，UserLo < UserHi
type UserSimilarity struct {
	UserLo             uint64          `gorm:"primaryKey;autoIncrement:false" json:"user_lo"`
	UserHi             uint64          `gorm:"primaryKey;autoIncrement:false;index:idx_user_hi" json:"user_hi"`
	StaticSimilarity   float64         `gorm:"not null;default:0" json:"static_similarity"`
	BehaviorSimilarity float64         `gorm:"not null;default:0" json:"behavior_similarity"`
	CombinedScore      float64         `gorm:"not null;default:0;index:idx_combined_score" json:"combined_score"`
	CommonInterests    IDList          `gorm:"type:json" json:"common_interests"`
	CommonBehaviors    CommonBehaviors `gorm:"type:json" json:"common_behaviors"`
	LastCalculatedAt   time.Time       `gorm:"not null" json:"last_calculated_at"`
}

func (UserSimilarity) TableName() string {
	return "user_similarities"
}

// Other 返回另一端的用户
func (s *UserSimilarity) Other(userID uint64) uint64 {
	if s.UserLo == userID {
		return s.UserHi
	}
	return s.UserLo
}

// IDList id 数组快照
type IDList []uint64

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uint64(l))
	return string(b), err
}

func (l *IDList) Scan(value interface{}) error {
	return scanJSON(value, (*[]uint64)(l))
}

// CommonBehaviors 各行为类别的共同 id
type CommonBehaviors map[string][]uint64

func (c CommonBehaviors) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string][]uint64(c))
	return string(b), err
}

func (c *CommonBehaviors) Scan(value interface{}) error {
	return scanJSON(value, (*map[string][]uint64)(c))
}
