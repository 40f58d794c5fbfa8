package model

import "time"

// UserModerationStat 用户维度的审核累计统计，一行一个用户
type UserModerationStat struct {
	UserID          uint64     `gorm:"primaryKey" json:"user_id"`
	TotalContent    int64      `gorm:"not null;default:0" json:"total_content"`
	ModeratedCount  int64      `gorm:"not null;default:0" json:"moderated_count"`
	RejectedCount   int64      `gorm:"not null;default:0" json:"rejected_count"`
	FlaggedCount    int64      `gorm:"not null;default:0" json:"flagged_count"`
	ViolationScore  float64    `gorm:"not null;default:0;index:idx_violation_score" json:"violation_score"`
	LastViolationAt *time.Time `json:"last_violation_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (UserModerationStat) TableName() string {
	return "user_moderation_stats"
}
