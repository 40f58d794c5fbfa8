package model

import "time"

// SensitiveTerm 敏感词
type SensitiveTerm struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Term      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_term" json:"term"`
	Category  string    `gorm:"type:varchar(50);not null;default:'general';index:idx_category" json:"category"`
	Severity  int       `gorm:"type:tinyint;not null;default:1" json:"severity"` // 1一般 2中等 3严重
	IsActive  bool      `gorm:"type:tinyint(1);not null;default:1" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SensitiveTerm) TableName() string {
	return "sensitive_terms"
}
