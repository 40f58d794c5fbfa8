package model

import "time"

type RuleType string

const (
	RuleTypeKeywordFilter    RuleType = "keyword_filter"
	RuleTypeContentLength    RuleType = "content_length"
	RuleTypeSpamDetection    RuleType = "spam_detection"
	RuleTypeBehaviorAnalysis RuleType = "behavior_analysis"
)

type RuleAction string

const (
	RuleActionPass   RuleAction = "pass"
	RuleActionQueue  RuleAction = "queue"
	RuleActionReject RuleAction = "reject"
)

// ModerationRule 审核规则，Config 结构随 Type 变化
type ModerationRule struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name"`
	Type          RuleType   `gorm:"type:varchar(32);not null" json:"type"`
	Config        JSONRaw    `gorm:"type:json;not null" json:"config"`
	SeverityScore float64    `gorm:"not null;default:0" json:"severity_score"`
	Action        RuleAction `gorm:"type:varchar(16);not null;default:'queue'" json:"action"`
	Priority      int        `gorm:"not null;default:0;index:idx_active_priority,priority:2" json:"priority"`
	IsActive      bool       `gorm:"type:tinyint(1);not null;default:1;index:idx_active_priority,priority:1" json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (ModerationRule) TableName() string {
	return "moderation_rules"
}
