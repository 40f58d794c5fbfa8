package model

import (
	"database/sql/driver"
	"time"

	"github.com/goccy/go-json"
)

const (
	LogActionManualApprove = "manual_approve"
	LogActionManualReject  = "manual_reject"
)

// ModerationLog 审核日志，只追加
type ModerationLog struct {
	ID             uint64         `gorm:"primaryKey" json:"id"`
	ContentType    string         `gorm:"type:varchar(32);not null;index:idx_content,priority:1" json:"content_type"`
	ContentID      *uint64        `gorm:"index:idx_content,priority:2" json:"content_id"`
	UserID         uint64         `gorm:"not null;index:idx_user_created,priority:1" json:"user_id"`
	Action         string         `gorm:"type:varchar(32);not null;index:idx_action" json:"action"`
	Reason         string         `gorm:"type:varchar(1000)" json:"reason"`
	TriggeredRules TriggeredRules `gorm:"type:json" json:"triggered_rules"`
	SeverityScore  float64        `gorm:"not null;default:0" json:"severity_score"`
	ReviewerID     *uint64        `json:"reviewer_id,omitempty"`
	CreatedAt      time.Time      `gorm:"index:idx_user_created,priority:2" json:"created_at"`
}

func (ModerationLog) TableName() string {
	return "moderation_logs"
}

// TriggeredRule 命中规则快照
type TriggeredRule struct {
	RuleID   uint64     `json:"rule_id"`
	RuleName string     `json:"rule_name"`
	RuleType RuleType   `json:"rule_type"`
	Action   RuleAction `json:"action"`
	Severity float64    `json:"severity"`
	Reason   string     `json:"reason"`
}

type TriggeredRules []TriggeredRule

func (t TriggeredRules) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]TriggeredRule(t))
	return string(b), err
}

func (t *TriggeredRules) Scan(value interface{}) error {
	return scanJSON(value, (*[]TriggeredRule)(t))
}
