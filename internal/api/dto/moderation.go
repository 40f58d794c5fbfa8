package dto

// ModerationCheckReq 发布前审核请求，HTTP 与 Kafka 共用
type ModerationCheckReq struct {
	ContentType string  `json:"content_type" validate:"required,oneof=post comment"`
	ContentID   *uint64 `json:"content_id"`
	UserID      uint64  `json:"user_id" validate:"required"`
	Title       string  `json:"title" validate:"max=255"`
	Content     string  `json:"content"`
}

// TriggeredRuleDTO 命中的规则
type TriggeredRuleDTO struct {
	RuleID   uint64  `json:"rule_id"`
	RuleName string  `json:"rule_name"`
	RuleType string  `json:"rule_type"`
	Action   string  `json:"action"`
	Severity float64 `json:"severity"`
	Reason   string  `json:"reason"`
}

// ModerationResultDTO 审核结论
type ModerationResultDTO struct {
	Status         string              `json:"status"` // approved, pending, rejected
	Action         string              `json:"action"`
	SeverityScore  float64             `json:"severity_score"`
	Reason         string              `json:"reason"`
	TriggeredRules []*TriggeredRuleDTO `json:"triggered_rules"`
	Degraded       bool                `json:"degraded"`
	QueuePriority  string              `json:"queue_priority,omitempty"`
}

// EnqueueReviewReq 调用方持久化内容后补充入队
type EnqueueReviewReq struct {
	ContentType   string  `json:"content_type" validate:"required,oneof=post comment"`
	ContentID     uint64  `json:"content_id" validate:"required"`
	UserID        uint64  `json:"user_id" validate:"required"`
	SeverityScore float64 `json:"severity_score" validate:"min=0"`
	Reason        string  `json:"reason" validate:"max=1000"`
}
