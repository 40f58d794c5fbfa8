package dto

// UserModerationStatDTO 用户审核统计
type UserModerationStatDTO struct {
	UserID          uint64  `json:"user_id"`
	TotalContent    int64   `json:"total_content"`
	ModeratedCount  int64   `json:"moderated_count"`
	RejectedCount   int64   `json:"rejected_count"`
	FlaggedCount    int64   `json:"flagged_count"`
	ViolationScore  float64 `json:"violation_score"`
	LastViolationAt string  `json:"last_violation_at,omitempty"`
}

// ModerationOverviewDTO 审核总览
type ModerationOverviewDTO struct {
	QueueByStatus     map[string]int64         `json:"queue_by_status"`
	PendingByPriority map[string]int64         `json:"pending_by_priority"`
	ActionsLast24h    map[string]int64         `json:"actions_last_24h"`
	TopViolators      []*UserModerationStatDTO `json:"top_violators"`
	SnapshotVersion   uint64                   `json:"snapshot_version"`
}
