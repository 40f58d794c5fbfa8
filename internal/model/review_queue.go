package model

import "time"

const (
	ContentTypePost    = "post"
	ContentTypeComment = "comment"
)

const (
	QueuePriorityNormal = "normal"
	QueuePriorityHigh   = "high"
	QueuePriorityUrgent = "urgent"
)

const (
	QueueStatusPending  = "pending"
	QueueStatusAssigned = "assigned"
	QueueStatusApproved = "approved"
	QueueStatusRejected = "rejected"
)

// ReviewQueueItem 待人工审核队列
type ReviewQueueItem struct {
	ID            uint64     `gorm:"primaryKey" json:"id"`
	ContentType   string     `gorm:"type:varchar(32);not null;uniqueIndex:idx_queue_content,priority:1" json:"content_type"`
	ContentID     uint64     `gorm:"not null;uniqueIndex:idx_queue_content,priority:2" json:"content_id"`
	UserID        uint64     `gorm:"not null;index:idx_queue_user" json:"user_id"`
	Priority      string     `gorm:"type:varchar(16);not null;default:'normal';index:idx_queue_status_priority,priority:2" json:"priority"`
	Status        string     `gorm:"type:varchar(16);not null;default:'pending';index:idx_queue_status_priority,priority:1" json:"status"`
	SeverityScore float64    `gorm:"not null;default:0" json:"severity_score"`
	Reason        string     `gorm:"type:varchar(1000)" json:"reason"`
	AssignedTo    *uint64    `json:"assigned_to"`
	ReviewedBy    *uint64    `json:"reviewed_by"`
	ReviewNote    string     `gorm:"type:varchar(500)" json:"review_note"`
	ReviewedAt    *time.Time `json:"reviewed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (ReviewQueueItem) TableName() string {
	return "moderation_queue"
}

// IsResolved 已给出人工结论
func (q *ReviewQueueItem) IsResolved() bool {
	return q.Status == QueueStatusApproved || q.Status == QueueStatusRejected
}
