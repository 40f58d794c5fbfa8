package dto

// QueueListReq 审核队列查询
type QueueListReq struct {
	Status      string `form:"status" binding:"omitempty,oneof=pending assigned approved rejected"`
	Priority    string `form:"priority" binding:"omitempty,oneof=normal high urgent"`
	ContentType string `form:"content_type" binding:"omitempty,oneof=post comment"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// QueueItemDTO 审核队列条目
type QueueItemDTO struct {
	ID            uint64  `json:"id"`
	ContentType   string  `json:"content_type"`
	ContentID     uint64  `json:"content_id"`
	UserID        uint64  `json:"user_id"`
	Priority      string  `json:"priority"`
	Status        string  `json:"status"`
	SeverityScore float64 `json:"severity_score"`
	Reason        string  `json:"reason"`
	AssignedTo    *uint64 `json:"assigned_to"`
	ReviewedBy    *uint64 `json:"reviewed_by"`
	ReviewNote    string  `json:"review_note"`
	ReviewedAt    string  `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ReviewActionReq 单条审核
type ReviewActionReq struct {
	Note string `json:"note" binding:"max=500"`
}

// BatchReviewReq 批量审核
type BatchReviewReq struct {
	IDs    []uint64 `json:"ids" binding:"required,min=1,max=100"`
	Action string   `json:"action" binding:"required,oneof=approve reject"`
	Note   string   `json:"note" binding:"max=500"`
}

// BatchReviewItemDTO 批量审核中单条结果
type BatchReviewItemDTO struct {
	ID      uint64 `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchReviewDTO 批量审核结果
type BatchReviewDTO struct {
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Results   []*BatchReviewItemDTO `json:"results"`
}

// AssignReq 分配审核员
type AssignReq struct {
	IDs        []uint64 `json:"ids" binding:"required,min=1,max=100"`
	ReviewerID uint64   `json:"reviewer_id" binding:"required"`
}

// AssignDTO 分配结果
type AssignDTO struct {
	Assigned int64 `json:"assigned"`
}
