package dto

import "github.com/goccy/go-json"

// RuleReq 创建/更新审核规则
type RuleReq struct {
	Name          string          `json:"name" binding:"required,max=100"`
	Type          string          `json:"type" binding:"required,oneof=keyword_filter content_length spam_detection behavior_analysis"`
	Config        json.RawMessage `json:"config"`
	SeverityScore float64         `json:"severity_score" binding:"min=0"`
	Action        string          `json:"action" binding:"required,oneof=pass queue reject"`
	Priority      int             `json:"priority"`
	IsActive      *bool           `json:"is_active"`
}

// RuleToggleReq 启停规则
type RuleToggleReq struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// RuleDTO 审核规则
type RuleDTO struct {
	ID            uint64          `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Config        json.RawMessage `json:"config"`
	SeverityScore float64         `json:"severity_score"`
	Action        string          `json:"action"`
	Priority      int             `json:"priority"`
	IsActive      bool            `json:"is_active"`
	UpdatedAt     string          `json:"updated_at"`
}

// TermReq 更新敏感词
type TermReq struct {
	Term     string `json:"term" binding:"required,max=100"`
	Category string `json:"category" binding:"max=50"`
	Severity int    `json:"severity" binding:"omitempty,oneof=1 2 3"`
	IsActive *bool  `json:"is_active"`
}

// TermBatchReq 批量添加敏感词
type TermBatchReq struct {
	Terms    []string `json:"terms" binding:"required,min=1,max=500,dive,required,max=100"`
	Category string   `json:"category" binding:"max=50"`
	Severity int      `json:"severity" binding:"omitempty,oneof=1 2 3"`
}

// TermListReq 敏感词列表查询
type TermListReq struct {
	Category string `form:"category"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TermDTO 敏感词
type TermDTO struct {
	ID       uint64 `json:"id"`
	Term     string `json:"term"`
	Category string `json:"category"`
	Severity int    `json:"severity"`
	IsActive bool   `json:"is_active"`
}

// SnapshotDTO 规则缓存刷新结果
type SnapshotDTO struct {
	Version  uint64   `json:"version"`
	Rules    int      `json:"rules"`
	Terms    int      `json:"terms"`
	Skipped  []uint64 `json:"skipped"`
	LoadedAt string   `json:"loaded_at"`
}
