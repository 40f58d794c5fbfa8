package dto

// HeatDTO 单篇帖子热度
type HeatDTO struct {
	PostID    uint64  `json:"post_id"`
	HeatScore float64 `json:"heat_score"`
}

// BatchResultDTO 批处理计数
type BatchResultDTO struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// JobRunReq 手动触发任务
type JobRunReq struct {
	Limit int `json:"limit" binding:"omitempty,min=1,max=100000"`
}

// JobStatusDTO 定时任务状态
type JobStatusDTO struct {
	Name       string `json:"name"`
	Spec       string `json:"spec"`
	Running    bool   `json:"running"`
	RunCount   int64  `json:"run_count"`
	SkipCount  int64  `json:"skip_count"`
	LastStart  string `json:"last_start,omitempty"`
	LastEnd    string `json:"last_end,omitempty"`
	LastError  string `json:"last_error,omitempty"`
	LastResult string `json:"last_result,omitempty"`
	NextRun    string `json:"next_run,omitempty"`
}
