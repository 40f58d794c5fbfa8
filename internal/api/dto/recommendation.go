package dto

// RecommendationDTO 推荐用户
type RecommendationDTO struct {
	UserID          uint64         `json:"user_id"`
	SimilarityScore float64        `json:"similarity_score"`
	Reason          string         `json:"reason"`
	ReasonType      string         `json:"reason_type"`
	ReasonDetail    map[string]any `json:"reason_detail"`
	Rank            int            `json:"rank"`
	GeneratedAt     string         `json:"generated_at"`
}

// RecommendationListDTO 推荐列表，缓存整表
type RecommendationListDTO struct {
	Total int64                `json:"total"`
	List  []*RecommendationDTO `json:"list"`
}

// RecommendationRefreshDTO 刷新结果
type RecommendationRefreshDTO struct {
	Generated int `json:"generated"`
}

// SimilarityDTO 两个用户的相似度
type SimilarityDTO struct {
	UserID             uint64              `json:"user_id"`
	OtherUserID        uint64              `json:"other_user_id"`
	StaticSimilarity   float64             `json:"static_similarity"`
	BehaviorSimilarity float64             `json:"behavior_similarity"`
	CombinedScore      float64             `json:"combined_score"`
	CommonInterests    []uint64            `json:"common_interests"`
	CommonBehaviors    map[string][]uint64 `json:"common_behaviors"`
	LastCalculatedAt   string              `json:"last_calculated_at"`
}

// PageReq 通用分页参数
type PageReq struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}
