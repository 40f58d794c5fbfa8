package consts

const (
	RoleAudit = "AUDIT"
	RoleAdmin = "ADMIN"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 定时任务名
const (
	JobSimilarityIncremental = "similarity_incremental"
	JobSimilarityFull        = "similarity_full"
	JobRecommendationRefresh = "recommendation_refresh"
	JobHeatIncremental       = "heat_incremental"
	JobHeatFull              = "heat_full"
)
