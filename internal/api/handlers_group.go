package api

import "Touchstone/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	ModerationHandler     *handler.ModerationHandler
	ReviewHandler         *handler.ReviewHandler
	RuleHandler           *handler.RuleHandler
	RecommendationHandler *handler.RecommendationHandler
	HeatHandler           *handler.HeatHandler
	JobHandler            *handler.JobHandler
}
