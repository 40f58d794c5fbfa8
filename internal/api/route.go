package api

import (
	"Touchstone/internal/api/middleware"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		authGroup := apiGroup.Group("")
		authGroup.Use(middleware.AuthMiddleware())

		// 内容发布链路的同步审核
		moderationGroup := authGroup.Group("/moderation")
		{
			moderationGroup.POST("/check", group.ModerationHandler.Check)
			moderationGroup.POST("/queue", group.ModerationHandler.Enqueue)
		}

		recGroup := authGroup.Group("/recommendations")
		{
			recGroup.GET("", group.RecommendationHandler.List)
			recGroup.POST("/refresh", group.RecommendationHandler.Refresh)
			recGroup.POST("/:user_id/dismiss", group.RecommendationHandler.Dismiss)
			recGroup.POST("/:user_id/follow", group.RecommendationHandler.Follow)
			recGroup.DELETE("/:user_id/flags", group.RecommendationHandler.ClearFlags)
		}
		authGroup.GET("/similarity/:user_id", group.RecommendationHandler.Similarity)

		// 需要登录 & 拥有 audit 或 admin 角色
		adminGroup := authGroup.Group("/admin")
		adminGroup.Use(middleware.CheckRoles(consts.RoleAudit, consts.RoleAdmin))
		{
			queueGroup := adminGroup.Group("/moderation/queue")
			{
				queueGroup.GET("", group.ReviewHandler.ListQueue)
				queueGroup.POST("/:id/approve", group.ReviewHandler.Approve)
				queueGroup.POST("/:id/reject", group.ReviewHandler.Reject)
				queueGroup.POST("/batch", group.ReviewHandler.Batch)
				queueGroup.POST("/assign", group.ReviewHandler.Assign)
			}

			ruleGroup := adminGroup.Group("/moderation/rules")
			{
				ruleGroup.GET("", group.RuleHandler.ListRules)
				ruleGroup.POST("", group.RuleHandler.CreateRule)
				ruleGroup.PUT("/:id", group.RuleHandler.UpdateRule)
				ruleGroup.PUT("/:id/active", group.RuleHandler.ToggleRule)
				ruleGroup.DELETE("/:id", group.RuleHandler.DeleteRule)
			}

			termGroup := adminGroup.Group("/moderation/terms")
			{
				termGroup.GET("", group.RuleHandler.ListTerms)
				termGroup.POST("", group.RuleHandler.CreateTerms)
				termGroup.PUT("/:id", group.RuleHandler.UpdateTerm)
				termGroup.DELETE("/:id", group.RuleHandler.DeleteTerm)
			}

			adminGroup.POST("/moderation/cache/refresh", group.RuleHandler.RefreshCache)
			adminGroup.GET("/moderation/stats", group.ModerationHandler.Overview)
			adminGroup.GET("/moderation/stats/users/:user_id", group.ModerationHandler.UserStat)

			adminGroup.POST("/heat/:post_id", group.HeatHandler.Refresh)

			jobGroup := adminGroup.Group("/jobs")
			{
				jobGroup.GET("", group.JobHandler.List)
				jobGroup.POST("/:name/run", group.JobHandler.Run)
				jobGroup.POST("/:name/cancel", group.JobHandler.Cancel)
			}
		}
	}

	return r
}
