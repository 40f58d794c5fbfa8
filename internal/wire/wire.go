package wire

import (
	"Touchstone/internal/api"
	"Touchstone/internal/api/config"
	"Touchstone/internal/api/handler"
	"Touchstone/internal/job"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/cron"
	"Touchstone/internal/pkg/es"
	"Touchstone/internal/pkg/heat"
	"Touchstone/internal/pkg/kafka"
	"Touchstone/internal/pkg/moderation"
	pkgmongo "Touchstone/internal/pkg/mongo"
	"Touchstone/internal/pkg/similarity"
	"Touchstone/internal/repository"
	"Touchstone/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	RuleStore    *moderation.Store
	CronMgr      *cron.Manager
	CronSpecs    map[string]string
	KafkaManager *kafka.ConsumerManager
}

// BuildApplication mongoDB 为 nil 时不发送审核通知，ES 未初始化时不同步索引
func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	// repository
	userRepo := repository.NewUserRepo(db)
	postRepo := repository.NewPostRepository(db)
	tagRepo := repository.NewTagRepository(db)
	friendRepo := repository.NewUserFriendRepo(db)
	profileRepo := repository.NewUserProfileRepo(db)
	ruleRepo := repository.NewModerationRuleRepo(db)
	logRepo := repository.NewModerationLogRepo(db)
	statRepo := repository.NewModerationStatRepo(db)
	queueRepo := repository.NewReviewQueueRepo(db)
	simRepo := repository.NewUserSimilarityRepo(db)
	recRepo := repository.NewUserRecommendationRepo(db)

	var postIndex es.PostRepo
	if es.Client != nil {
		postIndex = es.NewPostRepo(es.Client, es.PostIndex)
	}
	var notifier service.ReviewNotifier
	if mongoDB != nil {
		notifier = pkgmongo.NewReviewNotifier(pkgmongo.NewSysBoxRepo(mongoDB))
	}

	// 审核
	var norm moderation.Normalizer = moderation.LowerNormalizer{}
	if cfg.Moderation.Normalize {
		norm = moderation.NewChineseNormalizer()
	}
	ruleStore := moderation.NewStore(ruleRepo, norm)
	sources := service.NewModerationSources(logRepo, statRepo)
	evaluator := moderation.NewEvaluator(ruleStore, sources, service.NewDuplicateSpamDetector(norm), sources)

	moderationService := service.NewModerationService(evaluator, ruleStore, queueRepo, statRepo, logRepo, service.Thresholds{
		High: cfg.Moderation.HighSeverityThreshold,
		Mid:  cfg.Moderation.MidSeverityThreshold,
	})
	reviewService := service.NewReviewService(queueRepo, postIndex, notifier)
	ruleService := service.NewRuleService(ruleRepo, ruleStore)

	// 热度
	heatCfg := cfg.Heat
	heatCalc := heat.NewCalculator(heat.ParamsFromMap(heatCfg.Base, heatCfg.HalfLifeHours, heatCfg.MinDecay, heatCfg.Weights))
	heatService := service.NewHeatService(postRepo, postIndex, heatCalc, service.HeatOptions{
		PageSize:     heatCfg.PageSize,
		RecentWindow: time.Duration(heatCfg.RecentWindowH) * time.Hour,
	})

	// 相似度 & 推荐
	simCfg := cfg.Similarity
	scorer := similarity.NewScorer(similarity.ConfigFromMap(simCfg.StaticWeight, simCfg.BehaviorWeight, simCfg.Weights))
	similarityService := service.NewSimilarityService(simRepo, profileRepo, scorer, service.SimilarityOptions{
		MaxAge:        time.Duration(simCfg.MaxAgeHours) * time.Hour,
		Workers:       simCfg.Workers,
		MaxCandidates: simCfg.FullCap,
	})
	recCfg := cfg.Recommendation
	recommendationService := service.NewRecommendationService(simRepo, recRepo, friendRepo, profileRepo, tagRepo, service.RecommendationOptions{
		MinScore: recCfg.MinScore,
		Limit:    recCfg.Limit,
		CacheTTL: time.Duration(recCfg.CacheMinutes) * time.Minute,
	})

	// 定时任务
	cronMgr := cron.NewCronManager(
		job.NewSimilarityIncrementalJob(userRepo, similarityService, simCfg.IncrementalCap, simCfg.ActiveDays),
		job.NewSimilarityFullJob(userRepo, similarityService, simCfg.FullCap),
		job.NewRecommendationJob(userRepo, recommendationService, recCfg.RefreshCap, simCfg.ActiveDays),
		job.NewHeatIncrementalJob(heatService, heatCfg.IncrementalCap),
		job.NewHeatFullJob(heatService, heatCfg.FullCap),
	)
	specs := map[string]string{}
	if cfg.Scheduler.Enable {
		specs = map[string]string{
			consts.JobSimilarityIncremental: cfg.Scheduler.SimilarityIncremental,
			consts.JobSimilarityFull:        cfg.Scheduler.SimilarityFull,
			consts.JobRecommendationRefresh: cfg.Scheduler.RecommendationRefresh,
			consts.JobHeatIncremental:       cfg.Scheduler.HeatIncremental,
			consts.JobHeatFull:              cfg.Scheduler.HeatFull,
		}
	}

	handlers := &api.HandlersGroup{
		ModerationHandler:     handler.NewModerationHandler(moderationService),
		ReviewHandler:         handler.NewReviewHandler(reviewService),
		RuleHandler:           handler.NewRuleHandler(ruleService),
		RecommendationHandler: handler.NewRecommendationHandler(recommendationService, similarityService),
		HeatHandler:           handler.NewHeatHandler(heatService),
		JobHandler:            handler.NewJobHandler(cronMgr),
	}

	router := api.SetupRouter(handlers)

	app := &ApplicationContainer{
		Router:    router,
		DB:        db,
		RuleStore: ruleStore,
		CronMgr:   cronMgr,
		CronSpecs: specs,
	}

	if cfg.Kafka.Enable {
		canalRouter := kafka.NewCanalRouter(
			kafka.NewContentHandler(moderationService, postRepo, postIndex),
			kafka.NewInteractionHandler(heatService),
		)
		kafkaMgr, err := kafka.NewConsumerManager(cfg, canalRouter)
		if err != nil {
			return nil, err
		}
		app.KafkaManager = kafkaMgr
	}

	return app, nil
}
