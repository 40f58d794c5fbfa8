package job

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/repository"
	"Touchstone/internal/service"
	"context"
	"fmt"
	log "log/slog"
	"time"
)

type RecommendationJob struct {
	userRepo   repository.UserRepo
	recSvc     service.RecommendationService
	maxItems   int
	activeDays int
}

func NewRecommendationJob(userRepo repository.UserRepo, recSvc service.RecommendationService, maxItems, activeDays int) *RecommendationJob {
	return &RecommendationJob{userRepo: userRepo, recSvc: recSvc, maxItems: maxItems, activeDays: activeDays}
}

func (s *RecommendationJob) Name() string {
	return consts.JobRecommendationRefresh
}

func (s *RecommendationJob) Execute(ctx context.Context, limit int) (*dto.BatchResultDTO, error) {
	since := time.Now().AddDate(0, 0, -capOf(s.activeDays, 30))
	userIDs, err := s.userRepo.ListActiveUserIDs(ctx, since, capOf(limit, s.maxItems))
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	log.InfoContext(ctx, "recommendation job candidates", "user_count", len(userIDs))
	return s.recSvc.RefreshBatch(ctx, userIDs)
}
