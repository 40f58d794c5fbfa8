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

// SimilarityJob 增量只看近期活跃用户，全量按 id 顺序取用户
type SimilarityJob struct {
	userRepo   repository.UserRepo
	simSvc     service.SimilarityService
	full       bool
	maxItems   int
	activeDays int
}

func NewSimilarityIncrementalJob(userRepo repository.UserRepo, simSvc service.SimilarityService, maxItems, activeDays int) *SimilarityJob {
	return &SimilarityJob{userRepo: userRepo, simSvc: simSvc, maxItems: maxItems, activeDays: activeDays}
}

func NewSimilarityFullJob(userRepo repository.UserRepo, simSvc service.SimilarityService, maxItems int) *SimilarityJob {
	return &SimilarityJob{userRepo: userRepo, simSvc: simSvc, full: true, maxItems: maxItems}
}

func (s *SimilarityJob) Name() string {
	if s.full {
		return consts.JobSimilarityFull
	}
	return consts.JobSimilarityIncremental
}

func (s *SimilarityJob) Execute(ctx context.Context, limit int) (*dto.BatchResultDTO, error) {
	limit = capOf(limit, s.maxItems)

	var (
		userIDs []uint64
		err     error
	)
	if s.full {
		userIDs, err = s.userRepo.ListUserIDs(ctx, limit)
	} else {
		since := time.Now().AddDate(0, 0, -capOf(s.activeDays, 30))
		userIDs, err = s.userRepo.ListActiveUserIDs(ctx, since, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list candidate users: %w", err)
	}

	log.InfoContext(ctx, "similarity job candidates", "user_count", len(userIDs), "full", s.full)
	return s.simSvc.CalculateBatch(ctx, userIDs)
}
