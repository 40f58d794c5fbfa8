package job

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/service"
	"context"
)

// HeatJob 增量处理脏集合与近 24 小时有互动的帖子，全量遍历所有帖子
type HeatJob struct {
	heatSvc  service.HeatService
	full     bool
	maxItems int
}

func NewHeatIncrementalJob(heatSvc service.HeatService, maxItems int) *HeatJob {
	return &HeatJob{heatSvc: heatSvc, maxItems: maxItems}
}

func NewHeatFullJob(heatSvc service.HeatService, maxItems int) *HeatJob {
	return &HeatJob{heatSvc: heatSvc, full: true, maxItems: maxItems}
}

func (s *HeatJob) Name() string {
	if s.full {
		return consts.JobHeatFull
	}
	return consts.JobHeatIncremental
}

func (s *HeatJob) Execute(ctx context.Context, limit int) (*dto.BatchResultDTO, error) {
	if s.full {
		return s.heatSvc.UpdateAll(ctx, capOf(limit, s.maxItems))
	}
	return s.heatSvc.UpdateRecent(ctx, capOf(limit, s.maxItems))
}
