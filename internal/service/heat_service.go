package service

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/es"
	"Touchstone/internal/pkg/heat"
	"Touchstone/internal/pkg/metrics"
	"Touchstone/internal/pkg/redis"
	"Touchstone/internal/pkg/util"
	"Touchstone/internal/repository"
	"context"
	log "log/slog"
	"time"
)

type HeatService interface {
	// RefreshPostHeat 重新计算单篇帖子热度
	RefreshPostHeat(ctx context.Context, postID uint64) (*dto.HeatDTO, error)
	// BatchUpdate 分页计算，单条失败只计数
	BatchUpdate(ctx context.Context, postIDs []uint64) (*dto.BatchResultDTO, error)
	// UpdateRecent 脏集合与近期有互动的帖子
	UpdateRecent(ctx context.Context, limit int) (*dto.BatchResultDTO, error)
	// UpdateAll 按 id 游标遍历全部帖子
	UpdateAll(ctx context.Context, limit int) (*dto.BatchResultDTO, error)
	// MarkDirty 标记需要重算的帖子
	MarkDirty(ctx context.Context, postIDs ...uint64) error
}

// HeatOptions 批处理参数
type HeatOptions struct {
	PageSize     int
	RecentWindow time.Duration
}

type heatServiceImpl struct {
	postRepo  repository.PostRepo
	postIndex es.PostRepo
	calc      *heat.Calculator
	opts      HeatOptions
}

// NewHeatService postIndex 未启用时传 nil
func NewHeatService(postRepo repository.PostRepo, postIndex es.PostRepo, calc *heat.Calculator, opts HeatOptions) HeatService {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.RecentWindow <= 0 {
		opts.RecentWindow = 24 * time.Hour
	}
	return &heatServiceImpl{
		postRepo:  postRepo,
		postIndex: postIndex,
		calc:      calc,
		opts:      opts,
	}
}

func (s *heatServiceImpl) RefreshPostHeat(ctx context.Context, postID uint64) (*dto.HeatDTO, error) {
	in, err := s.postRepo.GetHeatInput(ctx, postID)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ErrPostNotFound
	}
	score, err := s.apply(ctx, *in)
	if err != nil {
		return nil, err
	}
	return &dto.HeatDTO{PostID: postID, HeatScore: score}, nil
}

func (s *heatServiceImpl) apply(ctx context.Context, in heat.Input) (float64, error) {
	score := s.calc.Score(in)
	if err := s.postRepo.UpdateHeatScore(ctx, in.ID, score); err != nil {
		return 0, err
	}
	s.mirror(ctx, in.ID, score)
	return score, nil
}

// mirror 排行榜与搜索索引只做尽力同步
func (s *heatServiceImpl) mirror(ctx context.Context, postID uint64, score float64) {
	if err := redis.ZAdd(ctx, consts.PostHeatRankKey, score, util.FormatUint64(postID)); err != nil {
		log.WarnContext(ctx, "update heat rank error", "post_id", postID, "err", err)
	}
	if s.postIndex != nil {
		if err := s.postIndex.UpdateHeatScore(ctx, postID, score); err != nil {
			log.WarnContext(ctx, "sync heat to es error", "post_id", postID, "err", err)
		}
	}
}

func (s *heatServiceImpl) BatchUpdate(ctx context.Context, postIDs []uint64) (*dto.BatchResultDTO, error) {
	res := &dto.BatchResultDTO{Total: len(postIDs)}
	defer func() {
		metrics.RecordBatch("heat", res.Updated, res.Errors)
	}()

	for start := 0; start < len(postIDs); start += s.opts.PageSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := min(start+s.opts.PageSize, len(postIDs))
		page := postIDs[start:end]

		inputs, err := s.postRepo.GetHeatInputs(ctx, page)
		if err != nil {
			log.ErrorContext(ctx, "load heat inputs error", "from", page[0], "size", len(page), "err", err)
			res.Errors += len(page)
			continue
		}
		// 已删除或不存在的帖子
		if missing := len(page) - len(inputs); missing > 0 {
			res.Errors += missing
		}
		for _, in := range inputs {
			if _, err = s.apply(ctx, in); err != nil {
				log.ErrorContext(ctx, "update heat score error", "post_id", in.ID, "err", err)
				res.Errors++
				continue
			}
			res.Updated++
		}
	}
	s.trimRank(ctx)
	return res, nil
}

func (s *heatServiceImpl) UpdateRecent(ctx context.Context, limit int) (*dto.BatchResultDTO, error) {
	if limit <= 0 {
		limit = 1000
	}

	processingKey := consts.PostHeatDirtyKey + ":processing"
	dirty := make([]uint64, 0)
	if err := redis.Rename(ctx, consts.PostHeatDirtyKey, processingKey); err == nil {
		members, err := redis.GetSet(ctx, processingKey)
		if err != nil {
			log.ErrorContext(ctx, "get heat dirty set error", "err", err)
		} else if dirty, err = util.StrSliceToUInt64Slice(members); err != nil {
			log.ErrorContext(ctx, "convert heat dirty set error", "err", err)
			dirty = dirty[:0]
		}
	}

	recent, err := s.postRepo.ListRecentCandidateIDs(ctx, time.Now().Add(-s.opts.RecentWindow), limit)
	if err != nil {
		// 候选集合拿不到属于整体失败，脏数据放回去下次再算
		s.requeueDirty(ctx, dirty, processingKey)
		return nil, err
	}

	candidates, leftover := mergeCandidates(dirty, recent, limit)
	s.requeueDirty(ctx, leftover, processingKey)

	return s.BatchUpdate(ctx, candidates)
}

// mergeCandidates 脏集合优先，去重后截断，返回未处理的脏 id
func mergeCandidates(dirty, recent []uint64, limit int) ([]uint64, []uint64) {
	seen := make(map[uint64]struct{}, len(dirty)+len(recent))
	out := make([]uint64, 0, min(limit, len(dirty)+len(recent)))
	leftover := make([]uint64, 0)
	for _, id := range dirty {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if len(out) < limit {
			out = append(out, id)
		} else {
			leftover = append(leftover, id)
		}
	}
	for _, id := range recent {
		if len(out) >= limit {
			break
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, leftover
}

func (s *heatServiceImpl) requeueDirty(ctx context.Context, ids []uint64, processingKey string) {
	if len(ids) > 0 {
		if err := redis.SAdd(ctx, consts.PostHeatDirtyKey, util.UInt64SliceToAny(ids)...); err != nil {
			log.ErrorContext(ctx, "requeue heat dirty ids error", "count", len(ids), "err", err)
		}
	}
	if err := redis.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete heat processing set error", "err", err)
	}
}

func (s *heatServiceImpl) UpdateAll(ctx context.Context, limit int) (*dto.BatchResultDTO, error) {
	if limit <= 0 {
		limit = 50000
	}
	total := &dto.BatchResultDTO{}
	var cursor uint64
	for total.Total < limit {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		size := min(s.opts.PageSize, limit-total.Total)
		ids, err := s.postRepo.ListIDsAfter(ctx, cursor, size)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			break
		}
		cursor = ids[len(ids)-1]

		res, err := s.BatchUpdate(ctx, ids)
		total.Total += res.Total
		total.Updated += res.Updated
		total.Errors += res.Errors
		if err != nil {
			return total, err
		}
		if len(ids) < size {
			break
		}
	}
	return total, nil
}

func (s *heatServiceImpl) MarkDirty(ctx context.Context, postIDs ...uint64) error {
	if len(postIDs) == 0 {
		return nil
	}
	return redis.SAdd(ctx, consts.PostHeatDirtyKey, util.UInt64SliceToAny(postIDs)...)
}

// trimRank 排行榜只保留前 PostHeatRankSize 名
func (s *heatServiceImpl) trimRank(ctx context.Context) {
	if err := redis.ZRemRangeByRank(ctx, consts.PostHeatRankKey, 0, -consts.PostHeatRankSize-1); err != nil {
		log.WarnContext(ctx, "trim heat rank error", "err", err)
	}
}
