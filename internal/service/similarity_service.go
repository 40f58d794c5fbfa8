package service

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/metrics"
	"Touchstone/internal/pkg/similarity"
	"Touchstone/internal/pkg/util"
	"Touchstone/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type SimilarityService interface {
	// GetSimilarity 缓存未过期直接返回，否则重新计算
	GetSimilarity(ctx context.Context, userID, otherID uint64) (*dto.SimilarityDTO, error)
	// Calculate 总是重新计算并写入
	Calculate(ctx context.Context, userID, otherID uint64) (*dto.SimilarityDTO, error)
	// CalculateBatch 计算候选集合内所有有交集的用户对
	CalculateBatch(ctx context.Context, userIDs []uint64) (*dto.BatchResultDTO, error)
}

// SimilarityOptions 批量计算参数
type SimilarityOptions struct {
	MaxAge        time.Duration
	Workers       int
	ChunkSize     int
	MaxCandidates int
}

type similarityServiceImpl struct {
	simRepo     repository.UserSimilarityRepo
	profileRepo repository.UserProfileRepo
	scorer      *similarity.Scorer
	opts        SimilarityOptions
}

func NewSimilarityService(simRepo repository.UserSimilarityRepo, profileRepo repository.UserProfileRepo, scorer *similarity.Scorer, opts SimilarityOptions) SimilarityService {
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7 * 24 * time.Hour
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 200
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 1000
	}
	return &similarityServiceImpl{
		simRepo:     simRepo,
		profileRepo: profileRepo,
		scorer:      scorer,
		opts:        opts,
	}
}

func (s *similarityServiceImpl) GetSimilarity(ctx context.Context, userID, otherID uint64) (*dto.SimilarityDTO, error) {
	pair, ok := similarity.NewPair(userID, otherID)
	if !ok {
		return nil, ErrSimilaritySelf
	}
	row, err := s.simRepo.GetSimilarity(ctx, pair.Lo, pair.Hi)
	if err != nil {
		return nil, err
	}
	if row != nil && time.Since(row.LastCalculatedAt) < s.opts.MaxAge {
		return toSimilarityDTO(row, userID), nil
	}
	return s.Calculate(ctx, userID, otherID)
}

func (s *similarityServiceImpl) Calculate(ctx context.Context, userID, otherID uint64) (*dto.SimilarityDTO, error) {
	pair, ok := similarity.NewPair(userID, otherID)
	if !ok {
		return nil, ErrSimilaritySelf
	}
	profiles, err := s.profileRepo.LoadProfiles(ctx, []uint64{pair.Lo, pair.Hi})
	if err != nil {
		return nil, err
	}
	row := s.score(pair, profiles, time.Now())
	if err = s.simRepo.UpsertSimilarities(ctx, []*model.UserSimilarity{row}); err != nil {
		return nil, err
	}
	return toSimilarityDTO(row, userID), nil
}

func (s *similarityServiceImpl) score(pair similarity.Pair, profiles map[uint64]*similarity.Profile, at time.Time) *model.UserSimilarity {
	a, ok := profiles[pair.Lo]
	if !ok {
		a = similarity.NewProfile(pair.Lo)
	}
	b, ok := profiles[pair.Hi]
	if !ok {
		b = similarity.NewProfile(pair.Hi)
	}
	res := s.scorer.Score(a, b)

	behaviors := make(model.CommonBehaviors, len(res.CommonBehaviors))
	for cat, ids := range res.CommonBehaviors {
		behaviors[string(cat)] = ids
	}
	return &model.UserSimilarity{
		UserLo:             pair.Lo,
		UserHi:             pair.Hi,
		StaticSimilarity:   res.Static,
		BehaviorSimilarity: res.Behavior,
		CombinedScore:      res.Combined,
		CommonInterests:    res.CommonInterests,
		CommonBehaviors:    behaviors,
		LastCalculatedAt:   at,
	}
}

func (s *similarityServiceImpl) CalculateBatch(ctx context.Context, userIDs []uint64) (*dto.BatchResultDTO, error) {
	ids := slices.Clone(userIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) > s.opts.MaxCandidates {
		log.WarnContext(ctx, "similarity candidates truncated", "count", len(ids), "max", s.opts.MaxCandidates)
		ids = ids[:s.opts.MaxCandidates]
	}

	res := &dto.BatchResultDTO{}
	if len(ids) < 2 {
		return res, nil
	}

	profiles, err := s.profileRepo.LoadProfiles(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	list := make([]*similarity.Profile, 0, len(profiles))
	for _, id := range ids {
		if p, ok := profiles[id]; ok {
			list = append(list, p)
		}
	}

	pairs := similarity.CandidatePairs(list)
	res.Total = len(pairs)

	// 精确到秒，保证与库里存储的时间可比较
	at := time.Now().Truncate(time.Second)

	var updated, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for start := 0; start < len(pairs); start += s.opts.ChunkSize {
		chunk := pairs[start:min(start+s.opts.ChunkSize, len(pairs))]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows := make([]*model.UserSimilarity, 0, len(chunk))
			for _, pair := range chunk {
				rows = append(rows, s.score(pair, profiles, at))
			}
			if err := s.simRepo.UpsertSimilarities(gctx, rows); err != nil {
				log.ErrorContext(gctx, "upsert similarities error", "from", chunk[0].Lo, "size", len(chunk), "err", err)
				failed.Add(int64(len(chunk)))
				return nil
			}
			updated.Add(int64(len(chunk)))
			return nil
		})
	}
	err = g.Wait()
	res.Updated = int(updated.Load())
	res.Errors = int(failed.Load())
	metrics.RecordBatch("similarity", res.Updated, res.Errors)
	if err != nil {
		return res, err
	}

	// 有写入失败时无法区分"已无交集"和"没写进去"，本轮不清零
	if res.Errors > 0 {
		log.WarnContext(ctx, "skip zeroing stale similarities after upsert errors", "errors", res.Errors)
		return res, nil
	}
	// 本轮未被重写的用户对已没有交集
	zeroed, err := s.simRepo.ZeroStale(ctx, ids, at)
	if err != nil {
		log.ErrorContext(ctx, "zero stale similarities error", "err", err)
		res.Errors++
	} else if zeroed > 0 {
		log.InfoContext(ctx, "stale similarities zeroed", "count", zeroed)
	}
	return res, nil
}

func toSimilarityDTO(row *model.UserSimilarity, viewer uint64) *dto.SimilarityDTO {
	interests := []uint64(row.CommonInterests)
	if interests == nil {
		interests = []uint64{}
	}
	behaviors := map[string][]uint64(row.CommonBehaviors)
	if behaviors == nil {
		behaviors = map[string][]uint64{}
	}
	return &dto.SimilarityDTO{
		UserID:             viewer,
		OtherUserID:        row.Other(viewer),
		StaticSimilarity:   row.StaticSimilarity,
		BehaviorSimilarity: row.BehaviorSimilarity,
		CombinedScore:      row.CombinedScore,
		CommonInterests:    interests,
		CommonBehaviors:    behaviors,
		LastCalculatedAt:   util.FormatTime(row.LastCalculatedAt),
	}
}
