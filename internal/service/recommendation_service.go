package service

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/metrics"
	"Touchstone/internal/pkg/redis"
	"Touchstone/internal/pkg/similarity"
	"Touchstone/internal/pkg/util"
	"Touchstone/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	reasonNameLimit  = 3
	cachedListLimit  = 100
	candidateFanout  = 5
	minCandidatePage = 100
)

type RecommendationService interface {
	// Refresh 重新生成用户的推荐列表
	Refresh(ctx context.Context, userID uint64) (*dto.RecommendationRefreshDTO, error)
	// RefreshBatch 定时任务使用，单个用户失败只计数
	RefreshBatch(ctx context.Context, userIDs []uint64) (*dto.BatchResultDTO, error)
	List(ctx context.Context, userID uint64, page, pageSize int) (*dto.RecommendationListDTO, error)
	Dismiss(ctx context.Context, userID, candidateID uint64) error
	MarkFollowed(ctx context.Context, userID, candidateID uint64) error
	// ClearFlags 解除好友等外部操作后允许候选重新出现
	ClearFlags(ctx context.Context, userID, candidateID uint64) error
}

// RecommendationOptions 推荐参数
type RecommendationOptions struct {
	MinScore float64
	Limit    int
	CacheTTL time.Duration
}

type recommendationServiceImpl struct {
	simRepo     repository.UserSimilarityRepo
	recRepo     repository.UserRecommendationRepo
	friendRepo  repository.UserFriendRepo
	profileRepo repository.UserProfileRepo
	tagRepo     repository.TagRepo
	opts        RecommendationOptions
}

func NewRecommendationService(
	simRepo repository.UserSimilarityRepo,
	recRepo repository.UserRecommendationRepo,
	friendRepo repository.UserFriendRepo,
	profileRepo repository.UserProfileRepo,
	tagRepo repository.TagRepo,
	opts RecommendationOptions,
) RecommendationService {
	if opts.MinScore <= 0 {
		opts.MinScore = 0.1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	return &recommendationServiceImpl{
		simRepo:     simRepo,
		recRepo:     recRepo,
		friendRepo:  friendRepo,
		profileRepo: profileRepo,
		tagRepo:     tagRepo,
		opts:        opts,
	}
}

func (s *recommendationServiceImpl) Refresh(ctx context.Context, userID uint64) (*dto.RecommendationRefreshDTO, error) {
	recs, err := s.generate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err = s.recRepo.ReplaceActive(ctx, userID, recs); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)
	return &dto.RecommendationRefreshDTO{Generated: len(recs)}, nil
}

func (s *recommendationServiceImpl) RefreshBatch(ctx context.Context, userIDs []uint64) (*dto.BatchResultDTO, error) {
	res := &dto.BatchResultDTO{Total: len(userIDs)}
	defer func() {
		metrics.RecordBatch("recommendation", res.Updated, res.Errors)
	}()
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if _, err := s.Refresh(ctx, userID); err != nil {
			log.ErrorContext(ctx, "refresh recommendations error", "user_id", userID, "err", err)
			res.Errors++
			continue
		}
		res.Updated++
	}
	return res, nil
}

// generate 过滤顺序：自己、已是好友、已关注或已忽略。
// 按页拉取相似度，直到凑满 Limit 或没有更多高于下限的行
func (s *recommendationServiceImpl) generate(ctx context.Context, userID uint64) ([]*model.UserRecommendation, error) {
	excluded := map[uint64]struct{}{userID: {}}
	friends, err := s.friendRepo.GetAcceptedFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	flagged, err := s.recRepo.ListFlaggedCandidateIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list flagged candidates: %w", err)
	}
	for _, id := range append(friends, flagged...) {
		excluded[id] = struct{}{}
	}

	pageSize := max(s.opts.Limit*candidateFanout, minCandidatePage)
	kept := make([]*model.UserSimilarity, 0, s.opts.Limit)
	var after *repository.SimilarityCursor
	for len(kept) < s.opts.Limit {
		rows, err := s.simRepo.ListForUser(ctx, userID, s.opts.MinScore, after, pageSize)
		if err != nil {
			return nil, fmt.Errorf("list similarities: %w", err)
		}
		for _, row := range rows {
			if _, ok := excluded[row.Other(userID)]; ok {
				continue
			}
			kept = append(kept, row)
			if len(kept) >= s.opts.Limit {
				break
			}
		}
		if len(rows) < pageSize {
			break
		}
		after = repository.CursorOf(rows[len(rows)-1])
	}
	if len(kept) == 0 {
		return []*model.UserRecommendation{}, nil
	}

	names, err := s.loadNames(ctx, kept)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	recs := make([]*model.UserRecommendation, 0, len(kept))
	rank := 0
	prev := -1.0
	for _, row := range kept {
		// 分数相同的候选共享名次
		if row.CombinedScore != prev {
			rank++
			prev = row.CombinedScore
		}
		reason := names.reasonFor(row)
		recs = append(recs, &model.UserRecommendation{
			UserID:            userID,
			RecommendedUserID: row.Other(userID),
			SimilarityScore:   row.CombinedScore,
			Reason:            reason.text,
			ReasonType:        reason.kind,
			ReasonDetail:      reason.detail,
			Rank:              rank,
			GeneratedAt:       now,
		})
	}
	return recs, nil
}

// reasonNames 一次性查出所有候选需要的名称
type reasonNames struct {
	media      map[uint64]string
	characters map[uint64]string
	tags       map[uint64]string
}

func (s *recommendationServiceImpl) loadNames(ctx context.Context, rows []*model.UserSimilarity) (*reasonNames, error) {
	var mediaIDs, characterIDs, tagIDs []uint64
	for _, row := range rows {
		mediaIDs = append(mediaIDs, row.CommonBehaviors[string(similarity.CategoryMedia)]...)
		characterIDs = append(characterIDs, row.CommonBehaviors[string(similarity.CategoryCharacter)]...)
		tagIDs = append(tagIDs, row.CommonInterests...)
	}

	names := &reasonNames{}
	var err error
	if names.media, err = s.profileRepo.GetMediaTitles(ctx, mediaIDs); err != nil {
		return nil, fmt.Errorf("load media titles: %w", err)
	}
	if names.characters, err = s.profileRepo.GetCharacterNames(ctx, characterIDs); err != nil {
		return nil, fmt.Errorf("load character names: %w", err)
	}
	if names.tags, err = s.tagRepo.GetTagNames(ctx, tagIDs); err != nil {
		return nil, fmt.Errorf("load tag names: %w", err)
	}
	return names, nil
}

type reason struct {
	kind   string
	text   string
	detail model.DetailMap
}

// reasonFor 作品 > 角色 > 兴趣标签 > 通用
func (n *reasonNames) reasonFor(row *model.UserSimilarity) reason {
	if ids, titles := lookup(row.CommonBehaviors[string(similarity.CategoryMedia)], n.media); len(titles) > 0 {
		quoted := make([]string, 0, len(titles))
		for _, t := range titles {
			quoted = append(quoted, "《"+t+"》")
		}
		return reason{
			kind:   model.ReasonCommonMedia,
			text:   "你们都收藏了" + strings.Join(quoted, ""),
			detail: model.DetailMap{"media_ids": ids, "titles": titles},
		}
	}
	if ids, names := lookup(row.CommonBehaviors[string(similarity.CategoryCharacter)], n.characters); len(names) > 0 {
		return reason{
			kind:   model.ReasonCommonCharacter,
			text:   "你们都喜欢" + strings.Join(names, "、"),
			detail: model.DetailMap{"character_ids": ids, "names": names},
		}
	}
	if ids, names := lookup(row.CommonInterests, n.tags); len(names) > 0 {
		return reason{
			kind:   model.ReasonCommonInterest,
			text:   "共同兴趣: " + strings.Join(names, "、"),
			detail: model.DetailMap{"tag_ids": ids, "tags": names},
		}
	}
	return reason{
		kind:   model.ReasonSimilarTaste,
		text:   "兴趣相似",
		detail: model.DetailMap{"score": row.CombinedScore},
	}
}

func lookup(ids []uint64, names map[uint64]string) ([]uint64, []string) {
	outIDs := make([]uint64, 0, reasonNameLimit)
	out := make([]string, 0, reasonNameLimit)
	for _, id := range ids {
		name, ok := names[id]
		if !ok || name == "" {
			continue
		}
		outIDs = append(outIDs, id)
		out = append(out, name)
		if len(out) >= reasonNameLimit {
			break
		}
	}
	return outIDs, out
}

func (s *recommendationServiceImpl) List(ctx context.Context, userID uint64, page, pageSize int) (*dto.RecommendationListDTO, error) {
	all, err := s.cachedList(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit, offset := util.Page(page, pageSize, consts.DefaultPageSize, consts.MaxPageSize)
	out := &dto.RecommendationListDTO{Total: int64(len(all)), List: []*dto.RecommendationDTO{}}
	if offset < len(all) {
		out.List = all[offset:min(offset+limit, len(all))]
	}
	return out, nil
}

// cachedList 缓存整份有效列表，分页在内存里做
func (s *recommendationServiceImpl) cachedList(ctx context.Context, userID uint64) ([]*dto.RecommendationDTO, error) {
	key := consts.UserRecommendationKey + util.FormatUint64(userID)
	if raw, err := redis.GetValue(ctx, key); err == nil && raw != "" {
		list := make([]*dto.RecommendationDTO, 0)
		if err = json.Unmarshal([]byte(raw), &list); err == nil {
			return list, nil
		}
		log.WarnContext(ctx, "decode recommendation cache error", "user_id", userID, "err", err)
	}

	recs, _, err := s.recRepo.ListActive(ctx, userID, cachedListLimit, 0)
	if err != nil {
		return nil, err
	}
	list := make([]*dto.RecommendationDTO, 0, len(recs))
	for _, r := range recs {
		list = append(list, toRecommendationDTO(r))
	}
	if b, err := json.Marshal(list); err == nil {
		_ = redis.SetWithExpiration(ctx, key, string(b), s.opts.CacheTTL)
	}
	return list, nil
}

func (s *recommendationServiceImpl) invalidate(ctx context.Context, userID uint64) {
	if err := redis.DeleteKey(ctx, consts.UserRecommendationKey+util.FormatUint64(userID)); err != nil {
		log.WarnContext(ctx, "invalidate recommendation cache error", "user_id", userID, "err", err)
	}
}

func (s *recommendationServiceImpl) Dismiss(ctx context.Context, userID, candidateID uint64) error {
	if userID == candidateID || candidateID == 0 {
		return ErrRecommendationTarget
	}
	if err := s.recRepo.SetDismissed(ctx, userID, candidateID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *recommendationServiceImpl) MarkFollowed(ctx context.Context, userID, candidateID uint64) error {
	if userID == candidateID || candidateID == 0 {
		return ErrRecommendationTarget
	}
	if err := s.recRepo.SetFollowed(ctx, userID, candidateID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *recommendationServiceImpl) ClearFlags(ctx context.Context, userID, candidateID uint64) error {
	if userID == candidateID || candidateID == 0 {
		return ErrRecommendationTarget
	}
	n, err := s.recRepo.ClearFlags(ctx, userID, candidateID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.invalidate(ctx, userID)
	}
	return nil
}

func toRecommendationDTO(r *model.UserRecommendation) *dto.RecommendationDTO {
	detail := map[string]any(r.ReasonDetail)
	if detail == nil {
		detail = map[string]any{}
	}
	return &dto.RecommendationDTO{
		UserID:          r.RecommendedUserID,
		SimilarityScore: r.SimilarityScore,
		Reason:          r.Reason,
		ReasonType:      r.ReasonType,
		ReasonDetail:    detail,
		Rank:            r.Rank,
		GeneratedAt:     util.FormatTime(r.GeneratedAt),
	}
}
