package service

import (
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/similarity"
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecommendationRepo struct {
	mu   sync.Mutex
	rows map[uint64]map[uint64]*model.UserRecommendation
}

func newFakeRecommendationRepo() *fakeRecommendationRepo {
	return &fakeRecommendationRepo{rows: make(map[uint64]map[uint64]*model.UserRecommendation)}
}

func (f *fakeRecommendationRepo) owner(userID uint64) map[uint64]*model.UserRecommendation {
	m, ok := f.rows[userID]
	if !ok {
		m = make(map[uint64]*model.UserRecommendation)
		f.rows[userID] = m
	}
	return m
}

func (f *fakeRecommendationRepo) ListFlaggedCandidateIDs(_ context.Context, userID uint64) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uint64, 0)
	for id, r := range f.owner(userID) {
		if r.IsDismissed || r.IsFollowed {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeRecommendationRepo) ReplaceActive(_ context.Context, userID uint64, recs []*model.UserRecommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.owner(userID)
	for id, r := range m {
		if !r.IsDismissed && !r.IsFollowed {
			delete(m, id)
		}
	}
	for _, r := range recs {
		if old, ok := m[r.RecommendedUserID]; ok {
			r.IsDismissed, r.IsFollowed = old.IsDismissed, old.IsFollowed
		}
		cp := *r
		m[r.RecommendedUserID] = &cp
	}
	return nil
}

func (f *fakeRecommendationRepo) active(userID uint64) []*model.UserRecommendation {
	out := make([]*model.UserRecommendation, 0)
	for _, r := range f.owner(userID) {
		if !r.IsDismissed && !r.IsFollowed {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b *model.UserRecommendation) int {
		if a.Rank != b.Rank {
			return a.Rank - b.Rank
		}
		return int(a.RecommendedUserID) - int(b.RecommendedUserID)
	})
	return out
}

func (f *fakeRecommendationRepo) ListActive(_ context.Context, userID uint64, limit, offset int) ([]*model.UserRecommendation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.active(userID)
	total := int64(len(all))
	if offset >= len(all) {
		return []*model.UserRecommendation{}, total, nil
	}
	return all[offset:min(offset+limit, len(all))], total, nil
}

func (f *fakeRecommendationRepo) setFlag(userID, candidateID uint64, dismissed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.owner(userID)
	r, ok := m[candidateID]
	if !ok {
		r = &model.UserRecommendation{UserID: userID, RecommendedUserID: candidateID, ReasonType: model.ReasonSimilarTaste}
		m[candidateID] = r
	}
	if dismissed {
		r.IsDismissed = true
	} else {
		r.IsFollowed = true
	}
}

func (f *fakeRecommendationRepo) SetDismissed(_ context.Context, userID, candidateID uint64) error {
	f.setFlag(userID, candidateID, true)
	return nil
}

func (f *fakeRecommendationRepo) SetFollowed(_ context.Context, userID, candidateID uint64) error {
	f.setFlag(userID, candidateID, false)
	return nil
}

func (f *fakeRecommendationRepo) ClearFlags(_ context.Context, userID, candidateID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.owner(userID)
	r, ok := m[candidateID]
	if !ok {
		return 0, nil
	}
	if r.Rank == 0 {
		delete(m, candidateID)
		return 1, nil
	}
	r.IsDismissed, r.IsFollowed = false, false
	return 1, nil
}

type fakeFriendRepo struct {
	friends map[uint64][]uint64
}

func (f *fakeFriendRepo) GetAcceptedFriendIDs(_ context.Context, userID uint64) ([]uint64, error) {
	return slices.Clone(f.friends[userID]), nil
}

func (f *fakeFriendRepo) IsFriend(_ context.Context, userID, otherID uint64) (bool, error) {
	return slices.Contains(f.friends[userID], otherID), nil
}

type fakeTagRepo struct {
	names map[uint64]string
}

func (f *fakeTagRepo) GetTagNames(_ context.Context, ids []uint64) (map[uint64]string, error) {
	return pick(f.names, ids), nil
}

type recFixture struct {
	sim     *fakeSimilarityRepo
	recs    *fakeRecommendationRepo
	friends *fakeFriendRepo
	svc     RecommendationService
}

func simRow(a, b uint64, score float64, interests []uint64, behaviors model.CommonBehaviors) *model.UserSimilarity {
	pair, _ := similarity.NewPair(a, b)
	return &model.UserSimilarity{
		UserLo:           pair.Lo,
		UserHi:           pair.Hi,
		CombinedScore:    score,
		CommonInterests:  interests,
		CommonBehaviors:  behaviors,
		LastCalculatedAt: time.Now(),
	}
}

func newRecFixture(t *testing.T, limit int) *recFixture {
	setupRedis(t)
	f := &recFixture{
		sim:     newFakeSimilarityRepo(),
		recs:    newFakeRecommendationRepo(),
		friends: &fakeFriendRepo{friends: map[uint64][]uint64{1: {3}}},
	}
	rows := []*model.UserSimilarity{
		simRow(1, 2, 0.9, nil, model.CommonBehaviors{"media": {10, 11}}),
		simRow(1, 3, 0.8, nil, nil),
		simRow(1, 4, 0.7, nil, model.CommonBehaviors{"character": {20}}),
		simRow(1, 5, 0.7, []uint64{30}, nil),
		simRow(1, 6, 0.5, []uint64{99}, nil),
		simRow(1, 7, 0.1, []uint64{30}, nil),
	}
	require.NoError(t, f.sim.UpsertSimilarities(context.Background(), rows))

	prof := &fakeProfileRepo{
		media:      map[uint64]string{10: "进击的巨人", 11: "葬送的芙莉莲"},
		characters: map[uint64]string{20: "阿尼亚"},
	}
	tags := &fakeTagRepo{names: map[uint64]string{30: "摄影"}}
	f.svc = NewRecommendationService(f.sim, f.recs, f.friends, prof, tags, RecommendationOptions{Limit: limit})
	return f
}

func TestRecommendationService_RefreshFiltersAndRanks(t *testing.T) {
	f := newRecFixture(t, 20)
	ctx := context.Background()

	res, err := f.svc.Refresh(ctx, 1)
	require.NoError(t, err)
	// 3 是好友，7 的分数没有超过下限
	assert.Equal(t, 4, res.Generated)

	got := f.recs.active(1)
	require.Len(t, got, 4)
	assert.Equal(t, uint64(2), got[0].RecommendedUserID)
	assert.Equal(t, 1, got[0].Rank)
	// 4 与 5 同分，共享名次
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, 2, got[2].Rank)
	assert.Equal(t, uint64(6), got[3].RecommendedUserID)
	assert.Equal(t, 3, got[3].Rank)
}

func TestRecommendationService_ReasonPriority(t *testing.T) {
	f := newRecFixture(t, 20)
	_, err := f.svc.Refresh(context.Background(), 1)
	require.NoError(t, err)

	byUser := make(map[uint64]*model.UserRecommendation)
	for _, r := range f.recs.active(1) {
		byUser[r.RecommendedUserID] = r
	}
	assert.Equal(t, model.ReasonCommonMedia, byUser[2].ReasonType)
	assert.Equal(t, "你们都收藏了《进击的巨人》《葬送的芙莉莲》", byUser[2].Reason)
	assert.Equal(t, model.ReasonCommonCharacter, byUser[4].ReasonType)
	assert.Equal(t, model.ReasonCommonInterest, byUser[5].ReasonType)
	assert.Equal(t, "共同兴趣: 摄影", byUser[5].Reason)
	// 标签名已不存在时退回通用理由
	assert.Equal(t, model.ReasonSimilarTaste, byUser[6].ReasonType)
}

func TestRecommendationService_RefreshIsIdempotentForFlags(t *testing.T) {
	f := newRecFixture(t, 20)
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.Dismiss(ctx, 1, 2))
	require.NoError(t, f.svc.MarkFollowed(ctx, 1, 4))

	for i := 0; i < 2; i++ {
		_, err = f.svc.Refresh(ctx, 1)
		require.NoError(t, err)
		assert.True(t, f.recs.rows[1][2].IsDismissed)
		assert.True(t, f.recs.rows[1][4].IsFollowed)
		for _, r := range f.recs.active(1) {
			assert.NotEqual(t, uint64(2), r.RecommendedUserID)
			assert.NotEqual(t, uint64(4), r.RecommendedUserID)
		}
	}
	// 剩余候选重新从 1 开始排名
	assert.Equal(t, 1, f.recs.active(1)[0].Rank)

	require.NoError(t, f.svc.ClearFlags(ctx, 1, 2))
	_, err = f.svc.Refresh(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), f.recs.active(1)[0].RecommendedUserID)
}

func TestRecommendationService_RefreshTruncatesToLimit(t *testing.T) {
	f := newRecFixture(t, 2)
	res, err := f.svc.Refresh(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Generated)
}

func TestRecommendationService_ListUsesCache(t *testing.T) {
	f := newRecFixture(t, 20)
	ctx := context.Background()
	_, err := f.svc.Refresh(ctx, 1)
	require.NoError(t, err)

	first, err := f.svc.List(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), first.Total)
	assert.Len(t, first.List, 2)
	assert.Equal(t, uint64(2), first.List[0].UserID)

	exists, err := redisExists(ctx, consts.UserRecommendationKey+"1")
	require.NoError(t, err)
	assert.True(t, exists)

	// 忽略后缓存失效
	require.NoError(t, f.svc.Dismiss(ctx, 1, 2))
	exists, err = redisExists(ctx, consts.UserRecommendationKey+"1")
	require.NoError(t, err)
	assert.False(t, exists)

	after, err := f.svc.List(ctx, 1, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), after.Total)

	empty, err := f.svc.List(ctx, 1, 5, 20)
	require.NoError(t, err)
	assert.Empty(t, empty.List)
}

func TestRecommendationService_InvalidTarget(t *testing.T) {
	f := newRecFixture(t, 20)
	assert.ErrorIs(t, f.svc.Dismiss(context.Background(), 1, 1), ErrRecommendationTarget)
	assert.ErrorIs(t, f.svc.MarkFollowed(context.Background(), 1, 0), ErrRecommendationTarget)
}

func TestRecommendationService_RefreshBatch(t *testing.T) {
	f := newRecFixture(t, 20)
	res, err := f.svc.RefreshBatch(context.Background(), []uint64{1, 2, 8})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Updated)
}

func TestRecommendationService_RefreshPagesPastExcludedCandidates(t *testing.T) {
	f := newRecFixture(t, 20)
	ctx := context.Background()

	f.sim.rows = make(map[similarity.Pair]*model.UserSimilarity)
	friends := make([]uint64, 0, 100)
	rows := make([]*model.UserSimilarity, 0, 103)
	for id := uint64(100); id < 200; id++ {
		friends = append(friends, id)
		rows = append(rows, simRow(1, id, 0.9, nil, nil))
	}
	for id := uint64(300); id < 303; id++ {
		rows = append(rows, simRow(1, id, 0.5, nil, nil))
	}
	require.NoError(t, f.sim.UpsertSimilarities(ctx, rows))
	f.friends.friends[1] = friends
	f.sim.pages = 0

	res, err := f.svc.Refresh(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Generated)
	assert.Equal(t, 2, f.sim.pages)

	got := f.recs.active(1)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.GreaterOrEqual(t, r.RecommendedUserID, uint64(300))
		assert.Equal(t, 1, r.Rank)
	}
}

func TestRecommendationService_ClearFlagsDropsPlaceholder(t *testing.T) {
	f := newRecFixture(t, 20)
	ctx := context.Background()
	_, err := f.svc.Refresh(ctx, 1)
	require.NoError(t, err)

	// 42 从未被推荐过，忽略后只留下排除标记
	require.NoError(t, f.svc.Dismiss(ctx, 1, 42))
	require.NoError(t, f.svc.ClearFlags(ctx, 1, 42))
	list, err := f.svc.List(ctx, 1, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(4), list.Total)
	for _, r := range list.List {
		assert.NotEqual(t, uint64(42), r.UserID)
		assert.NotZero(t, r.Rank)
	}
	assert.NotContains(t, f.recs.rows[1], uint64(42))

	// 生成过的候选解除标记后恢复原位置
	require.NoError(t, f.svc.Dismiss(ctx, 1, 2))
	require.NoError(t, f.svc.ClearFlags(ctx, 1, 2))
	list, err = f.svc.List(ctx, 1, 1, 20)
	require.NoError(t, err)
	require.NotEmpty(t, list.List)
	assert.Equal(t, uint64(2), list.List[0].UserID)
}
