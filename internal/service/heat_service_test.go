package service

import (
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/heat"
	"Touchstone/internal/pkg/redis"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	redis.SetClient(client)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return mr
}

type fakePostRepo struct {
	mu       sync.Mutex
	posts    map[uint64]heat.Input
	failIDs  map[uint64]bool
	recent   []uint64
	scores   map[uint64]float64
	statuses map[uint64]int8
}

func newFakePostRepo(n int) *fakePostRepo {
	r := &fakePostRepo{
		posts:    make(map[uint64]heat.Input),
		failIDs:  make(map[uint64]bool),
		scores:   make(map[uint64]float64),
		statuses: make(map[uint64]int8),
	}
	now := time.Now()
	for i := 1; i <= n; i++ {
		r.posts[uint64(i)] = heat.Input{ID: uint64(i), CreatedAt: now, Likes: i}
	}
	return r
}

func (f *fakePostRepo) GetPost(_ context.Context, id uint64) (*model.Post, error) {
	if _, ok := f.posts[id]; !ok {
		return nil, nil
	}
	return &model.Post{ID: id}, nil
}

func (f *fakePostRepo) GetHeatInput(_ context.Context, id uint64) (*heat.Input, error) {
	in, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	return &in, nil
}

func (f *fakePostRepo) GetHeatInputs(_ context.Context, ids []uint64) ([]heat.Input, error) {
	out := make([]heat.Input, 0, len(ids))
	for _, id := range ids {
		if in, ok := f.posts[id]; ok {
			out = append(out, in)
		}
	}
	return out, nil
}

func (f *fakePostRepo) ListRecentCandidateIDs(_ context.Context, _ time.Time, limit int) ([]uint64, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakePostRepo) ListIDsAfter(_ context.Context, afterID uint64, limit int) ([]uint64, error) {
	ids := make([]uint64, 0)
	for id := range f.posts {
		if id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (f *fakePostRepo) UpdateHeatScore(_ context.Context, id uint64, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return errors.New("write failed")
	}
	f.scores[id] = score
	return nil
}

func (f *fakePostRepo) UpdateContentStatus(_ context.Context, _ string, id uint64, status int8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}

func newTestHeatService(repo *fakePostRepo) HeatService {
	return NewHeatService(repo, nil, heat.NewCalculator(heat.DefaultParams()), HeatOptions{PageSize: 10})
}

func TestHeatService_BatchUpdateCountsFailures(t *testing.T) {
	setupRedis(t)
	repo := newFakePostRepo(50)
	for _, id := range []uint64{3, 11, 22, 33, 44} {
		repo.failIDs[id] = true
	}
	svc := newTestHeatService(repo)

	ids := make([]uint64, 0, 50)
	for i := 1; i <= 50; i++ {
		ids = append(ids, uint64(i))
	}
	res, err := svc.BatchUpdate(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Total)
	assert.Equal(t, 45, res.Updated)
	assert.Equal(t, 5, res.Errors)
	assert.Len(t, repo.scores, 45)
	assert.NotContains(t, repo.scores, uint64(3))
}

func TestHeatService_BatchUpdateMissingPost(t *testing.T) {
	setupRedis(t)
	repo := newFakePostRepo(2)
	svc := newTestHeatService(repo)

	res, err := svc.BatchUpdate(context.Background(), []uint64{1, 2, 99})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 1, res.Errors)
}

func TestHeatService_BatchUpdateCanceled(t *testing.T) {
	setupRedis(t)
	svc := newTestHeatService(newFakePostRepo(5))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := svc.BatchUpdate(ctx, []uint64{1, 2, 3})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Updated)
}

func TestHeatService_RefreshPostHeat(t *testing.T) {
	mr := setupRedis(t)
	repo := newFakePostRepo(1)
	repo.posts[1] = heat.Input{ID: 1, CreatedAt: time.Now(), Likes: 2, Comments: 1}
	svc := newTestHeatService(repo)

	got, err := svc.RefreshPostHeat(context.Background(), 1)
	require.NoError(t, err)
	// 1 + 2*1 + 1*2，刚发布几乎不衰减
	assert.InDelta(t, 5.0, got.HeatScore, 0.01)
	assert.Equal(t, got.HeatScore, repo.scores[1])

	rank, err := mr.ZScore(consts.PostHeatRankKey, "1")
	require.NoError(t, err)
	assert.Equal(t, got.HeatScore, rank)

	_, err = svc.RefreshPostHeat(context.Background(), 42)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestHeatService_UpdateRecentDrainsDirtySet(t *testing.T) {
	mr := setupRedis(t)
	repo := newFakePostRepo(10)
	repo.recent = []uint64{5, 6, 7}
	svc := newTestHeatService(repo)
	ctx := context.Background()

	require.NoError(t, svc.MarkDirty(ctx, 1, 2, 5))

	res, err := svc.UpdateRecent(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 5, res.Updated)
	assert.False(t, mr.Exists(consts.PostHeatDirtyKey))
	assert.False(t, mr.Exists(consts.PostHeatDirtyKey+":processing"))
}

func TestHeatService_UpdateRecentRequeuesOverflow(t *testing.T) {
	mr := setupRedis(t)
	repo := newFakePostRepo(10)
	svc := newTestHeatService(repo)
	ctx := context.Background()

	require.NoError(t, svc.MarkDirty(ctx, 1, 2, 3, 4, 5))

	res, err := svc.UpdateRecent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)

	left, err := mr.Members(consts.PostHeatDirtyKey)
	require.NoError(t, err)
	assert.Len(t, left, 2)
}

func TestHeatService_UpdateRecentWithoutDirty(t *testing.T) {
	setupRedis(t)
	repo := newFakePostRepo(3)
	repo.recent = []uint64{1, 2}
	svc := newTestHeatService(repo)

	res, err := svc.UpdateRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
}

func TestHeatService_UpdateAllPages(t *testing.T) {
	setupRedis(t)
	repo := newFakePostRepo(25)
	svc := newTestHeatService(repo)

	res, err := svc.UpdateAll(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 25, res.Total)
	assert.Equal(t, 25, res.Updated)

	res, err = svc.UpdateAll(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Total)
}

func TestMergeCandidates(t *testing.T) {
	out, left := mergeCandidates([]uint64{1, 2, 2, 3}, []uint64{3, 4, 5}, 4)
	assert.Equal(t, []uint64{1, 2, 3, 4}, out)
	assert.Empty(t, left)

	out, left = mergeCandidates([]uint64{1, 2, 3}, []uint64{4}, 2)
	assert.Equal(t, []uint64{1, 2}, out)
	assert.Equal(t, []uint64{3}, left)
}

func redisExists(ctx context.Context, key string) (bool, error) {
	return redis.Exists(ctx, key)
}
