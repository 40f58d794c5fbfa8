package service

import (
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/similarity"
	"Touchstone/internal/repository"
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSimilarityRepo struct {
	mu      sync.Mutex
	rows    map[similarity.Pair]*model.UserSimilarity
	upserts int
	failOn  map[similarity.Pair]bool
	pages   int
}

func newFakeSimilarityRepo() *fakeSimilarityRepo {
	return &fakeSimilarityRepo{rows: make(map[similarity.Pair]*model.UserSimilarity)}
}

func (f *fakeSimilarityRepo) GetSimilarity(_ context.Context, lo, hi uint64) (*model.UserSimilarity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[similarity.Pair{Lo: lo, Hi: hi}]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeSimilarityRepo) UpsertSimilarities(_ context.Context, rows []*model.UserSimilarity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	for _, row := range rows {
		if f.failOn[similarity.Pair{Lo: row.UserLo, Hi: row.UserHi}] {
			return errors.New("deadlock found when trying to get lock")
		}
	}
	for _, row := range rows {
		cp := *row
		f.rows[similarity.Pair{Lo: row.UserLo, Hi: row.UserHi}] = &cp
	}
	return nil
}

func (f *fakeSimilarityRepo) ZeroStale(_ context.Context, userIDs []uint64, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for pair, row := range f.rows {
		if !slices.Contains(userIDs, pair.Lo) || !slices.Contains(userIDs, pair.Hi) {
			continue
		}
		if row.LastCalculatedAt.Before(before) && row.CombinedScore > 0 {
			row.StaticSimilarity, row.BehaviorSimilarity, row.CombinedScore = 0, 0, 0
			row.LastCalculatedAt = before
			n++
		}
	}
	return n, nil
}

func (f *fakeSimilarityRepo) ListForUser(_ context.Context, userID uint64, minScore float64, after *repository.SimilarityCursor, limit int) ([]*model.UserSimilarity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages++
	out := make([]*model.UserSimilarity, 0)
	for pair, row := range f.rows {
		if pair.Lo != userID && pair.Hi != userID || row.CombinedScore <= minScore {
			continue
		}
		if after != nil && !afterCursor(row, after) {
			continue
		}
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b *model.UserSimilarity) int {
		if a.CombinedScore != b.CombinedScore {
			if a.CombinedScore > b.CombinedScore {
				return -1
			}
			return 1
		}
		if a.UserLo != b.UserLo {
			return cmp.Compare(a.UserLo, b.UserLo)
		}
		return cmp.Compare(a.UserHi, b.UserHi)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// afterCursor 与 SQL 中的键集条件一致
func afterCursor(row *model.UserSimilarity, c *repository.SimilarityCursor) bool {
	if row.CombinedScore != c.Score {
		return row.CombinedScore < c.Score
	}
	if row.UserLo != c.Lo {
		return row.UserLo > c.Lo
	}
	return row.UserHi > c.Hi
}

type fakeProfileRepo struct {
	profiles   map[uint64]*similarity.Profile
	media      map[uint64]string
	characters map[uint64]string
	loads      int
}

func (f *fakeProfileRepo) LoadProfiles(_ context.Context, userIDs []uint64) (map[uint64]*similarity.Profile, error) {
	f.loads++
	out := make(map[uint64]*similarity.Profile, len(userIDs))
	for _, id := range userIDs {
		if p, ok := f.profiles[id]; ok {
			out[id] = p
		} else {
			out[id] = similarity.NewProfile(id)
		}
	}
	return out, nil
}

func (f *fakeProfileRepo) GetMediaTitles(_ context.Context, ids []uint64) (map[uint64]string, error) {
	return pick(f.media, ids), nil
}

func (f *fakeProfileRepo) GetCharacterNames(_ context.Context, ids []uint64) (map[uint64]string, error) {
	return pick(f.characters, ids), nil
}

func pick(src map[uint64]string, ids []uint64) map[uint64]string {
	out := make(map[uint64]string)
	for _, id := range ids {
		if v, ok := src[id]; ok {
			out[id] = v
		}
	}
	return out
}

func testProfiles() map[uint64]*similarity.Profile {
	mk := func(id uint64, tags []uint64, media []uint64, posts []uint64) *similarity.Profile {
		p := similarity.NewProfile(id)
		p.AddTags(tags...)
		p.AddBehavior(similarity.CategoryMedia, media...)
		p.AddBehavior(similarity.CategoryPostUpvote, posts...)
		return p
	}
	return map[uint64]*similarity.Profile{
		1: mk(1, []uint64{1, 2}, []uint64{10}, nil),
		2: mk(2, []uint64{2, 3}, []uint64{10, 11}, []uint64{100}),
		3: mk(3, nil, []uint64{11}, []uint64{100}),
		4: mk(4, []uint64{9}, nil, nil),
		5: similarity.NewProfile(5),
	}
}

func newTestSimilarityService(sim *fakeSimilarityRepo, prof *fakeProfileRepo) SimilarityService {
	return NewSimilarityService(sim, prof, similarity.NewScorer(similarity.DefaultConfig()), SimilarityOptions{Workers: 2, ChunkSize: 1})
}

func TestSimilarityService_BatchMatchesFullSweep(t *testing.T) {
	sim := newFakeSimilarityRepo()
	prof := &fakeProfileRepo{profiles: testProfiles()}
	svc := newTestSimilarityService(sim, prof)

	res, err := svc.CalculateBatch(context.Background(), []uint64{5, 4, 3, 2, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, prof.loads)
	assert.Equal(t, res.Total, res.Updated)
	assert.Zero(t, res.Errors)

	scorer := similarity.NewScorer(similarity.DefaultConfig())
	ids := []uint64{1, 2, 3, 4, 5}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			want := scorer.Score(prof.profiles[ids[i]], prof.profiles[ids[j]])
			got, _ := sim.GetSimilarity(context.Background(), ids[i], ids[j])
			if want.Combined == 0 {
				if got != nil {
					assert.Zero(t, got.CombinedScore, "pair %d-%d", ids[i], ids[j])
				}
				continue
			}
			require.NotNil(t, got, "pair %d-%d", ids[i], ids[j])
			assert.Equal(t, want.Combined, got.CombinedScore)
			assert.Equal(t, want.Static, got.StaticSimilarity)
			assert.Equal(t, want.Behavior, got.BehaviorSimilarity)
		}
	}
}

func TestSimilarityService_BatchZeroesStalePairs(t *testing.T) {
	sim := newFakeSimilarityRepo()
	sim.rows[similarity.Pair{Lo: 4, Hi: 5}] = &model.UserSimilarity{
		UserLo: 4, UserHi: 5, CombinedScore: 0.5, LastCalculatedAt: time.Now().Add(-48 * time.Hour),
	}
	prof := &fakeProfileRepo{profiles: testProfiles()}
	svc := newTestSimilarityService(sim, prof)

	_, err := svc.CalculateBatch(context.Background(), []uint64{1, 2, 3, 4, 5})
	require.NoError(t, err)

	row, _ := sim.GetSimilarity(context.Background(), 4, 5)
	require.NotNil(t, row)
	assert.Zero(t, row.CombinedScore)
}

func TestSimilarityService_BatchKeepsScoresWhenUpsertFails(t *testing.T) {
	sim := newFakeSimilarityRepo()
	old := time.Now().Add(-48 * time.Hour)
	sim.rows[similarity.Pair{Lo: 1, Hi: 2}] = &model.UserSimilarity{
		UserLo: 1, UserHi: 2, CombinedScore: 0.65, LastCalculatedAt: old,
	}
	sim.rows[similarity.Pair{Lo: 4, Hi: 5}] = &model.UserSimilarity{
		UserLo: 4, UserHi: 5, CombinedScore: 0.5, LastCalculatedAt: old,
	}
	sim.failOn = map[similarity.Pair]bool{{Lo: 1, Hi: 2}: true}
	prof := &fakeProfileRepo{profiles: testProfiles()}
	svc := newTestSimilarityService(sim, prof)

	res, err := svc.CalculateBatch(context.Background(), []uint64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, res.Total-1, res.Updated)

	row, _ := sim.GetSimilarity(context.Background(), 1, 2)
	require.NotNil(t, row)
	assert.Equal(t, 0.65, row.CombinedScore)
	assert.Equal(t, old, row.LastCalculatedAt)

	// 下一轮全部写入成功后再清理
	row, _ = sim.GetSimilarity(context.Background(), 4, 5)
	require.NotNil(t, row)
	assert.Equal(t, 0.5, row.CombinedScore)

	sim.failOn = nil
	_, err = svc.CalculateBatch(context.Background(), []uint64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	row, _ = sim.GetSimilarity(context.Background(), 4, 5)
	assert.Zero(t, row.CombinedScore)
}

func TestSimilarityService_BatchSmallInput(t *testing.T) {
	svc := newTestSimilarityService(newFakeSimilarityRepo(), &fakeProfileRepo{})
	res, err := svc.CalculateBatch(context.Background(), []uint64{7, 7})
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}

func TestSimilarityService_GetSimilarityUsesFreshCache(t *testing.T) {
	sim := newFakeSimilarityRepo()
	sim.rows[similarity.Pair{Lo: 1, Hi: 2}] = &model.UserSimilarity{
		UserLo: 1, UserHi: 2, CombinedScore: 0.99, LastCalculatedAt: time.Now().Add(-time.Hour),
	}
	prof := &fakeProfileRepo{profiles: testProfiles()}
	svc := newTestSimilarityService(sim, prof)

	got, err := svc.GetSimilarity(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.99, got.CombinedScore)
	assert.Equal(t, uint64(2), got.UserID)
	assert.Equal(t, uint64(1), got.OtherUserID)
	assert.Zero(t, prof.loads)
}

func TestSimilarityService_GetSimilarityRecomputesStale(t *testing.T) {
	sim := newFakeSimilarityRepo()
	sim.rows[similarity.Pair{Lo: 1, Hi: 2}] = &model.UserSimilarity{
		UserLo: 1, UserHi: 2, CombinedScore: 0.99, LastCalculatedAt: time.Now().Add(-30 * 24 * time.Hour),
	}
	prof := &fakeProfileRepo{profiles: testProfiles()}
	svc := newTestSimilarityService(sim, prof)

	got, err := svc.GetSimilarity(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.NotEqual(t, 0.99, got.CombinedScore)
	assert.Equal(t, 1, prof.loads)
	assert.Equal(t, []uint64{2}, got.CommonInterests)
	assert.Equal(t, []uint64{10}, got.CommonBehaviors[string(similarity.CategoryMedia)])
}

func TestSimilarityService_Symmetric(t *testing.T) {
	prof := &fakeProfileRepo{profiles: testProfiles()}
	svc := newTestSimilarityService(newFakeSimilarityRepo(), prof)

	ab, err := svc.Calculate(context.Background(), 2, 3)
	require.NoError(t, err)
	ba, err := svc.Calculate(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, ab.CombinedScore, ba.CombinedScore)
	assert.Equal(t, ab.CommonBehaviors, ba.CommonBehaviors)
}

func TestSimilarityService_SelfRejected(t *testing.T) {
	svc := newTestSimilarityService(newFakeSimilarityRepo(), &fakeProfileRepo{})
	_, err := svc.GetSimilarity(context.Background(), 3, 3)
	assert.ErrorIs(t, err, ErrSimilaritySelf)
	_, err = svc.Calculate(context.Background(), 3, 3)
	assert.ErrorIs(t, err, ErrSimilaritySelf)
}
