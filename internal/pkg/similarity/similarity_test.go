package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(id uint64, tags []uint64, behaviors map[Category][]uint64) *Profile {
	p := NewProfile(id)
	p.AddTags(tags...)
	for cat, ids := range behaviors {
		p.AddBehavior(cat, ids...)
	}
	return p
}

func TestScore_StaticJaccard(t *testing.T) {
	s := NewScorer(DefaultConfig())
	a := profile(1, []uint64{1, 2, 3}, nil)
	b := profile(2, []uint64{2, 3, 4, 5}, nil)

	res := s.Score(a, b)
	assert.Equal(t, 0.4, res.Static)
	assert.Equal(t, []uint64{2, 3}, res.CommonInterests)
	assert.Equal(t, 0.0, res.Behavior)
	assert.InDelta(t, 0.12, res.Combined, 1e-9)
}

func TestScore_EmptyProfilesScoreZero(t *testing.T) {
	s := NewScorer(DefaultConfig())
	res := s.Score(NewProfile(1), NewProfile(2))
	assert.Zero(t, res.Static)
	assert.Zero(t, res.Behavior)
	assert.Zero(t, res.Combined)
	assert.Empty(t, res.CommonInterests)
}

func TestScore_BehaviorIsMeanWeightOfMatches(t *testing.T) {
	s := NewScorer(DefaultConfig())
	a := profile(1, nil, map[Category][]uint64{
		CategoryMedia:      {10, 11},
		CategoryPostUpvote: {100, 101, 102},
	})
	b := profile(2, nil, map[Category][]uint64{
		CategoryMedia:      {10},
		CategoryPostUpvote: {101, 102, 103},
	})

	res := s.Score(a, b)
	// (0.9 + 0.5*2) / 3
	assert.InDelta(t, 0.6333, res.Behavior, 1e-9)
	assert.Equal(t, []uint64{10}, res.CommonBehaviors[CategoryMedia])
	assert.Equal(t, []uint64{101, 102}, res.CommonBehaviors[CategoryPostUpvote])
	assert.Equal(t, 3, res.Matches())
	assert.InDelta(t, 0.4433, res.Combined, 1e-9)
}

func TestScore_BehaviorClampedToOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights[CategoryMedia] = 3
	s := NewScorer(cfg)
	a := profile(1, nil, map[Category][]uint64{CategoryMedia: {1}})
	b := profile(2, nil, map[Category][]uint64{CategoryMedia: {1}})
	assert.Equal(t, 1.0, s.Score(a, b).Behavior)
}

func TestScore_Symmetric(t *testing.T) {
	s := NewScorer(DefaultConfig())
	a := profile(1, []uint64{1, 2}, map[Category][]uint64{CategoryCharacter: {5, 6}, CategoryHighlight: {7}})
	b := profile(2, []uint64{2, 9}, map[Category][]uint64{CategoryCharacter: {6}, CategoryHighlight: {7, 8}})
	assert.Equal(t, s.Score(a, b), s.Score(b, a))
}

func TestScore_InRange(t *testing.T) {
	s := NewScorer(DefaultConfig())
	a := profile(1, []uint64{1}, map[Category][]uint64{CategoryMedia: {1}, CategoryCharacter: {1}})
	b := profile(2, []uint64{1}, map[Category][]uint64{CategoryMedia: {1}, CategoryCharacter: {1}})
	res := s.Score(a, b)
	assert.Equal(t, 1.0, res.Static)
	assert.LessOrEqual(t, res.Combined, 1.0)
	assert.GreaterOrEqual(t, res.Combined, 0.0)
}

func TestConfigFromMap(t *testing.T) {
	c := ConfigFromMap(0.5, 0.5, map[string]float64{"media": 1})
	assert.Equal(t, 0.5, c.StaticWeight)
	assert.Equal(t, 1.0, c.Weights[CategoryMedia])
	assert.Equal(t, 0.8, c.Weights[CategoryCharacter])

	c = ConfigFromMap(0, 0, nil)
	assert.Equal(t, 0.3, c.StaticWeight)
	assert.Equal(t, 0.7, c.BehaviorWeight)
}

func TestNewPair(t *testing.T) {
	p, ok := NewPair(9, 3)
	require.True(t, ok)
	assert.Equal(t, Pair{Lo: 3, Hi: 9}, p)

	_, ok = NewPair(4, 4)
	assert.False(t, ok)
}

func TestCandidatePairs_MatchesFullSweep(t *testing.T) {
	profiles := []*Profile{
		profile(1, []uint64{1}, nil),
		profile(2, []uint64{1, 2}, map[Category][]uint64{CategoryMedia: {50}}),
		profile(3, nil, map[Category][]uint64{CategoryMedia: {50}}),
		profile(4, []uint64{7}, nil),
		profile(5, nil, map[Category][]uint64{CategoryHighlight: {50}}),
	}

	pairs := CandidatePairs(profiles)
	assert.Equal(t, []Pair{{Lo: 1, Hi: 2}, {Lo: 2, Hi: 3}}, pairs)

	// 倒排索引外的用户对在全量计算中得分必为 0
	s := NewScorer(DefaultConfig())
	inIndex := make(map[Pair]bool)
	for _, p := range pairs {
		inIndex[p] = true
	}
	for i := range profiles {
		for j := i + 1; j < len(profiles); j++ {
			pair, _ := NewPair(profiles[i].UserID, profiles[j].UserID)
			res := s.Score(profiles[i], profiles[j])
			if !inIndex[pair] {
				assert.Zero(t, res.Combined, "pair %v", pair)
			} else {
				assert.Positive(t, res.Combined, "pair %v", pair)
			}
		}
	}
}
