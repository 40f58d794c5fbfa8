package similarity

import (
	"math"
	"slices"
)

// Category 行为类别
type Category string

const (
	CategoryMedia      Category = "media"
	CategoryCharacter  Category = "character"
	CategoryHighlight  Category = "highlight"
	CategoryPostUpvote Category = "post_upvote"
)

// Categories 固定顺序，保证输出稳定
var Categories = []Category{CategoryMedia, CategoryCharacter, CategoryHighlight, CategoryPostUpvote}

// Profile 一个用户的兴趣标签与行为集合
type Profile struct {
	UserID    uint64
	Tags      map[uint64]struct{}
	Behaviors map[Category]map[uint64]struct{}
}

func NewProfile(userID uint64) *Profile {
	return &Profile{
		UserID:    userID,
		Tags:      make(map[uint64]struct{}),
		Behaviors: make(map[Category]map[uint64]struct{}),
	}
}

func (p *Profile) AddTags(ids ...uint64) {
	for _, id := range ids {
		p.Tags[id] = struct{}{}
	}
}

func (p *Profile) AddBehavior(cat Category, ids ...uint64) {
	set, ok := p.Behaviors[cat]
	if !ok {
		set = make(map[uint64]struct{}, len(ids))
		p.Behaviors[cat] = set
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
}

// Empty 没有任何标签和行为
func (p *Profile) Empty() bool {
	if len(p.Tags) > 0 {
		return false
	}
	for _, set := range p.Behaviors {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

// Config 打分参数
type Config struct {
	StaticWeight   float64
	BehaviorWeight float64
	Weights        map[Category]float64
}

func DefaultConfig() Config {
	return Config{
		StaticWeight:   0.3,
		BehaviorWeight: 0.7,
		Weights: map[Category]float64{
			CategoryMedia:      0.9,
			CategoryCharacter:  0.8,
			CategoryHighlight:  0.6,
			CategoryPostUpvote: 0.5,
		},
	}
}

// ConfigFromMap 覆盖默认配置，权重表按类别名匹配
func ConfigFromMap(static, behavior float64, weights map[string]float64) Config {
	c := DefaultConfig()
	if static > 0 || behavior > 0 {
		c.StaticWeight = static
		c.BehaviorWeight = behavior
	}
	for _, cat := range Categories {
		if w, ok := weights[string(cat)]; ok {
			c.Weights[cat] = w
		}
	}
	return c
}

// Result 一对用户的相似度
type Result struct {
	Static          float64
	Behavior        float64
	Combined        float64
	CommonInterests []uint64
	CommonBehaviors map[Category][]uint64
}

// Matches 共同行为总数
func (r *Result) Matches() int {
	n := 0
	for _, ids := range r.CommonBehaviors {
		n += len(ids)
	}
	return n
}

type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score 对称：Score(a,b) 与 Score(b,a) 结果一致
func (s *Scorer) Score(a, b *Profile) Result {
	res := Result{CommonBehaviors: make(map[Category][]uint64)}

	common := intersect(a.Tags, b.Tags)
	union := len(a.Tags) + len(b.Tags) - len(common)
	if union > 0 {
		res.Static = round(float64(len(common)) / float64(union))
	}
	res.CommonInterests = common

	var weightSum float64
	matches := 0
	for _, cat := range Categories {
		shared := intersect(a.Behaviors[cat], b.Behaviors[cat])
		if len(shared) == 0 {
			continue
		}
		res.CommonBehaviors[cat] = shared
		weightSum += s.cfg.Weights[cat] * float64(len(shared))
		matches += len(shared)
	}
	if matches > 0 {
		res.Behavior = round(math.Min(1, weightSum/float64(matches)))
	}

	res.Combined = round(s.cfg.StaticWeight*res.Static + s.cfg.BehaviorWeight*res.Behavior)
	return res
}

func intersect(a, b map[uint64]struct{}) []uint64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make([]uint64, 0)
	for id := range a {
		if _, ok := b[id]; ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
