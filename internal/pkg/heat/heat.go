package heat

import (
	"math"
	"time"
)

// Input 计算一篇帖子热度所需的计数快照
type Input struct {
	ID        uint64
	CreatedAt time.Time
	Likes     int
	Dislikes  int
	Comments  int
	Favorites int
	Reposts   int
}

// Weights 各互动类型的权重
type Weights struct {
	Like     float64
	Dislike  float64
	Comment  float64
	Favorite float64
	Repost   float64
}

// Params 热度公式参数
type Params struct {
	Base          float64
	HalfLifeHours float64
	MinDecay      float64
	Weights       Weights
}

// DefaultParams 默认：基础分 1，24 小时半衰，衰减下限 0.1
func DefaultParams() Params {
	return Params{
		Base:          1.0,
		HalfLifeHours: 24,
		MinDecay:      0.1,
		Weights: Weights{
			Like:     1.0,
			Comment:  2.0,
			Repost:   3.0,
			Favorite: 1.5,
		},
	}
}

// ParamsFromMap 用配置里的权重表覆盖默认值，未出现的键保持默认
func ParamsFromMap(base, halfLife, minDecay float64, weights map[string]float64) Params {
	p := DefaultParams()
	if base > 0 {
		p.Base = base
	}
	if halfLife > 0 {
		p.HalfLifeHours = halfLife
	}
	if minDecay > 0 {
		p.MinDecay = minDecay
	}
	for k, w := range weights {
		switch k {
		case "like":
			p.Weights.Like = w
		case "dislike":
			p.Weights.Dislike = w
		case "comment":
			p.Weights.Comment = w
		case "favorite":
			p.Weights.Favorite = w
		case "repost":
			p.Weights.Repost = w
		}
	}
	return p
}

// Calculator 纯函数计算器，无 I/O
type Calculator struct {
	params Params
	now    func() time.Time
}

func NewCalculator(params Params) *Calculator {
	return &Calculator{params: params, now: time.Now}
}

// WithClock 替换时钟，测试用
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Decay 按帖子年龄(小时)计算衰减系数，负年龄视为 0
func (c *Calculator) Decay(ageHours float64) float64 {
	if ageHours <= 0 {
		return 1
	}
	d := math.Pow(2, -ageHours/c.params.HalfLifeHours)
	return math.Max(c.params.MinDecay, d)
}

// Score 计算热度分，结果不小于 0 并保留 4 位小数
func (c *Calculator) Score(in Input) float64 {
	w := c.params.Weights
	raw := c.params.Base +
		w.Like*float64(in.Likes) +
		w.Dislike*float64(in.Dislikes) +
		w.Comment*float64(in.Comments) +
		w.Favorite*float64(in.Favorites) +
		w.Repost*float64(in.Reposts)

	age := c.now().Sub(in.CreatedAt).Hours()
	score := raw * c.Decay(age)
	if score < 0 || math.IsNaN(score) {
		return 0
	}
	return Round(score)
}

// Round 保留 4 位小数
func Round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
