package similarity

import (
	"cmp"
	"slices"
)

// Pair 规范化的用户对，Lo < Hi
type Pair struct {
	Lo uint64
	Hi uint64
}

// NewPair 返回规范顺序，两个 id 相同时 ok 为 false
func NewPair(a, b uint64) (Pair, bool) {
	if a == b {
		return Pair{}, false
	}
	if a > b {
		a, b = b, a
	}
	return Pair{Lo: a, Hi: b}, true
}

type itemKey struct {
	cat string
	id  uint64
}

const tagCategory = "tag"

// CandidatePairs 通过倒排索引只枚举至少共享一个标签或行为对象的用户对。
// 未出现在结果里的用户对相似度必为 0。
func CandidatePairs(profiles []*Profile) []Pair {
	index := make(map[itemKey][]uint64)
	for _, p := range profiles {
		for id := range p.Tags {
			k := itemKey{cat: tagCategory, id: id}
			index[k] = append(index[k], p.UserID)
		}
		for cat, set := range p.Behaviors {
			for id := range set {
				k := itemKey{cat: string(cat), id: id}
				index[k] = append(index[k], p.UserID)
			}
		}
	}

	seen := make(map[Pair]struct{})
	for _, users := range index {
		for i := 0; i < len(users); i++ {
			for j := i + 1; j < len(users); j++ {
				if pair, ok := NewPair(users[i], users[j]); ok {
					seen[pair] = struct{}{}
				}
			}
		}
	}

	pairs := make([]Pair, 0, len(seen))
	for p := range seen {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := cmp.Compare(a.Lo, b.Lo); c != 0 {
			return c
		}
		return cmp.Compare(a.Hi, b.Hi)
	})
	return pairs
}
