package moderation

import (
	"Touchstone/internal/model"
	"context"
	"fmt"
	log "log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// RuleSource 规则与敏感词的持久化来源
type RuleSource interface {
	ListActiveRules(ctx context.Context) ([]*model.ModerationRule, error)
	ListActiveTerms(ctx context.Context) ([]*model.SensitiveTerm, error)
}

// Term 归一化后的敏感词
type Term struct {
	Term       string
	Normalized string
	Category   string
	Severity   int
}

// Snapshot 一次刷新得到的只读规则集，按优先级降序
type Snapshot struct {
	Version  uint64
	Rules    []*CompiledRule
	Terms    []Term
	Skipped  []uint64
	LoadedAt time.Time
}

// Store 持有当前快照，刷新时整体替换
type Store struct {
	src     RuleSource
	norm    Normalizer
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	mu      sync.Mutex
}

func NewStore(src RuleSource, norm Normalizer) *Store {
	if norm == nil {
		norm = LowerNormalizer{}
	}
	return &Store{src: src, norm: norm}
}

// Current 未加载过时返回 nil
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

func (s *Store) Normalizer() Normalizer {
	return s.norm
}

// Refresh 重新加载规则和敏感词，非法规则跳过并记录
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, err := s.src.ListActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load moderation rules: %w", err)
	}
	terms, err := s.src.ListActiveTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sensitive terms: %w", err)
	}

	snap := &Snapshot{
		Rules:    make([]*CompiledRule, 0, len(rules)),
		Terms:    make([]Term, 0, len(terms)),
		LoadedAt: time.Now(),
	}
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		compiled, err := Compile(r)
		if err != nil {
			log.WarnContext(ctx, "skip malformed moderation rule", "rule_id", r.ID, "err", err)
			snap.Skipped = append(snap.Skipped, r.ID)
			continue
		}
		snap.Rules = append(snap.Rules, compiled)
	}
	sort.SliceStable(snap.Rules, func(i, j int) bool {
		if snap.Rules[i].Priority != snap.Rules[j].Priority {
			return snap.Rules[i].Priority > snap.Rules[j].Priority
		}
		return snap.Rules[i].ID < snap.Rules[j].ID
	})

	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if !t.IsActive {
			continue
		}
		norm := s.norm.Normalize(strings.TrimSpace(t.Term))
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		snap.Terms = append(snap.Terms, Term{
			Term:       t.Term,
			Normalized: norm,
			Category:   t.Category,
			Severity:   t.Severity,
		})
	}

	snap.Version = s.version.Add(1)
	s.current.Store(snap)
	log.InfoContext(ctx, "moderation snapshot refreshed",
		"version", snap.Version, "rules", len(snap.Rules), "terms", len(snap.Terms), "skipped", len(snap.Skipped))
	return snap, nil
}
