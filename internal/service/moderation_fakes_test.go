package service

import (
	"Touchstone/internal/model"
	"Touchstone/internal/repository"
	"context"
	"sort"
	"sync"
	"time"
)

type fakeRuleRepo struct {
	mu     sync.Mutex
	rules  map[uint64]*model.ModerationRule
	terms  map[uint64]*model.SensitiveTerm
	nextID uint64
	dupErr error
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: map[uint64]*model.ModerationRule{}, terms: map[uint64]*model.SensitiveTerm{}}
}

func (f *fakeRuleRepo) id() uint64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRuleRepo) ListActiveRules(context.Context) ([]*model.ModerationRule, error) {
	all, _ := f.ListRules(context.Background(), "")
	out := all[:0]
	for _, r := range all {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleRepo) ListActiveTerms(context.Context) ([]*model.SensitiveTerm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.SensitiveTerm, 0, len(f.terms))
	for _, t := range f.terms {
		if t.IsActive {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRuleRepo) ListRules(_ context.Context, ruleType string) ([]*model.ModerationRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.ModerationRule, 0, len(f.rules))
	for _, r := range f.rules {
		if ruleType == "" || string(r.Type) == ruleType {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRuleRepo) GetRule(_ context.Context, id uint64) (*model.ModerationRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rules[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRuleRepo) CreateRule(_ context.Context, rule *model.ModerationRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule.ID = f.id()
	cp := *rule
	f.rules[rule.ID] = &cp
	return nil
}

func (f *fakeRuleRepo) UpdateRule(_ context.Context, rule *model.ModerationRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rule
	f.rules[rule.ID] = &cp
	return nil
}

func (f *fakeRuleRepo) DeleteRule(_ context.Context, id uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rules[id]; !ok {
		return 0, nil
	}
	delete(f.rules, id)
	return 1, nil
}

func (f *fakeRuleRepo) ListTerms(_ context.Context, category string, limit, offset int) ([]*model.SensitiveTerm, int64, error) {
	all, _ := f.ListActiveTerms(context.Background())
	out := make([]*model.SensitiveTerm, 0, len(all))
	for _, t := range all {
		if category == "" || t.Category == category {
			out = append(out, t)
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return []*model.SensitiveTerm{}, total, nil
	}
	return out[offset:min(offset+limit, len(out))], total, nil
}

func (f *fakeRuleRepo) GetTerm(_ context.Context, id uint64) (*model.SensitiveTerm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.terms[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeRuleRepo) CreateTerms(_ context.Context, terms []*model.SensitiveTerm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dupErr != nil {
		return f.dupErr
	}
	for _, t := range terms {
		t.ID = f.id()
		cp := *t
		f.terms[t.ID] = &cp
	}
	return nil
}

func (f *fakeRuleRepo) UpdateTerm(_ context.Context, term *model.SensitiveTerm) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *term
	f.terms[term.ID] = &cp
	return nil
}

func (f *fakeRuleRepo) DeleteTerm(_ context.Context, id uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.terms[id]; !ok {
		return 0, nil
	}
	delete(f.terms, id)
	return 1, nil
}

type fakeQueueRepo struct {
	mu    sync.Mutex
	items map[uint64]*model.ReviewQueueItem
	next  uint64
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{items: map[uint64]*model.ReviewQueueItem{}}
}

// Enqueue 同一内容重复入队时覆盖原记录
func (f *fakeQueueRepo) Enqueue(_ context.Context, item *model.ReviewQueueItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range f.items {
		if it.ContentType == item.ContentType && it.ContentID == item.ContentID {
			item.ID = it.ID
		}
	}
	if item.ID == 0 {
		f.next++
		item.ID = f.next
	}
	if item.Status == "" {
		item.Status = model.QueueStatusPending
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeQueueRepo) GetItem(_ context.Context, id uint64) (*model.ReviewQueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (f *fakeQueueRepo) ListItems(_ context.Context, filter repository.QueueFilter, limit, offset int) ([]*model.ReviewQueueItem, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.ReviewQueueItem, 0)
	for _, it := range f.items {
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && it.Priority != filter.Priority {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if offset >= len(out) {
		return []*model.ReviewQueueItem{}, total, nil
	}
	return out[offset:min(offset+limit, len(out))], total, nil
}

func (f *fakeQueueRepo) Assign(_ context.Context, ids []uint64, reviewerID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, id := range ids {
		if it, ok := f.items[id]; ok && it.Status == model.QueueStatusPending {
			it.Status = model.QueueStatusAssigned
			it.AssignedTo = &reviewerID
			n++
		}
	}
	return n, nil
}

func (f *fakeQueueRepo) Resolve(_ context.Context, p repository.ResolveParams) (*model.ReviewQueueItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[p.ItemID]
	if !ok {
		return nil, repository.ErrQueueItemMissing
	}
	if it.Status == model.QueueStatusApproved || it.Status == model.QueueStatusRejected {
		return nil, repository.ErrQueueItemResolved
	}
	it.Status = model.QueueStatusRejected
	if p.Approve {
		it.Status = model.QueueStatusApproved
	}
	now := time.Now()
	it.ReviewedBy = &p.ReviewerID
	it.ReviewNote = p.Note
	it.ReviewedAt = &now
	cp := *it
	return &cp, nil
}

func (f *fakeQueueRepo) CountByStatus(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, it := range f.items {
		out[it.Status]++
	}
	return out, nil
}

func (f *fakeQueueRepo) CountPendingByPriority(context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, it := range f.items {
		if it.Status == model.QueueStatusPending || it.Status == model.QueueStatusAssigned {
			out[it.Priority]++
		}
	}
	return out, nil
}

type fakeStatRepo struct {
	mu     sync.Mutex
	deltas []repository.StatDelta
	stats  map[uint64]*model.UserModerationStat
}

func newFakeStatRepo() *fakeStatRepo {
	return &fakeStatRepo{stats: map[uint64]*model.UserModerationStat{}}
}

func (f *fakeStatRepo) ApplyDelta(_ context.Context, d repository.StatDelta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deltas = append(f.deltas, d)
	st, ok := f.stats[d.UserID]
	if !ok {
		st = &model.UserModerationStat{UserID: d.UserID}
		f.stats[d.UserID] = st
	}
	st.TotalContent += d.Total
	st.ModeratedCount += d.Moderated
	st.RejectedCount += d.Rejected
	st.FlaggedCount += d.Flagged
	st.ViolationScore += d.Score
	if d.ViolationAt != nil {
		st.LastViolationAt = d.ViolationAt
	}
	return nil
}

func (f *fakeStatRepo) GetStat(_ context.Context, userID uint64) (*model.UserModerationStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.stats[userID]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (f *fakeStatRepo) TopViolators(context.Context, int) ([]*model.UserModerationStat, error) {
	return []*model.UserModerationStat{}, nil
}

type fakeLogRepo struct {
	mu   sync.Mutex
	logs []*model.ModerationLog
}

func (f *fakeLogRepo) CreateLog(_ context.Context, entry *model.ModerationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeLogRepo) CountViolationsSince(_ context.Context, userID uint64, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, l := range f.logs {
		if l.UserID == userID && l.Action != string(model.RuleActionPass) {
			n++
		}
	}
	return n, nil
}

func (f *fakeLogRepo) CountByActionSince(context.Context, time.Time) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int64{}
	for _, l := range f.logs {
		out[l.Action]++
	}
	return out, nil
}

func (f *fakeLogRepo) ListByUser(context.Context, uint64, int, int) ([]*model.ModerationLog, error) {
	return nil, nil
}

func repositoryFilterAll() repository.QueueFilter {
	return repository.QueueFilter{}
}
