package service

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/moderation"
	"Touchstone/internal/pkg/util"
	"Touchstone/internal/repository"
	"context"
	log "log/slog"
	"strings"

	"github.com/jinzhu/copier"
)

type RuleService interface {
	ListRules(ctx context.Context, ruleType string) ([]*dto.RuleDTO, error)
	CreateRule(ctx context.Context, req *dto.RuleReq) (*dto.RuleDTO, error)
	UpdateRule(ctx context.Context, id uint64, req *dto.RuleReq) (*dto.RuleDTO, error)
	ToggleRule(ctx context.Context, id uint64, active bool) error
	DeleteRule(ctx context.Context, id uint64) error

	ListTerms(ctx context.Context, req *dto.TermListReq) (*dto.PageDTO, error)
	CreateTerms(ctx context.Context, req *dto.TermBatchReq) (int, error)
	UpdateTerm(ctx context.Context, id uint64, req *dto.TermReq) (*dto.TermDTO, error)
	DeleteTerm(ctx context.Context, id uint64) error

	// RefreshCache 重新加载规则快照，所有变更后自动调用
	RefreshCache(ctx context.Context) (*dto.SnapshotDTO, error)
}

type ruleServiceImpl struct {
	ruleRepo repository.ModerationRuleRepo
	store    *moderation.Store
}

func NewRuleService(ruleRepo repository.ModerationRuleRepo, store *moderation.Store) RuleService {
	return &ruleServiceImpl{
		ruleRepo: ruleRepo,
		store:    store,
	}
}

func (s *ruleServiceImpl) ListRules(ctx context.Context, ruleType string) ([]*dto.RuleDTO, error) {
	rules, err := s.ruleRepo.ListRules(ctx, ruleType)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.RuleDTO, 0, len(rules))
	for _, r := range rules {
		res = append(res, toRuleDTO(r))
	}
	return res, nil
}

// buildRule 写库前先编译一次，非法配置直接拒绝
func buildRule(req *dto.RuleReq) (*model.ModerationRule, error) {
	rule := &model.ModerationRule{
		Name:          strings.TrimSpace(req.Name),
		Type:          model.RuleType(req.Type),
		Config:        model.JSONRaw(req.Config),
		SeverityScore: req.SeverityScore,
		Action:        model.RuleAction(req.Action),
		Priority:      req.Priority,
		IsActive:      true,
	}
	if len(rule.Config) == 0 {
		rule.Config = model.JSONRaw("{}")
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if _, err := moderation.Compile(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *ruleServiceImpl) CreateRule(ctx context.Context, req *dto.RuleReq) (*dto.RuleDTO, error) {
	rule, err := buildRule(req)
	if err != nil {
		log.WarnContext(ctx, "reject invalid moderation rule", "err", err)
		return nil, ErrRuleInvalid
	}
	if err = s.ruleRepo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}
	s.refresh(ctx)
	return toRuleDTO(rule), nil
}

func (s *ruleServiceImpl) UpdateRule(ctx context.Context, id uint64, req *dto.RuleReq) (*dto.RuleDTO, error) {
	existing, err := s.ruleRepo.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrRuleNotFound
	}
	rule, err := buildRule(req)
	if err != nil {
		log.WarnContext(ctx, "reject invalid moderation rule", "id", id, "err", err)
		return nil, ErrRuleInvalid
	}
	if req.IsActive == nil {
		rule.IsActive = existing.IsActive
	}
	rule.ID = id
	rule.CreatedAt = existing.CreatedAt
	if err = s.ruleRepo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}
	s.refresh(ctx)
	return toRuleDTO(rule), nil
}

func (s *ruleServiceImpl) ToggleRule(ctx context.Context, id uint64, active bool) error {
	rule, err := s.ruleRepo.GetRule(ctx, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return ErrRuleNotFound
	}
	rule.IsActive = active
	if err = s.ruleRepo.UpdateRule(ctx, rule); err != nil {
		return err
	}
	s.refresh(ctx)
	return nil
}

func (s *ruleServiceImpl) DeleteRule(ctx context.Context, id uint64) error {
	n, err := s.ruleRepo.DeleteRule(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRuleNotFound
	}
	s.refresh(ctx)
	return nil
}

func (s *ruleServiceImpl) ListTerms(ctx context.Context, req *dto.TermListReq) (*dto.PageDTO, error) {
	limit, offset := util.Page(req.Page, req.PageSize, consts.DefaultPageSize, consts.MaxPageSize)
	terms, total, err := s.ruleRepo.ListTerms(ctx, req.Category, limit, offset)
	if err != nil {
		return nil, err
	}
	list := make([]*dto.TermDTO, 0, len(terms))
	for _, t := range terms {
		d := &dto.TermDTO{}
		_ = copier.Copy(d, t)
		list = append(list, d)
	}
	return &dto.PageDTO{Total: total, List: list}, nil
}

func (s *ruleServiceImpl) CreateTerms(ctx context.Context, req *dto.TermBatchReq) (int, error) {
	category := defaultCategory(req.Category)
	severity := defaultSeverity(req.Severity)

	seen := make(map[string]struct{}, len(req.Terms))
	terms := make([]*model.SensitiveTerm, 0, len(req.Terms))
	for _, raw := range req.Terms {
		t := strings.TrimSpace(raw)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, &model.SensitiveTerm{Term: t, Category: category, Severity: severity, IsActive: true})
	}
	if len(terms) == 0 {
		return 0, ErrParamInvalid
	}
	if err := s.ruleRepo.CreateTerms(ctx, terms); err != nil {
		if repository.IsDuplicateKey(err) {
			return 0, ErrTermExist
		}
		return 0, err
	}
	s.refresh(ctx)
	return len(terms), nil
}

func (s *ruleServiceImpl) UpdateTerm(ctx context.Context, id uint64, req *dto.TermReq) (*dto.TermDTO, error) {
	term, err := s.ruleRepo.GetTerm(ctx, id)
	if err != nil {
		return nil, err
	}
	if term == nil {
		return nil, ErrTermNotFound
	}
	term.Term = strings.TrimSpace(req.Term)
	term.Category = defaultCategory(req.Category)
	term.Severity = defaultSeverity(req.Severity)
	if req.IsActive != nil {
		term.IsActive = *req.IsActive
	}
	if err = s.ruleRepo.UpdateTerm(ctx, term); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, ErrTermExist
		}
		return nil, err
	}
	s.refresh(ctx)

	d := &dto.TermDTO{}
	_ = copier.Copy(d, term)
	return d, nil
}

func (s *ruleServiceImpl) DeleteTerm(ctx context.Context, id uint64) error {
	n, err := s.ruleRepo.DeleteTerm(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTermNotFound
	}
	s.refresh(ctx)
	return nil
}

func (s *ruleServiceImpl) RefreshCache(ctx context.Context) (*dto.SnapshotDTO, error) {
	snap, err := s.store.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	skipped := snap.Skipped
	if skipped == nil {
		skipped = []uint64{}
	}
	return &dto.SnapshotDTO{
		Version:  snap.Version,
		Rules:    len(snap.Rules),
		Terms:    len(snap.Terms),
		Skipped:  skipped,
		LoadedAt: util.FormatTime(snap.LoadedAt),
	}, nil
}

// refresh 变更已落库，刷新失败时保留旧快照并记录
func (s *ruleServiceImpl) refresh(ctx context.Context) {
	if _, err := s.store.Refresh(ctx); err != nil {
		log.ErrorContext(ctx, "refresh moderation snapshot error", "err", err)
	}
}

func defaultCategory(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return "general"
	}
	return c
}

func defaultSeverity(s int) int {
	if s < 1 || s > 3 {
		return 1
	}
	return s
}

func toRuleDTO(r *model.ModerationRule) *dto.RuleDTO {
	return &dto.RuleDTO{
		ID:            r.ID,
		Name:          r.Name,
		Type:          string(r.Type),
		Config:        []byte(r.Config),
		SeverityScore: r.SeverityScore,
		Action:        string(r.Action),
		Priority:      r.Priority,
		IsActive:      r.IsActive,
		UpdatedAt:     util.FormatTime(r.UpdatedAt),
	}
}
