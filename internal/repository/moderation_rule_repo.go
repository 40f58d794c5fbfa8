package repository

import (
	"Touchstone/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ModerationRuleRepo interface {
	ListActiveRules(ctx context.Context) ([]*model.ModerationRule, error)
	ListActiveTerms(ctx context.Context) ([]*model.SensitiveTerm, error)

	ListRules(ctx context.Context, ruleType string) ([]*model.ModerationRule, error)
	GetRule(ctx context.Context, id uint64) (*model.ModerationRule, error)
	CreateRule(ctx context.Context, rule *model.ModerationRule) error
	UpdateRule(ctx context.Context, rule *model.ModerationRule) error
	DeleteRule(ctx context.Context, id uint64) (int64, error)

	ListTerms(ctx context.Context, category string, limit, offset int) ([]*model.SensitiveTerm, int64, error)
	GetTerm(ctx context.Context, id uint64) (*model.SensitiveTerm, error)
	CreateTerms(ctx context.Context, terms []*model.SensitiveTerm) error
	UpdateTerm(ctx context.Context, term *model.SensitiveTerm) error
	DeleteTerm(ctx context.Context, id uint64) (int64, error)
}

type moderationRuleRepoImpl struct {
	db *gorm.DB
}

func NewModerationRuleRepo(db *gorm.DB) ModerationRuleRepo {
	return &moderationRuleRepoImpl{db: db}
}

// ListActiveRules 按优先级降序
func (r *moderationRuleRepoImpl) ListActiveRules(ctx context.Context) ([]*model.ModerationRule, error) {
	rules := make([]*model.ModerationRule, 0)
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority DESC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *moderationRuleRepoImpl) ListActiveTerms(ctx context.Context) ([]*model.SensitiveTerm, error) {
	terms := make([]*model.SensitiveTerm, 0)
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&terms).Error
	if err != nil {
		return nil, err
	}
	return terms, nil
}

func (r *moderationRuleRepoImpl) ListRules(ctx context.Context, ruleType string) ([]*model.ModerationRule, error) {
	rules := make([]*model.ModerationRule, 0)
	db := r.db.WithContext(ctx)
	if ruleType != "" {
		db = db.Where("type = ?", ruleType)
	}
	if err := db.Order("priority DESC, id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *moderationRuleRepoImpl) GetRule(ctx context.Context, id uint64) (*model.ModerationRule, error) {
	var rule model.ModerationRule
	err := r.db.WithContext(ctx).First(&rule, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *moderationRuleRepoImpl) CreateRule(ctx context.Context, rule *model.ModerationRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// UpdateRule 全字段更新，is_active 为 false 时也会写入
func (r *moderationRuleRepoImpl) UpdateRule(ctx context.Context, rule *model.ModerationRule) error {
	return r.db.WithContext(ctx).
		Model(rule).
		Select("name", "type", "config", "severity_score", "action", "priority", "is_active").
		Updates(rule).Error
}

func (r *moderationRuleRepoImpl) DeleteRule(ctx context.Context, id uint64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.ModerationRule{}, id)
	return result.RowsAffected, result.Error
}

func (r *moderationRuleRepoImpl) ListTerms(ctx context.Context, category string, limit, offset int) ([]*model.SensitiveTerm, int64, error) {
	terms := make([]*model.SensitiveTerm, 0)
	var total int64
	db := r.db.WithContext(ctx).Model(&model.SensitiveTerm{})
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("id DESC").Limit(limit).Offset(offset).Find(&terms).Error; err != nil {
		return nil, 0, err
	}
	return terms, total, nil
}

func (r *moderationRuleRepoImpl) GetTerm(ctx context.Context, id uint64) (*model.SensitiveTerm, error) {
	var term model.SensitiveTerm
	err := r.db.WithContext(ctx).First(&term, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &term, nil
}

func (r *moderationRuleRepoImpl) CreateTerms(ctx context.Context, terms []*model.SensitiveTerm) error {
	if len(terms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(terms, 200).Error
}

func (r *moderationRuleRepoImpl) UpdateTerm(ctx context.Context, term *model.SensitiveTerm) error {
	return r.db.WithContext(ctx).
		Model(term).
		Select("term", "category", "severity", "is_active").
		Updates(term).Error
}

func (r *moderationRuleRepoImpl) DeleteTerm(ctx context.Context, id uint64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&model.SensitiveTerm{}, id)
	return result.RowsAffected, result.Error
}
