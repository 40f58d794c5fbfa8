package repository

import (
	"Touchstone/internal/model"
	"context"

	"gorm.io/gorm"
)

type TagRepo interface {
	GetTagNames(ctx context.Context, ids []uint64) (map[uint64]string, error)
}

type tagRepoImpl struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepo {
	return &tagRepoImpl{
		db: db,
	}
}

func (s *tagRepoImpl) GetTagNames(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	if len(ids) == 0 {
		return map[uint64]string{}, nil
	}
	var tags []*model.Tag
	err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&tags).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]string, len(tags))
	for _, t := range tags {
		out[t.ID] = t.Name
	}
	return out, nil
}
