package repository

import (
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/heat"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type PostRepo interface {
	GetPost(ctx context.Context, id uint64) (*model.Post, error)
	GetHeatInput(ctx context.Context, id uint64) (*heat.Input, error)
	GetHeatInputs(ctx context.Context, ids []uint64) ([]heat.Input, error)
	ListRecentCandidateIDs(ctx context.Context, since time.Time, limit int) ([]uint64, error)
	ListIDsAfter(ctx context.Context, afterID uint64, limit int) ([]uint64, error)
	UpdateHeatScore(ctx context.Context, id uint64, score float64) error
	UpdateContentStatus(ctx context.Context, contentType string, id uint64, status int8) error
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

func (s *PostRepoImpl) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Where("is_deleted = ?", false).First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func toHeatInput(p *model.Post) heat.Input {
	return heat.Input{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Likes:     p.LikesCount,
		Dislikes:  p.DislikesCount,
		Comments:  p.CommentsCount,
		Favorites: p.CollectsCount,
		Reposts:   p.RepostsCount,
	}
}

var heatColumns = []string{
	"id", "created_at", "likes_count", "dislikes_count", "comments_count", "collects_count", "reposts_count",
}

// GetHeatInput 帖子不存在或已删除时返回 nil
func (s *PostRepoImpl) GetHeatInput(ctx context.Context, id uint64) (*heat.Input, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Select(heatColumns).
		Where("id = ? AND is_deleted = ?", id, false).
		Take(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	in := toHeatInput(&post)
	return &in, nil
}

func (s *PostRepoImpl) GetHeatInputs(ctx context.Context, ids []uint64) ([]heat.Input, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	posts := make([]*model.Post, 0, len(ids))
	err := s.db.WithContext(ctx).
		Select(heatColumns).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	out := make([]heat.Input, 0, len(posts))
	for _, p := range posts {
		out = append(out, toHeatInput(p))
	}
	return out, nil
}

// ListRecentCandidateIDs 窗口内新建或有互动的帖子
func (s *PostRepoImpl) ListRecentCandidateIDs(ctx context.Context, since time.Time, limit int) ([]uint64, error) {
	db := s.db.WithContext(ctx)
	created := db.Model(&model.Post{}).Select("id AS post_id").Where("created_at >= ? AND is_deleted = ?", since, false)
	voted := db.Model(&model.PostVote{}).Select("post_id").Where("created_at >= ?", since)
	collected := db.Model(&model.Collection{}).Select("post_id").Where("created_at >= ?", since)
	commented := db.Model(&model.PostComment{}).Select("post_id").Where("created_at >= ?", since)

	ids := make([]uint64, 0)
	err := db.Raw("SELECT DISTINCT c.post_id FROM ((?) UNION (?) UNION (?) UNION (?)) AS c ORDER BY c.post_id DESC LIMIT ?",
		created, voted, collected, commented, limit).
		Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListIDsAfter 按 id 游标分页
func (s *PostRepoImpl) ListIDsAfter(ctx context.Context, afterID uint64, limit int) ([]uint64, error) {
	ids := make([]uint64, 0, limit)
	err := s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id > ? AND is_deleted = ?", afterID, false).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// UpdateHeatScore 不刷新 updated_at
func (s *PostRepoImpl) UpdateHeatScore(ctx context.Context, id uint64, score float64) error {
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("heat_score", score).Error
}

func (s *PostRepoImpl) UpdateContentStatus(ctx context.Context, contentType string, id uint64, status int8) error {
	return updateContentStatus(s.db.WithContext(ctx), contentType, id, status)
}

func updateContentStatus(db *gorm.DB, contentType string, id uint64, status int8) error {
	var target interface{}
	switch contentType {
	case model.ContentTypePost:
		target = &model.Post{}
	case model.ContentTypeComment:
		target = &model.PostComment{}
	default:
		return fmt.Errorf("unknown content type %q", contentType)
	}
	return db.Model(target).Where("id = ?", id).Update("status", status).Error
}
