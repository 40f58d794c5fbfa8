package repository

import (
	"Touchstone/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueueFilter 队列查询条件，空值表示不过滤
type QueueFilter struct {
	Status      string
	Priority    string
	ContentType string
}

// ResolveParams 人工审核结论
type ResolveParams struct {
	ItemID     uint64
	ReviewerID uint64
	Approve    bool
	Note       string
}

type ReviewQueueRepo interface {
	Enqueue(ctx context.Context, item *model.ReviewQueueItem) error
	GetItem(ctx context.Context, id uint64) (*model.ReviewQueueItem, error)
	ListItems(ctx context.Context, filter QueueFilter, limit, offset int) ([]*model.ReviewQueueItem, int64, error)
	Assign(ctx context.Context, ids []uint64, reviewerID uint64) (int64, error)
	Resolve(ctx context.Context, params ResolveParams) (*model.ReviewQueueItem, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountPendingByPriority(ctx context.Context) (map[string]int64, error)
}

type reviewQueueRepoImpl struct {
	db *gorm.DB
}

func NewReviewQueueRepo(db *gorm.DB) ReviewQueueRepo {
	return &reviewQueueRepoImpl{db: db}
}

// Enqueue 同一内容重复入队时重置为待审核
func (r *reviewQueueRepoImpl) Enqueue(ctx context.Context, item *model.ReviewQueueItem) error {
	if item.Status == "" {
		item.Status = model.QueueStatusPending
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_type"}, {Name: "content_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"user_id":        item.UserID,
			"priority":       item.Priority,
			"severity_score": item.SeverityScore,
			"reason":         item.Reason,
			"status":         model.QueueStatusPending,
			"assigned_to":    nil,
			"reviewed_by":    nil,
			"review_note":    "",
			"reviewed_at":    nil,
			"updated_at":     time.Now(),
		}),
	}).Create(item).Error
}

func (r *reviewQueueRepoImpl) GetItem(ctx context.Context, id uint64) (*model.ReviewQueueItem, error) {
	var item model.ReviewQueueItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItems urgent 优先，同级按入队时间
func (r *reviewQueueRepoImpl) ListItems(ctx context.Context, filter QueueFilter, limit, offset int) ([]*model.ReviewQueueItem, int64, error) {
	items := make([]*model.ReviewQueueItem, 0)
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ReviewQueueItem{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		db = db.Where("priority = ?", filter.Priority)
	}
	if filter.ContentType != "" {
		db = db.Where("content_type = ?", filter.ContentType)
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.
		Order(clause.Expr{SQL: "FIELD(priority, ?, ?, ?)", Vars: []interface{}{
			model.QueuePriorityUrgent, model.QueuePriorityHigh, model.QueuePriorityNormal,
		}}).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Assign 只分配尚未给出结论的条目
func (r *reviewQueueRepoImpl) Assign(ctx context.Context, ids []uint64, reviewerID uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.ReviewQueueItem{}).
		Where("id IN ?", ids).
		Where("status IN ?", []string{model.QueueStatusPending, model.QueueStatusAssigned}).
		Updates(map[string]interface{}{
			"status":      model.QueueStatusAssigned,
			"assigned_to": reviewerID,
		})
	return result.RowsAffected, result.Error
}

// Resolve 在一个事务里写入队列状态、内容状态、审核日志和用户统计
func (r *reviewQueueRepoImpl) Resolve(ctx context.Context, params ResolveParams) (*model.ReviewQueueItem, error) {
	var item model.ReviewQueueItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, params.ItemID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQueueItemMissing
			}
			return err
		}
		if item.IsResolved() {
			return ErrQueueItemResolved
		}

		now := time.Now()
		status := model.QueueStatusRejected
		contentStatus := model.ContentStatusRejected
		logAction := model.LogActionManualReject
		if params.Approve {
			status = model.QueueStatusApproved
			contentStatus = model.ContentStatusPublished
			logAction = model.LogActionManualApprove
		}

		reviewer := params.ReviewerID
		item.Status = status
		item.ReviewedBy = &reviewer
		item.ReviewNote = params.Note
		item.ReviewedAt = &now
		err = tx.Model(&item).Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewer,
			"review_note": params.Note,
			"reviewed_at": now,
		}).Error
		if err != nil {
			return err
		}

		if err = updateContentStatus(tx, item.ContentType, item.ContentID, contentStatus); err != nil {
			return err
		}

		contentID := item.ContentID
		entry := &model.ModerationLog{
			ContentType:   item.ContentType,
			ContentID:     &contentID,
			UserID:        item.UserID,
			Action:        logAction,
			Reason:        params.Note,
			SeverityScore: item.SeverityScore,
			ReviewerID:    &reviewer,
		}
		if err = tx.Create(entry).Error; err != nil {
			return err
		}

		if params.Approve {
			return nil
		}
		return applyStatDelta(tx, StatDelta{
			UserID:      item.UserID,
			Rejected:    1,
			Score:       item.SeverityScore,
			ViolationAt: &now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *reviewQueueRepoImpl) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.countGrouped(ctx, "status", nil)
}

func (r *reviewQueueRepoImpl) CountPendingByPriority(ctx context.Context) (map[string]int64, error) {
	return r.countGrouped(ctx, "priority", []string{model.QueueStatusPending, model.QueueStatusAssigned})
}

func (r *reviewQueueRepoImpl) countGrouped(ctx context.Context, column string, statuses []string) (map[string]int64, error) {
	var rows []struct {
		Key   string
		Total int64
	}
	db := r.db.WithContext(ctx).
		Model(&model.ReviewQueueItem{}).
		Select(column + " AS `key`, COUNT(*) AS total")
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	if err := db.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Total
	}
	return out, nil
}
