package service

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/consts"
	"Touchstone/internal/pkg/es"
	"Touchstone/internal/pkg/metrics"
	"Touchstone/internal/pkg/util"
	"Touchstone/internal/repository"
	"context"
	"errors"
	log "log/slog"
)

// ReviewNotifier 人工审核结果通知提交者
type ReviewNotifier interface {
	NotifyReviewResult(ctx context.Context, item *model.ReviewQueueItem) error
}

type ReviewService interface {
	ListQueue(ctx context.Context, req *dto.QueueListReq) (*dto.PageDTO, error)
	Approve(ctx context.Context, id, reviewerID uint64, note string) (*dto.QueueItemDTO, error)
	Reject(ctx context.Context, id, reviewerID uint64, note string) (*dto.QueueItemDTO, error)
	BatchReview(ctx context.Context, req *dto.BatchReviewReq, reviewerID uint64) (*dto.BatchReviewDTO, error)
	Assign(ctx context.Context, req *dto.AssignReq) (*dto.AssignDTO, error)
}

type reviewServiceImpl struct {
	queueRepo repository.ReviewQueueRepo
	postIndex es.PostRepo
	notifier  ReviewNotifier
}

// NewReviewService postIndex 与 notifier 未启用时传 nil
func NewReviewService(queueRepo repository.ReviewQueueRepo, postIndex es.PostRepo, notifier ReviewNotifier) ReviewService {
	return &reviewServiceImpl{
		queueRepo: queueRepo,
		postIndex: postIndex,
		notifier:  notifier,
	}
}

func (s *reviewServiceImpl) ListQueue(ctx context.Context, req *dto.QueueListReq) (*dto.PageDTO, error) {
	limit, offset := util.Page(req.Page, req.PageSize, consts.DefaultPageSize, consts.MaxPageSize)
	filter := repository.QueueFilter{
		Status:      req.Status,
		Priority:    req.Priority,
		ContentType: req.ContentType,
	}
	items, total, err := s.queueRepo.ListItems(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	list := make([]*dto.QueueItemDTO, 0, len(items))
	for _, item := range items {
		list = append(list, toQueueItemDTO(item))
	}
	return &dto.PageDTO{Total: total, List: list}, nil
}

func (s *reviewServiceImpl) Approve(ctx context.Context, id, reviewerID uint64, note string) (*dto.QueueItemDTO, error) {
	return s.resolve(ctx, id, reviewerID, true, note)
}

func (s *reviewServiceImpl) Reject(ctx context.Context, id, reviewerID uint64, note string) (*dto.QueueItemDTO, error) {
	return s.resolve(ctx, id, reviewerID, false, note)
}

// BatchReview 逐条处理，单条失败不影响其余条目
func (s *reviewServiceImpl) BatchReview(ctx context.Context, req *dto.BatchReviewReq, reviewerID uint64) (*dto.BatchReviewDTO, error) {
	approve := req.Action == "approve"
	res := &dto.BatchReviewDTO{Results: make([]*dto.BatchReviewItemDTO, 0, len(req.IDs))}
	seen := make(map[uint64]struct{}, len(req.IDs))
	for _, id := range req.IDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		item := &dto.BatchReviewItemDTO{ID: id, Success: true}
		if _, err := s.resolve(ctx, id, reviewerID, approve, req.Note); err != nil {
			item.Success = false
			item.Error = err.Error()
			res.Failed++
		} else {
			res.Succeeded++
		}
		res.Results = append(res.Results, item)
	}
	return res, nil
}

func (s *reviewServiceImpl) Assign(ctx context.Context, req *dto.AssignReq) (*dto.AssignDTO, error) {
	n, err := s.queueRepo.Assign(ctx, req.IDs, req.ReviewerID)
	if err != nil {
		return nil, err
	}
	return &dto.AssignDTO{Assigned: n}, nil
}

func (s *reviewServiceImpl) resolve(ctx context.Context, id, reviewerID uint64, approve bool, note string) (*dto.QueueItemDTO, error) {
	item, err := s.queueRepo.Resolve(ctx, repository.ResolveParams{
		ItemID:     id,
		ReviewerID: reviewerID,
		Approve:    approve,
		Note:       note,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrQueueItemMissing):
			return nil, ErrReviewItemNotFound
		case errors.Is(err, repository.ErrQueueItemResolved):
			return nil, ErrReviewItemResolved
		}
		return nil, err
	}

	decision := "rejected"
	status := model.ContentStatusRejected
	if approve {
		decision = "approved"
		status = model.ContentStatusPublished
	}
	metrics.ReviewDecisionsTotal.WithLabelValues(decision).Inc()
	log.InfoContext(ctx, "review item resolved", "id", id, "reviewer", reviewerID, "decision", decision)

	if s.postIndex != nil && item.ContentType == model.ContentTypePost {
		if err = s.postIndex.UpdateStatus(ctx, item.ContentID, status); err != nil {
			log.WarnContext(ctx, "sync post status to es failed", "post_id", item.ContentID, "err", err)
		}
	}
	if s.notifier != nil {
		if err = s.notifier.NotifyReviewResult(ctx, item); err != nil {
			log.WarnContext(ctx, "notify review result failed", "id", id, "err", err)
		}
	}
	return toQueueItemDTO(item), nil
}

func toQueueItemDTO(item *model.ReviewQueueItem) *dto.QueueItemDTO {
	return &dto.QueueItemDTO{
		ID:            item.ID,
		ContentType:   item.ContentType,
		ContentID:     item.ContentID,
		UserID:        item.UserID,
		Priority:      item.Priority,
		Status:        item.Status,
		SeverityScore: item.SeverityScore,
		Reason:        item.Reason,
		AssignedTo:    item.AssignedTo,
		ReviewedBy:    item.ReviewedBy,
		ReviewNote:    item.ReviewNote,
		ReviewedAt:    util.FormatTimePtr(item.ReviewedAt),
		CreatedAt:     util.FormatTime(item.CreatedAt),
	}
}
