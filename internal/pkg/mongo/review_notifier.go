package mongo

import (
	"Touchstone/internal/model"
	"context"
	"time"
)

// ReviewNotifier 人工审核结果写入提交者的系统通知
type ReviewNotifier struct {
	repo SysBoxRepo
}

func NewReviewNotifier(repo SysBoxRepo) *ReviewNotifier {
	return &ReviewNotifier{repo: repo}
}

func (n *ReviewNotifier) NotifyReviewResult(ctx context.Context, item *model.ReviewQueueItem) error {
	msg := &SysBoxModel{
		ReceiverID: item.UserID,
		TargetID:   item.ContentID,
		IsRead:     false,
		CreatedAt:  time.Now(),
		Payload: map[string]any{
			"content_type": item.ContentType,
			"queue_id":     item.ID,
		},
	}
	if item.Status == model.QueueStatusApproved {
		msg.Type = SysBoxTypeReviewApproved
		msg.Content = "你的内容已通过审核"
	} else {
		msg.Type = SysBoxTypeReviewRejected
		msg.Content = "你的内容未通过审核"
		if item.ReviewNote != "" {
			msg.Content += "：" + item.ReviewNote
		}
	}
	return n.repo.CreateNotification(ctx, msg)
}
