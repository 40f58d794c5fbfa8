package kafka

import (
	"Touchstone/internal/service"
	"context"
	log "log/slog"
)

// InteractionHandler 投票、收藏、评论的增删都会改变帖子热度，只标记脏数据，由定时任务统一重算
type InteractionHandler struct {
	heatSvc service.HeatService
}

func NewInteractionHandler(heatSvc service.HeatService) *InteractionHandler {
	return &InteractionHandler{heatSvc: heatSvc}
}

func (s *InteractionHandler) Tables() []string {
	return []string{"post_votes", "collections", "post_comments"}
}

func (s *InteractionHandler) Handle(ctx context.Context, msg *CanalMessage) error {
	switch msg.Type {
	case INSERT, DELETE:
	case UPDATE:
		// 改票或软删除评论
		if !msg.Changed(0, "vote_type", "is_deleted") {
			return nil
		}
	default:
		return nil
	}

	postIDs := make([]uint64, 0, len(msg.Data))
	for _, row := range msg.Data {
		if id := StrToUint64(row["post_id"]); id > 0 {
			postIDs = append(postIDs, id)
		}
	}
	if len(postIDs) == 0 {
		return nil
	}
	if err := s.heatSvc.MarkDirty(ctx, postIDs...); err != nil {
		return err
	}
	log.DebugContext(ctx, "post heat marked dirty", "table", msg.Table, "post_ids", postIDs)
	return nil
}
