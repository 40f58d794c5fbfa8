package kafka

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/model"
	"Touchstone/internal/pkg/es"
	"Touchstone/internal/repository"
	"Touchstone/internal/service"
	"context"
	log "log/slog"

	"github.com/pkg/errors"
)

// ContentHandler 帖子与评论新增或正文变更时做审核并回写状态
type ContentHandler struct {
	modSvc    service.ModerationService
	postRepo  repository.PostRepo
	postIndex es.PostRepo
}

func NewContentHandler(modSvc service.ModerationService, postRepo repository.PostRepo, postIndex es.PostRepo) *ContentHandler {
	return &ContentHandler{
		modSvc:    modSvc,
		postRepo:  postRepo,
		postIndex: postIndex,
	}
}

func (s *ContentHandler) Tables() []string {
	return []string{"posts", "post_comments"}
}

func (s *ContentHandler) Handle(ctx context.Context, msg *CanalMessage) error {
	if msg.Type != INSERT && msg.Type != UPDATE {
		return nil
	}
	contentType := model.ContentTypePost
	if msg.Table == "post_comments" {
		contentType = model.ContentTypeComment
	}

	for i, row := range msg.Data {
		if StrToBool(row["is_deleted"]) {
			continue
		}
		// 状态回写本身也会产生 UPDATE，只有正文变化才重新审核
		if msg.Type == UPDATE && !msg.Changed(i, "title", "content") {
			continue
		}
		if err := s.check(ctx, contentType, row); err != nil {
			return err
		}
	}
	return nil
}

func (s *ContentHandler) check(ctx context.Context, contentType string, row map[string]interface{}) error {
	id := StrToUint64(row["id"])
	req := &dto.ModerationCheckReq{
		ContentType: contentType,
		ContentID:   &id,
		UserID:      StrToUint64(row["user_id"]),
		Title:       StrToString(row["title"]),
		Content:     StrToString(row["content"]),
	}
	res, err := s.modSvc.CheckContent(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "moderate %s %d", contentType, id)
	}

	status := service.ContentStatusFor(res.Status)
	if err = s.postRepo.UpdateContentStatus(ctx, contentType, id, status); err != nil {
		return errors.Wrapf(err, "update %s %d status", contentType, id)
	}
	if contentType == model.ContentTypePost && s.postIndex != nil {
		if err = s.postIndex.UpdateStatus(ctx, id, status); err != nil {
			log.WarnContext(ctx, "sync post status to es error", "post_id", id, "err", err)
		}
	}

	log.InfoContext(ctx, "content moderated by binlog",
		"content_type", contentType,
		"content_id", id,
		"status", res.Status,
		"severity", res.SeverityScore)
	return nil
}
