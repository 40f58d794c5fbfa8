package handler

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/pkg/response"
	"Touchstone/internal/service"

	"github.com/gin-gonic/gin"
)

type ModerationHandler struct {
	moderationSvc service.ModerationService
}

func NewModerationHandler(moderationSvc service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationSvc: moderationSvc}
}

// Check 内容发布前的同步审核
func (s *ModerationHandler) Check(c *gin.Context) {
	var req dto.ModerationCheckReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.moderationSvc.CheckContent(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ModerationHandler) Enqueue(c *gin.Context) {
	var req dto.EnqueueReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	priority, err := s.moderationSvc.EnqueueReview(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]string{"priority": priority})
}

func (s *ModerationHandler) Overview(c *gin.Context) {
	res, err := s.moderationSvc.GetOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ModerationHandler) UserStat(c *gin.Context) {
	userID, err := pathID(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.moderationSvc.GetUserStat(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
