package handler

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/pkg/response"
	"Touchstone/internal/service"
	"context"

	"github.com/gin-gonic/gin"
)

type RecommendationHandler struct {
	recSvc service.RecommendationService
	simSvc service.SimilarityService
}

func NewRecommendationHandler(recSvc service.RecommendationService, simSvc service.SimilarityService) *RecommendationHandler {
	return &RecommendationHandler{recSvc: recSvc, simSvc: simSvc}
}

func (s *RecommendationHandler) List(c *gin.Context) {
	var req dto.PageReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.recSvc.List(c.Request.Context(), c.GetUint64("user_id"), req.Page, req.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *RecommendationHandler) Refresh(c *gin.Context) {
	res, err := s.recSvc.Refresh(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *RecommendationHandler) Dismiss(c *gin.Context) {
	s.flag(c, s.recSvc.Dismiss)
}

func (s *RecommendationHandler) Follow(c *gin.Context) {
	s.flag(c, s.recSvc.MarkFollowed)
}

func (s *RecommendationHandler) ClearFlags(c *gin.Context) {
	s.flag(c, s.recSvc.ClearFlags)
}

func (s *RecommendationHandler) flag(c *gin.Context, fn func(ctx context.Context, userID, candidateID uint64) error) {
	candidateID, err := pathID(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err = fn(c.Request.Context(), c.GetUint64("user_id"), candidateID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Similarity 当前用户与目标用户的相似度，?refresh=true 时强制重算
func (s *RecommendationHandler) Similarity(c *gin.Context) {
	otherID, err := pathID(c, "user_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := c.GetUint64("user_id")
	var res *dto.SimilarityDTO
	if c.Query("refresh") == "true" {
		res, err = s.simSvc.Calculate(c.Request.Context(), userID, otherID)
	} else {
		res, err = s.simSvc.GetSimilarity(c.Request.Context(), userID, otherID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
