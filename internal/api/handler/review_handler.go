package handler

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/pkg/response"
	"Touchstone/internal/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewSvc service.ReviewService
}

func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

func (s *ReviewHandler) ListQueue(c *gin.Context) {
	var req dto.QueueListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.reviewSvc.ListQueue(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ReviewHandler) Approve(c *gin.Context) {
	s.resolve(c, true)
}

func (s *ReviewHandler) Reject(c *gin.Context) {
	s.resolve(c, false)
}

func (s *ReviewHandler) resolve(c *gin.Context, approve bool) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReviewActionReq
	// 备注可选，允许空 body
	if c.Request.ContentLength > 0 {
		if err = c.ShouldBindJSON(&req); err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
	}

	reviewerID := c.GetUint64("user_id")
	var res *dto.QueueItemDTO
	if approve {
		res, err = s.reviewSvc.Approve(c.Request.Context(), id, reviewerID, req.Note)
	} else {
		res, err = s.reviewSvc.Reject(c.Request.Context(), id, reviewerID, req.Note)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ReviewHandler) Batch(c *gin.Context) {
	var req dto.BatchReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.reviewSvc.BatchReview(c.Request.Context(), &req, c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *ReviewHandler) Assign(c *gin.Context) {
	var req dto.AssignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.reviewSvc.Assign(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
