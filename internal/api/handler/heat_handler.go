package handler

import (
	"Touchstone/internal/pkg/response"
	"Touchstone/internal/service"

	"github.com/gin-gonic/gin"
)

type HeatHandler struct {
	heatSvc service.HeatService
}

func NewHeatHandler(heatSvc service.HeatService) *HeatHandler {
	return &HeatHandler{heatSvc: heatSvc}
}

// Refresh 重新计算单篇帖子的热度
func (s *HeatHandler) Refresh(c *gin.Context) {
	postID, err := pathID(c, "post_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.heatSvc.RefreshPostHeat(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
