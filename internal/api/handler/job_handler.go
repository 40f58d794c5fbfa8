package handler

import (
	"Touchstone/internal/api/dto"
	"Touchstone/internal/pkg/response"
	"Touchstone/internal/service"

	"github.com/gin-gonic/gin"
)

// JobController 定时任务的运维入口
type JobController interface {
	Status() []*dto.JobStatusDTO
	Trigger(name string, limit int) error
	Cancel(name string) error
}

type JobHandler struct {
	jobs JobController
}

func NewJobHandler(jobs JobController) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (s *JobHandler) List(c *gin.Context) {
	response.Success(c, s.jobs.Status())
}

// Run 异步执行，立即返回
func (s *JobHandler) Run(c *gin.Context) {
	var req dto.JobRunReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, service.ErrParamInvalid)
			return
		}
	}

	name := c.Param("name")
	if err := s.jobs.Trigger(name, req.Limit); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]string{"job": name, "state": "started"})
}

func (s *JobHandler) Cancel(c *gin.Context) {
	if err := s.jobs.Cancel(c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
