package handler

import (
	"Touchstone/internal/pkg/util"
	"Touchstone/internal/service"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径中的 uint64 参数，0 视为非法
func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := util.ParseUint64(c.Param(name))
	if err != nil || id == 0 {
		return 0, service.ErrParamInvalid
	}
	return id, nil
}
