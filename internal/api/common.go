package api

import (
	"errors"
	"net/http"
	"strconv"

	"CopyTradeSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError 服务层错误到 HTTP 状态码的统一映射。
// 500 只返回通用文案，细节进日志不外泄
func respondError(c *gin.Context, logger *logrus.Logger, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger.WithError(err).Error(op)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parseIDParam 解析路径上的数字ID，非法时写出400并返回 false
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " 必须是数字"})
		return 0, false
	}
	return id, true
}

// parseLimitQuery 解析 limit 查询参数，非法或缺省时用默认值
func parseLimitQuery(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
