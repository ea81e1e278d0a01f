package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthHandler 存活探针
type HealthHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(db *gorm.DB, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health 探活。数据库不可达也返回200，database 字段标记 down
// GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	database := "up"
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		h.logger.WithError(err).Warn("数据库探活失败")
		database = "down"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  database,
		"timestamp": time.Now().UnixMilli(),
	})
}
