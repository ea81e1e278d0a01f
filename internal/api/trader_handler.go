package api

import (
	"net/http"
	"time"

	"CopyTradeSync/internal/metrics"
	"CopyTradeSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TraderHandler 交易员接口
type TraderHandler struct {
	traders *service.TraderService
	logger  *logrus.Logger
}

// NewTraderHandler 创建 TraderHandler
func NewTraderHandler(traders *service.TraderService, logger *logrus.Logger) *TraderHandler {
	return &TraderHandler{traders: traders, logger: logger}
}

// Leaderboard 收益榜
// GET /api/traders/leaderboard?category=sports&limit=10
func (h *TraderHandler) Leaderboard(c *gin.Context) {
	category := c.Query("category")
	limit := parseLimitQuery(c, 10)

	result := h.traders.Leaderboard(c.Request.Context(), category, limit)
	metrics.ObserveFallback("leaderboard", result.Source)

	c.JSON(http.StatusOK, gin.H{
		"traders":   result.Traders,
		"source":    result.Source,
		"timestamp": time.Now().UnixMilli(),
	})
}

// GetTrader 交易员详情
// GET /api/traders/:address
func (h *TraderHandler) GetTrader(c *gin.Context) {
	info, source, err := h.traders.TraderByAddress(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, h.logger, err, "GetTrader failed")
		return
	}
	metrics.ObserveFallback("trader_detail", source)

	c.JSON(http.StatusOK, gin.H{
		"trader":    info,
		"source":    source,
		"timestamp": time.Now().UnixMilli(),
	})
}

type registerTraderRequest struct {
	WalletAddress string   `json:"walletAddress" binding:"required"`
	IsPublic      *bool    `json:"isPublic"`
	Categories    []string `json:"categories"`
}

// Register 注册/更新交易员
// POST /api/traders/register
func (h *TraderHandler) Register(c *gin.Context) {
	var req registerTraderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress 不能为空"})
		return
	}

	info, err := h.traders.Register(c.Request.Context(), &service.RegisterRequest{
		WalletAddress: req.WalletAddress,
		IsPublic:      req.IsPublic,
		Categories:    req.Categories,
	})
	if err != nil {
		respondError(c, h.logger, err, "Register failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"registered": true, "trader": info})
}

// Stats 交易员统计，未注册返回零值
// GET /api/traders/stats/:address
func (h *TraderHandler) Stats(c *gin.Context) {
	info, err := h.traders.Stats(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, h.logger, err, "Stats failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": info, "timestamp": time.Now().UnixMilli()})
}
