package api

import (
	"net/http"
	"time"

	"CopyTradeSync/internal/metrics"
	"CopyTradeSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MarketHandler 预测市场接口
type MarketHandler struct {
	markets *service.MarketService
	logger  *logrus.Logger
}

// NewMarketHandler 创建 MarketHandler
func NewMarketHandler(markets *service.MarketService, logger *logrus.Logger) *MarketHandler {
	return &MarketHandler{markets: markets, logger: logger}
}

// ActiveMarkets 进行中市场列表
// GET /api/markets/active?category=crypto&limit=20
func (h *MarketHandler) ActiveMarkets(c *gin.Context) {
	category := c.Query("category")
	limit := parseLimitQuery(c, 20)

	result := h.markets.ActiveMarkets(c.Request.Context(), category, limit)
	metrics.ObserveFallback("active_markets", result.Source)

	c.JSON(http.StatusOK, gin.H{
		"markets":   result.Markets,
		"source":    result.Source,
		"timestamp": time.Now().UnixMilli(),
	})
}

// GetMarket 市场详情与最近成交
// GET /api/markets/:id
func (h *MarketHandler) GetMarket(c *gin.Context) {
	marketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.markets.MarketByID(c.Request.Context(), marketID)
	if err != nil {
		respondError(c, h.logger, err, "GetMarket failed")
		return
	}
	metrics.ObserveFallback("market_detail", result.Source)

	c.JSON(http.StatusOK, gin.H{
		"market":       result.Market,
		"recentTrades": result.RecentTrades,
		"source":       result.Source,
		"timestamp":    time.Now().UnixMilli(),
	})
}

type createMarketRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Question      string `json:"question" binding:"required"`
	Category      string `json:"category" binding:"required"`
	Duration      int    `json:"duration" binding:"required"` // 距截止的小时数
}

// CreateMarket 创建市场，链上交易为准
// POST /api/markets/create
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	var req createMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress、question、category、duration 均为必填"})
		return
	}

	result, err := h.markets.CreateMarket(c.Request.Context(), &service.CreateMarketParams{
		WalletAddress: req.WalletAddress,
		Question:      req.Question,
		Category:      req.Category,
		DurationHours: req.Duration,
	})
	if err != nil {
		respondError(c, h.logger, err, "CreateMarket failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

type placeBetRequest struct {
	WalletAddress string  `json:"walletAddress" binding:"required"`
	Prediction    *bool   `json:"prediction" binding:"required"` // 必须是布尔，其他类型直接400
	Amount        float64 `json:"amount" binding:"required"`
}

// PlaceBet 下注，链上交易为准
// POST /api/markets/:id/bet
func (h *MarketHandler) PlaceBet(c *gin.Context) {
	marketID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req placeBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress、prediction、amount 均为必填，prediction 必须是布尔"})
		return
	}

	result, err := h.markets.PlaceBet(c.Request.Context(), marketID, &service.PlaceBetParams{
		WalletAddress: req.WalletAddress,
		Prediction:    *req.Prediction,
		Amount:        req.Amount,
	})
	if err != nil {
		respondError(c, h.logger, err, "PlaceBet failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Categories 静态分类列表
// GET /api/markets/categories/list
func (h *MarketHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.markets.Categories()})
}
