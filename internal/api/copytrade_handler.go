package api

import (
	"net/http"

	"CopyTradeSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CopyTradeHandler 跟单关系接口
type CopyTradeHandler struct {
	copyTrades *service.CopyTradeService
	logger     *logrus.Logger
}

// NewCopyTradeHandler 创建 CopyTradeHandler
func NewCopyTradeHandler(copyTrades *service.CopyTradeService, logger *logrus.Logger) *CopyTradeHandler {
	return &CopyTradeHandler{copyTrades: copyTrades, logger: logger}
}

type createCopyTradeRequest struct {
	FollowerAddress string   `json:"followerAddress" binding:"required"`
	TraderAddress   string   `json:"traderAddress" binding:"required"`
	Amount          float64  `json:"amount" binding:"required"`
	Categories      []string `json:"categories"`
	MaxTrades       *int     `json:"maxTrades"`
}

// Create 建立跟单关系
// POST /api/copy-trades
func (h *CopyTradeHandler) Create(c *gin.Context) {
	var req createCopyTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "followerAddress、traderAddress、amount 均为必填"})
		return
	}

	info, err := h.copyTrades.Create(c.Request.Context(), &service.CreateCopyTradeParams{
		FollowerAddress: req.FollowerAddress,
		TraderAddress:   req.TraderAddress,
		Amount:          req.Amount,
		Categories:      req.Categories,
		MaxTrades:       req.MaxTrades,
	})
	if err != nil {
		respondError(c, h.logger, err, "CreateCopyTrade failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"copyTrade": info})
}

// ListByUser 按钱包查跟单关系
// GET /api/copy-trades/user/:address?type=following|followers
func (h *CopyTradeHandler) ListByUser(c *gin.Context) {
	direction := c.DefaultQuery("type", "following")
	if direction != "following" && direction != "followers" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type 只能是 following 或 followers"})
		return
	}

	infos, err := h.copyTrades.ListByWallet(c.Request.Context(), c.Param("address"), direction)
	if err != nil {
		respondError(c, h.logger, err, "ListCopyTrades failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"copyTrades": infos, "type": direction})
}

type updateCopyTradeRequest struct {
	WalletAddress string   `json:"walletAddress" binding:"required"`
	Amount        *float64 `json:"amount"`
	Categories    []string `json:"categories"`
	MaxTrades     *int     `json:"maxTrades"`
	Active        *bool    `json:"active"`
}

// Update 更新跟单关系，所有权受限
// PUT /api/copy-trades/:id
func (h *CopyTradeHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateCopyTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress 不能为空"})
		return
	}

	info, err := h.copyTrades.Update(c.Request.Context(), id, req.WalletAddress, &service.UpdateCopyTradeParams{
		Amount:     req.Amount,
		Categories: req.Categories,
		MaxTrades:  req.MaxTrades,
		Active:     req.Active,
	})
	if err != nil {
		respondError(c, h.logger, err, "UpdateCopyTrade failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"copyTrade": info})
}

// Deactivate 停用跟单关系（软删除），所有权受限
// DELETE /api/copy-trades/:id?walletAddress=0x…
func (h *CopyTradeHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	wallet := c.Query("walletAddress")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress 不能为空"})
		return
	}

	if err := h.copyTrades.Deactivate(c.Request.Context(), id, wallet); err != nil {
		respondError(c, h.logger, err, "DeactivateCopyTrade failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

// Executions 跟单执行流水
// GET /api/copy-trades/:id/executions?walletAddress=0x…
func (h *CopyTradeHandler) Executions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	wallet := c.Query("walletAddress")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress 不能为空"})
		return
	}
	limit := parseLimitQuery(c, 50)

	infos, err := h.copyTrades.Executions(c.Request.Context(), id, wallet, limit)
	if err != nil {
		respondError(c, h.logger, err, "ListCopyTradeExecutions failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"executions": infos})
}
