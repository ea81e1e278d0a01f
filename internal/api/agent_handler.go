package api

import (
	"net/http"

	"CopyTradeSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AgentHandler x402 委托代理接口
type AgentHandler struct {
	agents *service.AgentService
	logger *logrus.Logger
}

// NewAgentHandler 创建 AgentHandler
func NewAgentHandler(agents *service.AgentService, logger *logrus.Logger) *AgentHandler {
	return &AgentHandler{agents: agents, logger: logger}
}

type createAgentRequest struct {
	WalletAddress string  `json:"walletAddress" binding:"required"`
	TraderAddress string  `json:"traderAddress"`
	PerTradeLimit float64 `json:"perTradeLimit"`
	TotalLimit    float64 `json:"totalLimit"`
}

// Create 开通代理，外部开通失败降级为 demo 占位
// POST /api/x402/agent/create
func (h *AgentHandler) Create(c *gin.Context) {
	var req createAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress 不能为空"})
		return
	}

	info, err := h.agents.Create(c.Request.Context(), &service.CreateAgentParams{
		WalletAddress: req.WalletAddress,
		TraderAddress: req.TraderAddress,
		PerTradeLimit: req.PerTradeLimit,
		TotalLimit:    req.TotalLimit,
	})
	if err != nil {
		respondError(c, h.logger, err, "CreateAgent failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"agent": info})
}

// ListByWallet 按钱包查代理
// GET /api/x402/agents/:walletAddress
func (h *AgentHandler) ListByWallet(c *gin.Context) {
	infos, err := h.agents.ListByWallet(c.Request.Context(), c.Param("walletAddress"))
	if err != nil {
		respondError(c, h.logger, err, "ListAgents failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": infos})
}

type authorizeAgentRequest struct {
	WalletAddress string  `json:"walletAddress" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
}

// Authorize 追加授权额度
// POST /api/x402/agent/:id/authorize
func (h *AgentHandler) Authorize(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req authorizeAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress、amount 均为必填"})
		return
	}

	result, err := h.agents.Authorize(c.Request.Context(), id, req.WalletAddress, req.Amount)
	if err != nil {
		respondError(c, h.logger, err, "AuthorizeAgent failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

type toggleAgentRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// Toggle 翻转代理启停
// POST /api/x402/agent/:id/toggle
func (h *AgentHandler) Toggle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req toggleAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "walletAddress 不能为空"})
		return
	}

	result, err := h.agents.Toggle(c.Request.Context(), id, req.WalletAddress)
	if err != nil {
		respondError(c, h.logger, err, "ToggleAgent failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Executions 代理执行流水
// GET /api/x402/agent/:id/executions?walletAddress=0x…
func (h *AgentHandler) Executions(c *gin.Context) {
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

	infos, err := h.agents.Executions(c.Request.Context(), id, wallet, limit)
	if err != nil {
		respondError(c, h.logger, err, "ListAgentExecutions failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"executions": infos})
}

type executionWebhookRequest struct {
	AgentID     uint64  `json:"agentId" binding:"required"`
	CopyTradeID *uint64 `json:"copyTradeId"`
	MarketID    uint64  `json:"marketId" binding:"required"`
	Prediction  *bool   `json:"prediction" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	TxHash      string  `json:"txHash" binding:"required"`
	Status      string  `json:"status"`
}

// ExecutionWebhook x402 执行结果回调，落库并累加消费额
// POST /api/x402/webhook/execution
func (h *AgentHandler) ExecutionWebhook(c *gin.Context) {
	var req executionWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agentId、marketId、prediction、amount、txHash 均为必填"})
		return
	}

	info, err := h.agents.RecordExecution(c.Request.Context(), &service.ExecutionReport{
		AgentID:     req.AgentID,
		CopyTradeID: req.CopyTradeID,
		MarketID:    req.MarketID,
		Prediction:  *req.Prediction,
		Amount:      req.Amount,
		TxHash:      req.TxHash,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, h.logger, err, "RecordExecution failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"execution": info})
}
