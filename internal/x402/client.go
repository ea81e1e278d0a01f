package x402

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"CopyTradeSync/internal/interfaces"
	"CopyTradeSync/internal/utils/httpclient"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultSandboxURL x402 facilitator 测试环境
const DefaultSandboxURL = "https://facilitator-sandbox.x402.org"

// Ensure Client implements interfaces.AgentProvisioner
var _ interfaces.AgentProvisioner = (*Client)(nil)

// Client x402 facilitator 客户端，用于开通与管理委托消费代理
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// Config x402 客户端配置
type Config struct {
	BaseURL string
	APIKey  string
	Timeout int // 秒
	Proxy   string
}

// NewClient 创建 x402 客户端
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultSandboxURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpclient.NewHTTPClient(cfg.Timeout, cfg.Proxy, logger),
		logger:     logger,
	}
}

// apiResponse facilitator 通用响应包装
type apiResponse struct {
	Data struct {
		AgentAddress    string `json:"agentAddress"`
		AuthorizationID string `json:"authorizationId"`
		Active          bool   `json:"active"`
	} `json:"data"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// post 发起带 Bearer 认证的 POST，解析通用响应
func (c *Client) post(ctx context.Context, path string, payload interface{}) (*apiResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("x402 API key 未配置")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("x402 请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		c.logger.WithError(err).WithField("body", string(respBody)).Warn("x402 响应解析失败")
		return nil, fmt.Errorf("x402 响应解析失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg := result.Message
		if msg == "" {
			msg = string(respBody)
		}
		return nil, fmt.Errorf("x402 错误 %d: %s", resp.StatusCode, msg)
	}
	return &result, nil
}

// ProvisionAgent 开通委托代理，返回链上代理地址
func (c *Client) ProvisionAgent(ctx context.Context, req *interfaces.ProvisionAgentRequest) (*interfaces.ProvisionedAgent, error) {
	if req == nil {
		return nil, fmt.Errorf("ProvisionAgentRequest is nil")
	}
	payload := map[string]interface{}{
		"owner":          req.OwnerWallet,
		"trader":         req.TraderAddress,
		"perTradeLimit":  req.PerTradeLimit,
		"totalLimit":     req.TotalLimit,
		"idempotencyKey": uuid.NewString(),
	}
	result, err := c.post(ctx, "/v1/agents", payload)
	if err != nil {
		return nil, err
	}
	if result.Data.AgentAddress == "" {
		return nil, fmt.Errorf("x402 返回空 agentAddress")
	}
	return &interfaces.ProvisionedAgent{AgentAddress: result.Data.AgentAddress}, nil
}

// AuthorizeAgent 为代理追加授权额度
func (c *Client) AuthorizeAgent(ctx context.Context, agentAddress string, amount float64) (string, error) {
	payload := map[string]interface{}{
		"agent":          agentAddress,
		"amount":         amount,
		"idempotencyKey": uuid.NewString(),
	}
	result, err := c.post(ctx, "/v1/agents/authorize", payload)
	if err != nil {
		return "", err
	}
	return result.Data.AuthorizationID, nil
}

// ToggleAgent 启用/停用代理
func (c *Client) ToggleAgent(ctx context.Context, agentAddress string, active bool) error {
	payload := map[string]interface{}{
		"agent":  agentAddress,
		"active": active,
	}
	_, err := c.post(ctx, "/v1/agents/toggle", payload)
	return err
}
