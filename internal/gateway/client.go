package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"CopyTradeSync/internal/chain"
	"CopyTradeSync/internal/config"
	"CopyTradeSync/internal/interfaces"
	"CopyTradeSync/internal/model"
	"CopyTradeSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Ensure Client implements interfaces.LedgerGateway
var _ interfaces.LedgerGateway = (*Client)(nil)

// Client 链上网关客户端：读走索引服务 HTTP API，写走 CopyHub 合约
// writer 可为 nil（未配置链上写入），此时写方法报错，读不受影响
type Client struct {
	baseURL    string
	httpClient *http.Client
	writer     *chain.Writer
	logger     *logrus.Logger
}

// NewClient 创建网关客户端。链上写入配置不全时仅支持读（写方法返回错误）
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.Indexer.BaseURL, "/"),
		httpClient: httpclient.NewHTTPClient(cfg.Indexer.Timeout, cfg.Indexer.Proxy, logger),
		logger:     logger,
	}
	writer, err := chain.NewWriter(cfg.Chain.RpcURL, cfg.Chain.HubAddress, cfg.Chain.OperatorPrivateKey)
	if err != nil {
		logger.WithError(err).Warn("链上写入未配置，市场创建与下注将不可用")
	} else {
		c.writer = writer
	}
	return c
}

// getJSON 发起 GET 请求并解析 JSON。404 时返回 (false, nil) 表示索引服务未收录
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (bool, error) {
	if c.baseURL == "" {
		return false, fmt.Errorf("索引服务未配置 base_url")
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("请求索引服务失败: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("索引服务返回 %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("解析索引服务响应失败: %w", err)
	}
	return true, nil
}

// TopTraders 按分类拉取收益榜
func (c *Client) TopTraders(ctx context.Context, category string, limit int) ([]model.IndexerTrader, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var traders []model.IndexerTrader
	if _, err := c.getJSON(ctx, "/traders/top", q, &traders); err != nil {
		return nil, err
	}
	return traders, nil
}

// TraderByAddress 按钱包地址查交易员，未收录返回 (nil, nil)
func (c *Client) TraderByAddress(ctx context.Context, address string) (*model.IndexerTrader, error) {
	var trader model.IndexerTrader
	found, err := c.getJSON(ctx, "/traders/"+url.PathEscape(strings.ToLower(address)), nil, &trader)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &trader, nil
}

// ActiveMarkets 拉取进行中的市场列表
func (c *Client) ActiveMarkets(ctx context.Context, category string, limit int) ([]model.IndexerMarket, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var markets []model.IndexerMarket
	if _, err := c.getJSON(ctx, "/markets/active", q, &markets); err != nil {
		return nil, err
	}
	return markets, nil
}

// MarketByID 按市场ID查详情，未收录返回 (nil, nil)
func (c *Client) MarketByID(ctx context.Context, marketID uint64) (*model.IndexerMarket, error) {
	var market model.IndexerMarket
	found, err := c.getJSON(ctx, "/markets/"+strconv.FormatUint(marketID, 10), nil, &market)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &market, nil
}

// RecentTrades 市场最近成交
func (c *Client) RecentTrades(ctx context.Context, marketID uint64, limit int) ([]model.IndexerTrade, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var trades []model.IndexerTrade
	if _, err := c.getJSON(ctx, "/markets/"+strconv.FormatUint(marketID, 10)+"/trades", q, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// CreateMarket 发起链上创建市场交易
func (c *Client) CreateMarket(ctx context.Context, req *interfaces.CreateMarketRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("CreateMarketRequest is nil")
	}
	if c.writer == nil {
		return "", fmt.Errorf("链上写入未配置")
	}
	return c.writer.CreateMarket(ctx, req.MarketID, req.Question, req.EndTime)
}

// PlaceBet 发起链上下注交易
func (c *Client) PlaceBet(ctx context.Context, req *interfaces.PlaceBetRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("PlaceBetRequest is nil")
	}
	if c.writer == nil {
		return "", fmt.Errorf("链上写入未配置")
	}
	return c.writer.PlaceBet(ctx, req.MarketID, req.Bettor, req.Prediction, req.Amount)
}
