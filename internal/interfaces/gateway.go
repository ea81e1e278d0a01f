package interfaces

import (
	"context"

	"CopyTradeSync/internal/model"
)

// CreateMarketRequest 链上创建市场参数
type CreateMarketRequest struct {
	MarketID uint64 // 后端生成的市场ID，作为链上 bytes32 键
	Question string // 预测问题（链上仅存哈希）
	EndTime  int64  // 截止时间戳（秒）
	Creator  string // 创建者钱包地址
}

// PlaceBetRequest 链上下注参数
type PlaceBetRequest struct {
	MarketID   uint64
	Bettor     string  // 下注人钱包地址
	Prediction bool    // true=YES false=NO
	Amount     float64 // 下注金额（USDC）
}

// LedgerGateway 链上网关：读走索引服务，写走合约交易
// 任何读方法的失败都由调用方捕获并降级，不向上传播
type LedgerGateway interface {
	// TopTraders 按分类拉取收益榜。成功但为空时由调用方降级
	TopTraders(ctx context.Context, category string, limit int) ([]model.IndexerTrader, error)
	// TraderByAddress 按钱包地址查交易员，未收录返回 (nil, nil)
	TraderByAddress(ctx context.Context, address string) (*model.IndexerTrader, error)
	// ActiveMarkets 拉取进行中的市场列表
	ActiveMarkets(ctx context.Context, category string, limit int) ([]model.IndexerMarket, error)
	// MarketByID 按市场ID查详情，未收录返回 (nil, nil)
	MarketByID(ctx context.Context, marketID uint64) (*model.IndexerMarket, error)
	// RecentTrades 市场最近成交
	RecentTrades(ctx context.Context, marketID uint64, limit int) ([]model.IndexerTrade, error)

	// CreateMarket 发起链上创建市场交易，返回交易哈希；失败即失败（链上为准，调用方返回500）
	CreateMarket(ctx context.Context, req *CreateMarketRequest) (txHash string, err error)
	// PlaceBet 发起链上下注交易，返回交易哈希
	PlaceBet(ctx context.Context, req *PlaceBetRequest) (txHash string, err error)
}

// ProvisionAgentRequest x402 代理开通参数
type ProvisionAgentRequest struct {
	OwnerWallet   string  // 所属用户钱包
	TraderAddress string  // 被跟单钱包
	PerTradeLimit float64 // 单笔限额
	TotalLimit    float64 // 总限额
}

// ProvisionedAgent 外部服务开通成功后返回的代理信息
type ProvisionedAgent struct {
	AgentAddress string // 代理链上地址
}

// AgentProvisioner x402 代理开通服务。失败由调用方降级为 demo 占位记录，不返回500
type AgentProvisioner interface {
	ProvisionAgent(ctx context.Context, req *ProvisionAgentRequest) (*ProvisionedAgent, error)
	// AuthorizeAgent 为代理追加授权额度，返回外部授权凭据ID
	AuthorizeAgent(ctx context.Context, agentAddress string, amount float64) (string, error)
	// ToggleAgent 启用/停用代理
	ToggleAgent(ctx context.Context, agentAddress string, active bool) error
}
