package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CopyTradeSync/internal/interfaces"
	"CopyTradeSync/internal/model"
	"CopyTradeSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// MarketService 预测市场的读聚合与链上写入口
type MarketService struct {
	markets repository.MarketRepository
	users   repository.UserRepository
	gateway interfaces.LedgerGateway
	logger  *logrus.Logger
}

// NewMarketService 创建 MarketService
func NewMarketService(markets repository.MarketRepository, users repository.UserRepository, gateway interfaces.LedgerGateway, logger *logrus.Logger) *MarketService {
	return &MarketService{markets: markets, users: users, gateway: gateway, logger: logger}
}

// MarketInfo 对外市场信息
type MarketInfo struct {
	MarketID  uint64  `json:"marketId"`
	Question  string  `json:"question"`
	Category  string  `json:"category"`
	EndTime   int64   `json:"endTime"` // 毫秒
	YesAmount float64 `json:"yesAmount"`
	NoAmount  float64 `json:"noAmount"`
	Resolved  bool    `json:"resolved"`
	Creator   string  `json:"creator,omitempty"`
	TxHash    string  `json:"txHash,omitempty"`
}

// TradeInfo 对外单笔成交
type TradeInfo struct {
	Address    string  `json:"address"`
	MarketID   uint64  `json:"marketId"`
	Prediction bool    `json:"prediction"`
	Amount     float64 `json:"amount"`
	TxHash     string  `json:"txHash"`
	Timestamp  int64   `json:"timestamp"` // 毫秒
}

// MarketListResult 市场列表返回
type MarketListResult struct {
	Markets []MarketInfo `json:"markets"`
	Source  string       `json:"source"`
}

// MarketDetailResult 市场详情返回
type MarketDetailResult struct {
	Market       MarketInfo  `json:"market"`
	RecentTrades []TradeInfo `json:"recentTrades"`
	Source       string      `json:"source"`
}

// ActiveMarkets 进行中市场列表。索引出错或为空降级到本地库，再降级到静态演示数据
func (s *MarketService) ActiveMarkets(ctx context.Context, category string, limit int) *MarketListResult {
	markets, err := s.gateway.ActiveMarkets(ctx, category, limit)
	if err != nil {
		s.logger.WithError(err).Warn("索引服务市场列表不可用，降级到本地库")
	} else if len(markets) > 0 {
		infos := make([]MarketInfo, 0, len(markets))
		for _, m := range markets {
			infos = append(infos, marketFromIndexer(m))
		}
		return &MarketListResult{Markets: infos, Source: SourceIndexer}
	}

	rows, err := s.markets.ListActive(ctx, category, limit)
	if err != nil {
		s.logger.WithError(err).Warn("本地库市场列表查询失败，降级到静态数据")
	} else if len(rows) > 0 {
		infos := make([]MarketInfo, 0, len(rows))
		for _, m := range rows {
			infos = append(infos, marketFromModel(m))
		}
		return &MarketListResult{Markets: infos, Source: SourceDatabase}
	}

	return &MarketListResult{Markets: demoMarkets(), Source: SourceDemo}
}

// MarketByID 市场详情与最近成交。索引优先本地库兜底，都没有即 ErrNotFound
func (s *MarketService) MarketByID(ctx context.Context, marketID uint64) (*MarketDetailResult, error) {
	var (
		info   *MarketInfo
		source string
	)

	market, err := s.gateway.MarketByID(ctx, marketID)
	if err != nil {
		s.logger.WithError(err).WithField("market_id", marketID).Warn("索引服务市场查询不可用，降级到本地库")
	} else if market != nil {
		mi := marketFromIndexer(*market)
		info, source = &mi, SourceIndexer
	}

	if info == nil {
		row, err := s.markets.GetByMarketID(ctx, marketID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		mi := marketFromModel(row)
		info, source = &mi, SourceDatabase
	}

	trades := s.recentTrades(ctx, marketID)
	return &MarketDetailResult{Market: *info, RecentTrades: trades, Source: source}, nil
}

func (s *MarketService) recentTrades(ctx context.Context, marketID uint64) []TradeInfo {
	const tradeLimit = 20

	trades, err := s.gateway.RecentTrades(ctx, marketID, tradeLimit)
	if err != nil {
		s.logger.WithError(err).WithField("market_id", marketID).Warn("索引服务成交查询不可用，降级到本地库")
	} else if len(trades) > 0 {
		infos := make([]TradeInfo, 0, len(trades))
		for _, t := range trades {
			infos = append(infos, tradeFromIndexer(t))
		}
		return infos
	}

	rows, err := s.markets.ListRecentTrades(ctx, marketID, tradeLimit)
	if err != nil {
		s.logger.WithError(err).WithField("market_id", marketID).Warn("本地库成交查询失败")
		return []TradeInfo{}
	}
	infos := make([]TradeInfo, 0, len(rows))
	for _, t := range rows {
		infos = append(infos, tradeFromModel(t))
	}
	return infos
}

// CreateMarketParams 创建市场参数
type CreateMarketParams struct {
	WalletAddress string
	Question      string
	Category      string
	DurationHours int // 距截止的小时数
}

// CreateMarketResult 创建市场返回
type CreateMarketResult struct {
	MarketID uint64     `json:"marketId"`
	Market   MarketInfo `json:"market"`
}

// CreateMarket 创建市场：链上交易为准，交易失败直接报错；本地镜像写入失败只记日志
func (s *MarketService) CreateMarket(ctx context.Context, params *CreateMarketParams) (*CreateMarketResult, error) {
	if strings.TrimSpace(params.Question) == "" {
		return nil, fmt.Errorf("%w: question 不能为空", ErrInvalidArgument)
	}
	if strings.TrimSpace(params.Category) == "" {
		return nil, fmt.Errorf("%w: category 不能为空", ErrInvalidArgument)
	}
	if params.DurationHours <= 0 {
		return nil, fmt.Errorf("%w: duration 必须大于0", ErrInvalidArgument)
	}

	user, err := s.users.EnsureUser(ctx, params.WalletAddress)
	if err != nil {
		return nil, err
	}

	marketID := uint64(time.Now().UnixMilli())
	endTime := time.Now().Add(time.Duration(params.DurationHours) * time.Hour)

	txHash, err := s.gateway.CreateMarket(ctx, &interfaces.CreateMarketRequest{
		MarketID: marketID,
		Question: params.Question,
		EndTime:  endTime.Unix(),
		Creator:  user.WalletAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("链上创建市场失败: %w", err)
	}

	row := &model.Market{
		MarketID: marketID,
		Question: params.Question,
		Category: params.Category,
		EndTime:  endTime,
		Creator:  user.WalletAddress,
		TxHash:   txHash,
	}
	if err := s.markets.CreateMarket(ctx, row); err != nil {
		s.logger.WithError(err).WithField("market_id", marketID).Warn("市场本地镜像写入失败")
	}

	return &CreateMarketResult{MarketID: marketID, Market: marketFromModel(row)}, nil
}

// PlaceBetParams 下注参数
type PlaceBetParams struct {
	WalletAddress string
	Prediction    bool // true=YES false=NO
	Amount        float64
}

// PlaceBetResult 下注返回
type PlaceBetResult struct {
	TxHash string    `json:"txHash"`
	Trade  TradeInfo `json:"trade"`
}

// PlaceBet 下注：链上交易为准，交易失败直接报错；本地成交镜像与注额累加失败只记日志
func (s *MarketService) PlaceBet(ctx context.Context, marketID uint64, params *PlaceBetParams) (*PlaceBetResult, error) {
	if params.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount 必须大于0", ErrInvalidArgument)
	}

	user, err := s.users.EnsureUser(ctx, params.WalletAddress)
	if err != nil {
		return nil, err
	}

	market, err := s.markets.GetByMarketID(ctx, marketID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	if market == nil || err != nil {
		indexed, gerr := s.gateway.MarketByID(ctx, marketID)
		if gerr != nil {
			s.logger.WithError(gerr).WithField("market_id", marketID).Warn("索引服务市场查询不可用")
		}
		if indexed == nil {
			return nil, ErrNotFound
		}
		if indexed.Resolved {
			return nil, fmt.Errorf("%w: 市场已结算", ErrInvalidArgument)
		}
	} else if market.Resolved {
		return nil, fmt.Errorf("%w: 市场已结算", ErrInvalidArgument)
	}

	txHash, err := s.gateway.PlaceBet(ctx, &interfaces.PlaceBetRequest{
		MarketID:   marketID,
		Bettor:     user.WalletAddress,
		Prediction: params.Prediction,
		Amount:     params.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("链上下注失败: %w", err)
	}

	trade := &model.Trade{
		UserID:     user.ID,
		UserWallet: user.WalletAddress,
		MarketID:   marketID,
		Prediction: params.Prediction,
		Amount:     params.Amount,
		TxHash:     txHash,
		CreatedAt:  time.Now(),
	}
	if err := s.markets.CreateTrade(ctx, trade); err != nil {
		s.logger.WithError(err).WithField("tx_hash", txHash).Warn("成交本地镜像写入失败")
	}
	if err := s.markets.AddStake(ctx, marketID, params.Prediction, params.Amount); err != nil {
		s.logger.WithError(err).WithField("market_id", marketID).Warn("市场注额累加失败")
	}

	return &PlaceBetResult{TxHash: txHash, Trade: tradeFromModel(trade)}, nil
}

// Categories 静态分类列表
func (s *MarketService) Categories() []string {
	return marketCategories()
}

func marketFromIndexer(m model.IndexerMarket) MarketInfo {
	return MarketInfo{
		MarketID:  m.MarketID,
		Question:  m.Question,
		Category:  m.Category,
		EndTime:   m.EndTime,
		YesAmount: m.YesAmount,
		NoAmount:  m.NoAmount,
		Resolved:  m.Resolved,
	}
}

func marketFromModel(m *model.Market) MarketInfo {
	return MarketInfo{
		MarketID:  m.MarketID,
		Question:  m.Question,
		Category:  m.Category,
		EndTime:   m.EndTime.UnixMilli(),
		YesAmount: m.YesAmount,
		NoAmount:  m.NoAmount,
		Resolved:  m.Resolved,
		Creator:   m.Creator,
		TxHash:    m.TxHash,
	}
}

func tradeFromIndexer(t model.IndexerTrade) TradeInfo {
	return TradeInfo{
		Address:    strings.ToLower(t.Address),
		MarketID:   t.MarketID,
		Prediction: t.Prediction,
		Amount:     t.Amount,
		TxHash:     t.TxHash,
		Timestamp:  t.Timestamp,
	}
}

func tradeFromModel(t *model.Trade) TradeInfo {
	return TradeInfo{
		Address:    t.UserWallet,
		MarketID:   t.MarketID,
		Prediction: t.Prediction,
		Amount:     t.Amount,
		TxHash:     t.TxHash,
		Timestamp:  t.CreatedAt.UnixMilli(),
	}
}
