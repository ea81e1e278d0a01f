package gateway

import (
	"context"
	"sync"

	"CopyTradeSync/internal/interfaces"
	"CopyTradeSync/internal/model"
)

// MockGateway 可编程的链上网关，测试用。Err 非空时所有方法返回该错误
type MockGateway struct {
	mu sync.Mutex

	Traders []model.IndexerTrader
	Markets []model.IndexerMarket
	Trades  []model.IndexerTrade
	TxHash  string
	Err     error

	// Calls 方法调用计数
	Calls map[string]int
	// LastCreateMarket / LastPlaceBet 记录最近一次写请求，断言用
	LastCreateMarket *interfaces.CreateMarketRequest
	LastPlaceBet     *interfaces.PlaceBetRequest
}

var _ interfaces.LedgerGateway = (*MockGateway)(nil)

// NewMockGateway 创建测试网关
func NewMockGateway() *MockGateway {
	return &MockGateway{TxHash: "0xmocktx", Calls: make(map[string]int)}
}

func (g *MockGateway) track(name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls[name]++
	return g.Err
}

func (g *MockGateway) TopTraders(ctx context.Context, category string, limit int) ([]model.IndexerTrader, error) {
	if err := g.track("TopTraders"); err != nil {
		return nil, err
	}
	return g.Traders, nil
}

func (g *MockGateway) TraderByAddress(ctx context.Context, address string) (*model.IndexerTrader, error) {
	if err := g.track("TraderByAddress"); err != nil {
		return nil, err
	}
	for i := range g.Traders {
		if g.Traders[i].Address == address {
			return &g.Traders[i], nil
		}
	}
	return nil, nil
}

func (g *MockGateway) ActiveMarkets(ctx context.Context, category string, limit int) ([]model.IndexerMarket, error) {
	if err := g.track("ActiveMarkets"); err != nil {
		return nil, err
	}
	return g.Markets, nil
}

func (g *MockGateway) MarketByID(ctx context.Context, marketID uint64) (*model.IndexerMarket, error) {
	if err := g.track("MarketByID"); err != nil {
		return nil, err
	}
	for i := range g.Markets {
		if g.Markets[i].MarketID == marketID {
			return &g.Markets[i], nil
		}
	}
	return nil, nil
}

func (g *MockGateway) RecentTrades(ctx context.Context, marketID uint64, limit int) ([]model.IndexerTrade, error) {
	if err := g.track("RecentTrades"); err != nil {
		return nil, err
	}
	return g.Trades, nil
}

func (g *MockGateway) CreateMarket(ctx context.Context, req *interfaces.CreateMarketRequest) (string, error) {
	if err := g.track("CreateMarket"); err != nil {
		return "", err
	}
	g.mu.Lock()
	g.LastCreateMarket = req
	g.mu.Unlock()
	return g.TxHash, nil
}

func (g *MockGateway) PlaceBet(ctx context.Context, req *interfaces.PlaceBetRequest) (string, error) {
	if err := g.track("PlaceBet"); err != nil {
		return "", err
	}
	g.mu.Lock()
	g.LastPlaceBet = req
	g.mu.Unlock()
	return g.TxHash, nil
}
