package repository

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"CopyTradeSync/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MockStore 内存版仓储，测试用。实现 User/Market/CopyTrade 三个仓储接口；
// Agent 仓储的 GetOwned 与跟单仓储同名不同返回，见 MockAgentStore
type MockStore struct {
	mu sync.RWMutex

	Users      map[uint64]*model.User
	Profiles   map[uint64]*model.TraderProfile // key: user_id
	Markets    map[uint64]*model.Market        // key: market_id（链上ID）
	Trades     []*model.Trade
	CopyTrades map[uint64]*model.CopyTrade

	// Calls 方法调用计数，断言用
	Calls map[string]int
	// ErrorOnNext 按方法名注入一次性错误
	ErrorOnNext map[string]error

	nextID uint64
}

// 编译期接口断言
var (
	_ UserRepository      = (*MockStore)(nil)
	_ MarketRepository    = (*MockStore)(nil)
	_ CopyTradeRepository = (*MockStore)(nil)
)

// NewMockStore 创建内存仓储
func NewMockStore() *MockStore {
	return &MockStore{
		Users:       make(map[uint64]*model.User),
		Profiles:    make(map[uint64]*model.TraderProfile),
		Markets:     make(map[uint64]*model.Market),
		CopyTrades:  make(map[uint64]*model.CopyTrade),
		Calls:       make(map[string]int),
		ErrorOnNext: make(map[string]error),
	}
}

func (m *MockStore) trackCall(name string) error {
	m.Calls[name]++
	if err, ok := m.ErrorOnNext[name]; ok {
		delete(m.ErrorOnNext, name)
		return err
	}
	return nil
}

func (m *MockStore) nextSeq() uint64 {
	m.nextID++
	return m.nextID
}

// ===== UserRepository =====

func (m *MockStore) UpsertUser(ctx context.Context, walletAddress string, isPublic bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("UpsertUser"); err != nil {
		return nil, err
	}
	wallet := strings.ToLower(walletAddress)
	for _, u := range m.Users {
		if u.WalletAddress == wallet {
			u.IsPublic = isPublic
			u.UpdatedAt = time.Now()
			return u, nil
		}
	}
	u := &model.User{ID: m.nextSeq(), WalletAddress: wallet, IsPublic: isPublic, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.Users[u.ID] = u
	return u, nil
}

func (m *MockStore) EnsureUser(ctx context.Context, walletAddress string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("EnsureUser"); err != nil {
		return nil, err
	}
	wallet := strings.ToLower(walletAddress)
	for _, u := range m.Users {
		if u.WalletAddress == wallet {
			return u, nil
		}
	}
	u := &model.User{ID: m.nextSeq(), WalletAddress: wallet, IsPublic: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.Users[u.ID] = u
	return u, nil
}

func (m *MockStore) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("GetUserByWallet"); err != nil {
		return nil, err
	}
	wallet := strings.ToLower(walletAddress)
	for _, u := range m.Users {
		if u.WalletAddress == wallet {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockStore) UpsertProfile(ctx context.Context, profile *model.TraderProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("UpsertProfile"); err != nil {
		return err
	}
	if existing, ok := m.Profiles[profile.UserID]; ok {
		profile.ID = existing.ID
	} else if profile.ID == 0 {
		profile.ID = m.nextSeq()
	}
	m.Profiles[profile.UserID] = profile
	return nil
}

func (m *MockStore) GetProfileByUserID(ctx context.Context, userID uint64) (*model.TraderProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("GetProfileByUserID"); err != nil {
		return nil, err
	}
	if p, ok := m.Profiles[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockStore) ListTopProfiles(ctx context.Context, category string, limit int) ([]*TraderRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("ListTopProfiles"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var rows []*TraderRow
	for userID, p := range m.Profiles {
		u, ok := m.Users[userID]
		if !ok || !u.IsPublic {
			continue
		}
		if category != "" && !hasCategory(p.Categories, category) {
			continue
		}
		rows = append(rows, &TraderRow{WalletAddress: u.WalletAddress, Profile: *p})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Profile.ProfitLoss > rows[j].Profile.ProfitLoss
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func hasCategory(raw []byte, category string) bool {
	var categories []string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return false
	}
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// ===== MarketRepository =====

func (m *MockStore) CreateMarket(ctx context.Context, market *model.Market) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("CreateMarket"); err != nil {
		return err
	}
	if market.ID == 0 {
		market.ID = m.nextSeq()
	}
	m.Markets[market.MarketID] = market
	return nil
}

func (m *MockStore) GetByMarketID(ctx context.Context, marketID uint64) (*model.Market, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("GetByMarketID"); err != nil {
		return nil, err
	}
	if market, ok := m.Markets[marketID]; ok {
		return market, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockStore) ListActive(ctx context.Context, category string, limit int) ([]*model.Market, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("ListActive"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var markets []*model.Market
	for _, market := range m.Markets {
		if market.Resolved || !market.EndTime.After(time.Now()) {
			continue
		}
		if category != "" && market.Category != category {
			continue
		}
		markets = append(markets, market)
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].EndTime.Before(markets[j].EndTime) })
	if len(markets) > limit {
		markets = markets[:limit]
	}
	return markets, nil
}

func (m *MockStore) AddStake(ctx context.Context, marketID uint64, prediction bool, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("AddStake"); err != nil {
		return err
	}
	market, ok := m.Markets[marketID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if prediction {
		market.YesAmount += amount
	} else {
		market.NoAmount += amount
	}
	return nil
}

func (m *MockStore) CreateTrade(ctx context.Context, trade *model.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("CreateTrade"); err != nil {
		return err
	}
	if trade.ID == 0 {
		trade.ID = m.nextSeq()
	}
	m.Trades = append(m.Trades, trade)
	return nil
}

func (m *MockStore) ListRecentTrades(ctx context.Context, marketID uint64, limit int) ([]*model.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("ListRecentTrades"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var trades []*model.Trade
	for _, t := range m.Trades {
		if t.MarketID == marketID {
			trades = append(trades, t)
		}
	}
	sort.Slice(trades, func(i, j int) bool { return trades[i].CreatedAt.After(trades[j].CreatedAt) })
	if len(trades) > limit {
		trades = trades[:limit]
	}
	return trades, nil
}

// ===== CopyTradeRepository =====

func (m *MockStore) Create(ctx context.Context, ct *model.CopyTrade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("Create"); err != nil {
		return err
	}
	if ct.ID == 0 {
		ct.ID = m.nextSeq()
	}
	m.CopyTrades[ct.ID] = ct
	return nil
}

func (m *MockStore) ListByFollower(ctx context.Context, followerID uint64) ([]*CopyTradeRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("ListByFollower"); err != nil {
		return nil, err
	}
	var rows []*CopyTradeRow
	for _, ct := range m.CopyTrades {
		if ct.FollowerID != followerID || !ct.Active {
			continue
		}
		wallet := ""
		if u, ok := m.Users[ct.TraderID]; ok {
			wallet = u.WalletAddress
		}
		rows = append(rows, &CopyTradeRow{CopyTrade: *ct, CounterpartyWallet: wallet})
	}
	return rows, nil
}

func (m *MockStore) ListByTrader(ctx context.Context, traderID uint64) ([]*CopyTradeRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("ListByTrader"); err != nil {
		return nil, err
	}
	var rows []*CopyTradeRow
	for _, ct := range m.CopyTrades {
		if ct.TraderID != traderID || !ct.Active {
			continue
		}
		wallet := ""
		if u, ok := m.Users[ct.FollowerID]; ok {
			wallet = u.WalletAddress
		}
		rows = append(rows, &CopyTradeRow{CopyTrade: *ct, CounterpartyWallet: wallet})
	}
	return rows, nil
}

func (m *MockStore) GetOwned(ctx context.Context, id, ownerID uint64) (*model.CopyTrade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("GetOwned"); err != nil {
		return nil, err
	}
	if ct, ok := m.CopyTrades[id]; ok && ct.FollowerID == ownerID {
		return ct, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockStore) UpdateOwned(ctx context.Context, id, followerID uint64, updates map[string]interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("UpdateOwned"); err != nil {
		return 0, err
	}
	ct, ok := m.CopyTrades[id]
	if !ok || ct.FollowerID != followerID {
		return 0, nil
	}
	if v, ok := updates["amount"].(float64); ok {
		ct.Amount = v
	}
	if v, ok := updates["categories"].(datatypes.JSON); ok {
		ct.Categories = v
	}
	if v, ok := updates["max_trades"].(*int); ok {
		ct.MaxTrades = v
	}
	if v, ok := updates["active"].(bool); ok {
		ct.Active = v
	}
	ct.UpdatedAt = time.Now()
	return 1, nil
}

func (m *MockStore) DeactivateOwned(ctx context.Context, id, followerID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("DeactivateOwned"); err != nil {
		return 0, err
	}
	ct, ok := m.CopyTrades[id]
	if !ok || ct.FollowerID != followerID {
		return 0, nil
	}
	ct.Active = false
	ct.UpdatedAt = time.Now()
	return 1, nil
}

// MockAgentStore 内存版代理仓储，测试用
type MockAgentStore struct {
	mu sync.RWMutex

	Agents     map[uint64]*model.Agent
	Executions []*model.AgentExecution

	Calls       map[string]int
	ErrorOnNext map[string]error

	nextID uint64
}

var _ AgentRepository = (*MockAgentStore)(nil)

// NewMockAgentStore 创建内存代理仓储
func NewMockAgentStore() *MockAgentStore {
	return &MockAgentStore{
		Agents:      make(map[uint64]*model.Agent),
		Calls:       make(map[string]int),
		ErrorOnNext: make(map[string]error),
	}
}

func (m *MockAgentStore) trackCall(name string) error {
	m.Calls[name]++
	if err, ok := m.ErrorOnNext[name]; ok {
		delete(m.ErrorOnNext, name)
		return err
	}
	return nil
}

func (m *MockAgentStore) nextSeq() uint64 {
	m.nextID++
	return m.nextID
}

func (m *MockAgentStore) CreateAgent(ctx context.Context, agent *model.Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("CreateAgent"); err != nil {
		return err
	}
	if agent.ID == 0 {
		agent.ID = m.nextSeq()
	}
	m.Agents[agent.ID] = agent
	return nil
}

func (m *MockAgentStore) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("ListByOwner"); err != nil {
		return nil, err
	}
	var agents []*model.Agent
	for _, a := range m.Agents {
		if a.OwnerID == ownerID {
			agents = append(agents, a)
		}
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents, nil
}

func (m *MockAgentStore) GetOwned(ctx context.Context, id, ownerID uint64) (*model.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("GetOwned"); err != nil {
		return nil, err
	}
	if a, ok := m.Agents[id]; ok && a.OwnerID == ownerID {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAgentStore) GetByID(ctx context.Context, id uint64) (*model.Agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("GetByID"); err != nil {
		return nil, err
	}
	if a, ok := m.Agents[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockAgentStore) AddAuthorized(ctx context.Context, id uint64, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("AddAuthorized"); err != nil {
		return err
	}
	a, ok := m.Agents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.AuthorizedAmount += amount
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MockAgentStore) SetActive(ctx context.Context, id uint64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("SetActive"); err != nil {
		return err
	}
	a, ok := m.Agents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Active = active
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MockAgentStore) AddSpent(ctx context.Context, id uint64, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("AddSpent"); err != nil {
		return err
	}
	a, ok := m.Agents[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.SpentAmount += amount
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MockAgentStore) CreateExecution(ctx context.Context, exec *model.AgentExecution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.trackCall("CreateExecution"); err != nil {
		return err
	}
	if exec.ID == 0 {
		exec.ID = m.nextSeq()
	}
	m.Executions = append(m.Executions, exec)
	return nil
}

func (m *MockAgentStore) ListExecutionsByAgent(ctx context.Context, agentID uint64, limit int) ([]*model.AgentExecution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("ListExecutionsByAgent"); err != nil {
		return nil, err
	}
	var execs []*model.AgentExecution
	for _, e := range m.Executions {
		if e.AgentID == agentID {
			execs = append(execs, e)
		}
	}
	return execs, nil
}

func (m *MockAgentStore) ListExecutionsByCopyTrade(ctx context.Context, copyTradeID uint64, limit int) ([]*model.AgentExecution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.trackCall("ListExecutionsByCopyTrade"); err != nil {
		return nil, err
	}
	var execs []*model.AgentExecution
	for _, e := range m.Executions {
		if e.CopyTradeID != nil && *e.CopyTradeID == copyTradeID {
			execs = append(execs, e)
		}
	}
	return execs, nil
}
