package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"CopyTradeSync/internal/model"
	"CopyTradeSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// CopyTradeService 跟单关系的建立、查询与所有权受限的变更
type CopyTradeService struct {
	copyTrades repository.CopyTradeRepository
	agents     repository.AgentRepository
	users      repository.UserRepository
	logger     *logrus.Logger
}

// NewCopyTradeService 创建 CopyTradeService
func NewCopyTradeService(copyTrades repository.CopyTradeRepository, agents repository.AgentRepository, users repository.UserRepository, logger *logrus.Logger) *CopyTradeService {
	return &CopyTradeService{copyTrades: copyTrades, agents: agents, users: users, logger: logger}
}

// CopyTradeInfo 对外跟单关系
type CopyTradeInfo struct {
	ID                 uint64   `json:"id"`
	CounterpartyWallet string   `json:"counterpartyWallet"` // 对手方钱包：查 following 时为被跟单人，查 followers 时为跟单人
	Amount             float64  `json:"amount"`
	Categories         []string `json:"categories"`
	MaxTrades          *int     `json:"maxTrades,omitempty"`
	Active             bool     `json:"active"`
	CreatedAt          int64    `json:"createdAt"` // 毫秒
}

// CreateCopyTradeParams 建立跟单关系参数
type CreateCopyTradeParams struct {
	FollowerAddress string
	TraderAddress   string
	Amount          float64
	Categories      []string
	MaxTrades       *int
}

// Create 建立跟单关系。双方用户按钱包地址 upsert；不允许自己跟自己
func (s *CopyTradeService) Create(ctx context.Context, params *CreateCopyTradeParams) (*CopyTradeInfo, error) {
	follower := strings.ToLower(strings.TrimSpace(params.FollowerAddress))
	trader := strings.ToLower(strings.TrimSpace(params.TraderAddress))
	if follower == "" || trader == "" {
		return nil, fmt.Errorf("%w: followerAddress、traderAddress 不能为空", ErrInvalidArgument)
	}
	if follower == trader {
		return nil, fmt.Errorf("%w: 不能跟单自己", ErrInvalidArgument)
	}
	if params.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount 必须大于0", ErrInvalidArgument)
	}
	if params.MaxTrades != nil && *params.MaxTrades <= 0 {
		return nil, fmt.Errorf("%w: maxTrades 必须大于0", ErrInvalidArgument)
	}

	followerUser, err := s.users.EnsureUser(ctx, follower)
	if err != nil {
		return nil, err
	}
	traderUser, err := s.users.EnsureUser(ctx, trader)
	if err != nil {
		return nil, err
	}

	ct := &model.CopyTrade{
		FollowerID: followerUser.ID,
		TraderID:   traderUser.ID,
		Amount:     params.Amount,
		MaxTrades:  params.MaxTrades,
		Active:     true,
	}
	if params.Categories != nil {
		raw, err := json.Marshal(params.Categories)
		if err != nil {
			return nil, err
		}
		ct.Categories = datatypes.JSON(raw)
	}
	if err := s.copyTrades.Create(ctx, ct); err != nil {
		return nil, err
	}

	info := copyTradeInfo(ct, trader)
	return &info, nil
}

// ListByWallet 按钱包查跟单关系。direction 为 following（我跟了谁）或 followers（谁跟了我）；
// 钱包未注册返回空列表而非404
func (s *CopyTradeService) ListByWallet(ctx context.Context, address, direction string) ([]CopyTradeInfo, error) {
	user, err := s.users.GetUserByWallet(ctx, address)
	if err != nil {
		if repository.IsNotFound(err) {
			return []CopyTradeInfo{}, nil
		}
		return nil, err
	}

	var rows []*repository.CopyTradeRow
	if direction == "followers" {
		rows, err = s.copyTrades.ListByTrader(ctx, user.ID)
	} else {
		rows, err = s.copyTrades.ListByFollower(ctx, user.ID)
	}
	if err != nil {
		return nil, err
	}

	infos := make([]CopyTradeInfo, 0, len(rows))
	for _, r := range rows {
		infos = append(infos, copyTradeInfo(&r.CopyTrade, r.CounterpartyWallet))
	}
	return infos, nil
}

// UpdateCopyTradeParams 更新跟单关系参数，空字段不改
type UpdateCopyTradeParams struct {
	Amount     *float64
	Categories []string
	MaxTrades  *int
	Active     *bool
}

// Update 更新跟单关系。所有权用 id+follower_id 联合谓词过滤，
// 不属于该钱包的记录一律404，不区分是否存在
func (s *CopyTradeService) Update(ctx context.Context, id uint64, walletAddress string, params *UpdateCopyTradeParams) (*CopyTradeInfo, error) {
	user, err := s.users.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if params.Amount != nil {
		if *params.Amount <= 0 {
			return nil, fmt.Errorf("%w: amount 必须大于0", ErrInvalidArgument)
		}
		updates["amount"] = *params.Amount
	}
	if params.Categories != nil {
		raw, err := json.Marshal(params.Categories)
		if err != nil {
			return nil, err
		}
		updates["categories"] = datatypes.JSON(raw)
	}
	if params.MaxTrades != nil {
		if *params.MaxTrades <= 0 {
			return nil, fmt.Errorf("%w: maxTrades 必须大于0", ErrInvalidArgument)
		}
		updates["max_trades"] = params.MaxTrades
	}
	if params.Active != nil {
		updates["active"] = *params.Active
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: 没有可更新字段", ErrInvalidArgument)
	}

	rows, err := s.copyTrades.UpdateOwned(ctx, id, user.ID, updates)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	ct, err := s.copyTrades.GetOwned(ctx, id, user.ID)
	if err != nil {
		return nil, err
	}
	info := copyTradeInfo(ct, "")
	return &info, nil
}

// Deactivate 停用跟单关系（软删除），所有权谓词同 Update
func (s *CopyTradeService) Deactivate(ctx context.Context, id uint64, walletAddress string) error {
	user, err := s.users.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	rows, err := s.copyTrades.DeactivateOwned(ctx, id, user.ID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Executions 跟单关系的执行流水，仅限 follower 本人查询
func (s *CopyTradeService) Executions(ctx context.Context, id uint64, walletAddress string, limit int) ([]ExecutionInfo, error) {
	user, err := s.users.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if _, err := s.copyTrades.GetOwned(ctx, id, user.ID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	execs, err := s.agents.ListExecutionsByCopyTrade(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	infos := make([]ExecutionInfo, 0, len(execs))
	for _, e := range execs {
		infos = append(infos, executionInfo(e))
	}
	return infos, nil
}

func copyTradeInfo(ct *model.CopyTrade, counterpartyWallet string) CopyTradeInfo {
	return CopyTradeInfo{
		ID:                 ct.ID,
		CounterpartyWallet: counterpartyWallet,
		Amount:             ct.Amount,
		Categories:         categoriesFromJSON(ct.Categories),
		MaxTrades:          ct.MaxTrades,
		Active:             ct.Active,
		CreatedAt:          ct.CreatedAt.UnixMilli(),
	}
}
