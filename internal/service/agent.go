package service

import (
	"context"
	"fmt"
	"strings"

	"CopyTradeSync/internal/interfaces"
	"CopyTradeSync/internal/model"
	"CopyTradeSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AgentService x402 委托代理的开通、授权与流水。外部开通服务失败不报错，
// 降级为本地 demo 占位记录，前端仍可走通流程
type AgentService struct {
	agents      repository.AgentRepository
	users       repository.UserRepository
	provisioner interfaces.AgentProvisioner
	logger      *logrus.Logger
}

// NewAgentService 创建 AgentService
func NewAgentService(agents repository.AgentRepository, users repository.UserRepository, provisioner interfaces.AgentProvisioner, logger *logrus.Logger) *AgentService {
	return &AgentService{agents: agents, users: users, provisioner: provisioner, logger: logger}
}

// AgentInfo 对外代理信息
type AgentInfo struct {
	ID               uint64  `json:"id"`
	OwnerWallet      string  `json:"ownerWallet"`
	TraderAddress    string  `json:"traderAddress,omitempty"`
	AgentAddress     string  `json:"agentAddress"`
	PerTradeLimit    float64 `json:"perTradeLimit"`
	TotalLimit       float64 `json:"totalLimit"`
	AuthorizedAmount float64 `json:"authorizedAmount"`
	SpentAmount      float64 `json:"spentAmount"`
	Active           bool    `json:"active"`
	Demo             bool    `json:"demo"`
	CreatedAt        int64   `json:"createdAt"` // 毫秒
}

// ExecutionInfo 对外代理执行流水
type ExecutionInfo struct {
	ID          uint64  `json:"id"`
	AgentID     uint64  `json:"agentId"`
	CopyTradeID *uint64 `json:"copyTradeId,omitempty"`
	MarketID    uint64  `json:"marketId"`
	Prediction  bool    `json:"prediction"`
	Amount      float64 `json:"amount"`
	TxHash      string  `json:"txHash"`
	Status      string  `json:"status"`
	CreatedAt   int64   `json:"createdAt"` // 毫秒
}

// CreateAgentParams 开通代理参数
type CreateAgentParams struct {
	WalletAddress string
	TraderAddress string
	PerTradeLimit float64
	TotalLimit    float64
}

// Create 开通代理。外部开通失败时本地生成 demo 占位地址；镜像写入失败只记日志，
// 但占位记录必须落库才能返回
func (s *AgentService) Create(ctx context.Context, params *CreateAgentParams) (*AgentInfo, error) {
	if strings.TrimSpace(params.WalletAddress) == "" {
		return nil, fmt.Errorf("%w: walletAddress 不能为空", ErrInvalidArgument)
	}
	if params.PerTradeLimit < 0 || params.TotalLimit < 0 {
		return nil, fmt.Errorf("%w: 限额不能为负", ErrInvalidArgument)
	}

	user, err := s.users.EnsureUser(ctx, params.WalletAddress)
	if err != nil {
		return nil, err
	}
	trader := strings.ToLower(strings.TrimSpace(params.TraderAddress))

	agent := &model.Agent{
		OwnerID:       user.ID,
		OwnerWallet:   user.WalletAddress,
		TraderAddress: trader,
		PerTradeLimit: params.PerTradeLimit,
		TotalLimit:    params.TotalLimit,
		Active:        true,
	}

	provisioned, err := s.provisioner.ProvisionAgent(ctx, &interfaces.ProvisionAgentRequest{
		OwnerWallet:   user.WalletAddress,
		TraderAddress: trader,
		PerTradeLimit: params.PerTradeLimit,
		TotalLimit:    params.TotalLimit,
	})
	if err != nil {
		s.logger.WithError(err).WithField("wallet", user.WalletAddress).Warn("x402 代理开通失败，生成本地 demo 占位")
		agent.AgentAddress = demoAgentAddress()
		agent.Demo = true
	} else {
		agent.AgentAddress = strings.ToLower(provisioned.AgentAddress)
	}

	if err := s.agents.CreateAgent(ctx, agent); err != nil {
		return nil, err
	}

	info := agentInfo(agent)
	return &info, nil
}

// ListByWallet 按钱包查代理。钱包未注册返回空列表
func (s *AgentService) ListByWallet(ctx context.Context, address string) ([]AgentInfo, error) {
	user, err := s.users.GetUserByWallet(ctx, address)
	if err != nil {
		if repository.IsNotFound(err) {
			return []AgentInfo{}, nil
		}
		return nil, err
	}
	agents, err := s.agents.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	infos := make([]AgentInfo, 0, len(agents))
	for _, a := range agents {
		infos = append(infos, agentInfo(a))
	}
	return infos, nil
}

// AuthorizeResult 授权返回
type AuthorizeResult struct {
	AuthorizationID  string  `json:"authorizationId"`
	AuthorizedAmount float64 `json:"authorizedAmount"`
	Demo             bool    `json:"demo"`
}

// Authorize 追加授权额度。外部授权失败降级为 demo 占位凭据；额度累加失败只记日志
func (s *AgentService) Authorize(ctx context.Context, id uint64, walletAddress string, amount float64) (*AuthorizeResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount 必须大于0", ErrInvalidArgument)
	}
	agent, err := s.ownedAgent(ctx, id, walletAddress)
	if err != nil {
		return nil, err
	}

	result := &AuthorizeResult{}
	authID, err := s.provisioner.AuthorizeAgent(ctx, agent.AgentAddress, amount)
	if err != nil {
		s.logger.WithError(err).WithField("agent_id", id).Warn("x402 授权失败，生成 demo 占位凭据")
		result.AuthorizationID = "demo-auth-" + uuid.New().String()
		result.Demo = true
	} else {
		result.AuthorizationID = authID
	}

	if err := s.agents.AddAuthorized(ctx, id, amount); err != nil {
		s.logger.WithError(err).WithField("agent_id", id).Warn("授权额度累加失败")
	}
	result.AuthorizedAmount = agent.AuthorizedAmount + amount
	return result, nil
}

// ToggleResult 启停返回
type ToggleResult struct {
	Active bool `json:"active"`
	Demo   bool `json:"demo"`
}

// Toggle 翻转代理启停状态。外部切换失败仍在本地翻转并标记 demo
func (s *AgentService) Toggle(ctx context.Context, id uint64, walletAddress string) (*ToggleResult, error) {
	agent, err := s.ownedAgent(ctx, id, walletAddress)
	if err != nil {
		return nil, err
	}

	next := !agent.Active
	result := &ToggleResult{Active: next}
	if err := s.provisioner.ToggleAgent(ctx, agent.AgentAddress, next); err != nil {
		s.logger.WithError(err).WithField("agent_id", id).Warn("x402 启停切换失败，仅本地生效")
		result.Demo = true
	}
	if err := s.agents.SetActive(ctx, id, next); err != nil {
		s.logger.WithError(err).WithField("agent_id", id).Warn("代理状态落库失败")
	}
	return result, nil
}

// Executions 代理执行流水，仅限所属钱包查询
func (s *AgentService) Executions(ctx context.Context, id uint64, walletAddress string, limit int) ([]ExecutionInfo, error) {
	if _, err := s.ownedAgent(ctx, id, walletAddress); err != nil {
		return nil, err
	}
	execs, err := s.agents.ListExecutionsByAgent(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	infos := make([]ExecutionInfo, 0, len(execs))
	for _, e := range execs {
		infos = append(infos, executionInfo(e))
	}
	return infos, nil
}

// ExecutionReport x402 webhook 上报的执行结果
type ExecutionReport struct {
	AgentID     uint64
	CopyTradeID *uint64
	MarketID    uint64
	Prediction  bool
	Amount      float64
	TxHash      string
	Status      string
}

// RecordExecution webhook 执行上报落库并累加代理消费额
func (s *AgentService) RecordExecution(ctx context.Context, report *ExecutionReport) (*ExecutionInfo, error) {
	if report.TxHash == "" {
		return nil, fmt.Errorf("%w: txHash 不能为空", ErrInvalidArgument)
	}
	if report.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount 必须大于0", ErrInvalidArgument)
	}
	if _, err := s.agents.GetByID(ctx, report.AgentID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	status := report.Status
	if status == "" {
		status = "executed"
	}
	exec := &model.AgentExecution{
		AgentID:     report.AgentID,
		CopyTradeID: report.CopyTradeID,
		MarketID:    report.MarketID,
		Prediction:  report.Prediction,
		Amount:      report.Amount,
		TxHash:      report.TxHash,
		Status:      status,
	}
	if err := s.agents.CreateExecution(ctx, exec); err != nil {
		return nil, err
	}
	if err := s.agents.AddSpent(ctx, report.AgentID, report.Amount); err != nil {
		s.logger.WithError(err).WithField("agent_id", report.AgentID).Warn("代理消费额累加失败")
	}

	info := executionInfo(exec)
	return &info, nil
}

// ownedAgent 所有权受限的代理查询：id+owner_id 联合谓词，不满足即404
func (s *AgentService) ownedAgent(ctx context.Context, id uint64, walletAddress string) (*model.Agent, error) {
	user, err := s.users.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	agent, err := s.agents.GetOwned(ctx, id, user.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return agent, nil
}

// demoAgentAddress 外部开通失败时的占位地址，uuid 去连字符冒充链上地址
func demoAgentAddress() string {
	return "0x" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func agentInfo(a *model.Agent) AgentInfo {
	return AgentInfo{
		ID:               a.ID,
		OwnerWallet:      a.OwnerWallet,
		TraderAddress:    a.TraderAddress,
		AgentAddress:     a.AgentAddress,
		PerTradeLimit:    a.PerTradeLimit,
		TotalLimit:       a.TotalLimit,
		AuthorizedAmount: a.AuthorizedAmount,
		SpentAmount:      a.SpentAmount,
		Active:           a.Active,
		Demo:             a.Demo,
		CreatedAt:        a.CreatedAt.UnixMilli(),
	}
}

func executionInfo(e *model.AgentExecution) ExecutionInfo {
	return ExecutionInfo{
		ID:          e.ID,
		AgentID:     e.AgentID,
		CopyTradeID: e.CopyTradeID,
		MarketID:    e.MarketID,
		Prediction:  e.Prediction,
		Amount:      e.Amount,
		TxHash:      e.TxHash,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt.UnixMilli(),
	}
}
