package repository

import (
	"context"
	"time"

	"CopyTradeSync/internal/model"

	"gorm.io/gorm"
)

// AgentRepository 委托代理与执行流水持久化
type AgentRepository interface {
	CreateAgent(ctx context.Context, agent *model.Agent) error
	ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Agent, error)
	// GetOwned 按 id + owner_id 查询，非本人或不存在均返回 gorm.ErrRecordNotFound
	GetOwned(ctx context.Context, id, ownerID uint64) (*model.Agent, error)
	GetByID(ctx context.Context, id uint64) (*model.Agent, error)
	// AddAuthorized 累加已授权金额
	AddAuthorized(ctx context.Context, id uint64, amount float64) error
	// SetActive 启用/停用
	SetActive(ctx context.Context, id uint64, active bool) error
	// AddSpent 执行上报后累加已消费金额
	AddSpent(ctx context.Context, id uint64, amount float64) error
	CreateExecution(ctx context.Context, exec *model.AgentExecution) error
	ListExecutionsByAgent(ctx context.Context, agentID uint64, limit int) ([]*model.AgentExecution, error)
	ListExecutionsByCopyTrade(ctx context.Context, copyTradeID uint64, limit int) ([]*model.AgentExecution, error)
}

type agentRepository struct {
	db *gorm.DB
}

// NewAgentRepository 创建 AgentRepository 实例
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) CreateAgent(ctx context.Context, agent *model.Agent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

func (r *agentRepository) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Agent, error) {
	var agents []*model.Agent
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *agentRepository) GetOwned(ctx context.Context, id, ownerID uint64) (*model.Agent, error) {
	var agent model.Agent
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) GetByID(ctx context.Context, id uint64) (*model.Agent, error) {
	var agent model.Agent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *agentRepository) AddAuthorized(ctx context.Context, id uint64, amount float64) error {
	return r.db.WithContext(ctx).Model(&model.Agent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"authorized_amount": gorm.Expr("authorized_amount + ?", amount),
			"updated_at":        time.Now(),
		}).Error
}

func (r *agentRepository) SetActive(ctx context.Context, id uint64, active bool) error {
	return r.db.WithContext(ctx).Model(&model.Agent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"active": active, "updated_at": time.Now()}).Error
}

func (r *agentRepository) AddSpent(ctx context.Context, id uint64, amount float64) error {
	return r.db.WithContext(ctx).Model(&model.Agent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"spent_amount": gorm.Expr("spent_amount + ?", amount),
			"updated_at":   time.Now(),
		}).Error
}

func (r *agentRepository) CreateExecution(ctx context.Context, exec *model.AgentExecution) error {
	return r.db.WithContext(ctx).Create(exec).Error
}

func (r *agentRepository) ListExecutionsByAgent(ctx context.Context, agentID uint64, limit int) ([]*model.AgentExecution, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var execs []*model.AgentExecution
	if err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").Limit(limit).
		Find(&execs).Error; err != nil {
		return nil, err
	}
	return execs, nil
}

func (r *agentRepository) ListExecutionsByCopyTrade(ctx context.Context, copyTradeID uint64, limit int) ([]*model.AgentExecution, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var execs []*model.AgentExecution
	if err := r.db.WithContext(ctx).
		Where("copy_trade_id = ?", copyTradeID).
		Order("created_at DESC").Limit(limit).
		Find(&execs).Error; err != nil {
		return nil, err
	}
	return execs, nil
}
