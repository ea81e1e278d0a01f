package repository

import (
	"context"
	"time"

	"CopyTradeSync/internal/model"

	"gorm.io/gorm"
)

// CopyTradeRepository 跟单关系持久化
// 所有权由查询谓词保证：按 id AND follower_id 联合过滤，非本人操作表现为记录不存在
type CopyTradeRepository interface {
	Create(ctx context.Context, ct *model.CopyTrade) error
	// ListByFollower 某用户正在跟随的关系（active=true），带被跟单人钱包地址
	ListByFollower(ctx context.Context, followerID uint64) ([]*CopyTradeRow, error)
	// ListByTrader 跟随某用户的关系（active=true），带跟单人钱包地址
	ListByTrader(ctx context.Context, traderID uint64) ([]*CopyTradeRow, error)
	// GetOwned 按 id + follower_id 查询，非本人或不存在均返回 gorm.ErrRecordNotFound
	GetOwned(ctx context.Context, id, followerID uint64) (*model.CopyTrade, error)
	// UpdateOwned 按 id + follower_id 更新，返回影响行数（0 即 404）
	UpdateOwned(ctx context.Context, id, followerID uint64, updates map[string]interface{}) (int64, error)
	// DeactivateOwned 停用（active=false），返回影响行数
	DeactivateOwned(ctx context.Context, id, followerID uint64) (int64, error)
}

// CopyTradeRow 关系 + 对手方钱包地址的联表视图
type CopyTradeRow struct {
	CopyTrade          model.CopyTrade
	CounterpartyWallet string
}

type copyTradeRepository struct {
	db *gorm.DB
}

// NewCopyTradeRepository 创建 CopyTradeRepository 实例
func NewCopyTradeRepository(db *gorm.DB) CopyTradeRepository {
	return &copyTradeRepository{db: db}
}

func (r *copyTradeRepository) Create(ctx context.Context, ct *model.CopyTrade) error {
	return r.db.WithContext(ctx).Create(ct).Error
}

// copyTradeRowScan 联表查询的扁平扫描结构
type copyTradeRowScan struct {
	model.CopyTrade
	CounterpartyWallet string
}

func (r *copyTradeRepository) ListByFollower(ctx context.Context, followerID uint64) ([]*CopyTradeRow, error) {
	var scanned []copyTradeRowScan
	if err := r.db.WithContext(ctx).Model(&model.CopyTrade{}).
		Select("copy_trades.*, users.wallet_address AS counterparty_wallet").
		Joins("JOIN users ON users.id = copy_trades.trader_id").
		Where("copy_trades.follower_id = ? AND copy_trades.active = ?", followerID, true).
		Order("copy_trades.created_at DESC").
		Scan(&scanned).Error; err != nil {
		return nil, err
	}
	return toRows(scanned), nil
}

func (r *copyTradeRepository) ListByTrader(ctx context.Context, traderID uint64) ([]*CopyTradeRow, error) {
	var scanned []copyTradeRowScan
	if err := r.db.WithContext(ctx).Model(&model.CopyTrade{}).
		Select("copy_trades.*, users.wallet_address AS counterparty_wallet").
		Joins("JOIN users ON users.id = copy_trades.follower_id").
		Where("copy_trades.trader_id = ? AND copy_trades.active = ?", traderID, true).
		Order("copy_trades.created_at DESC").
		Scan(&scanned).Error; err != nil {
		return nil, err
	}
	return toRows(scanned), nil
}

func toRows(scanned []copyTradeRowScan) []*CopyTradeRow {
	rows := make([]*CopyTradeRow, 0, len(scanned))
	for _, s := range scanned {
		rows = append(rows, &CopyTradeRow{CopyTrade: s.CopyTrade, CounterpartyWallet: s.CounterpartyWallet})
	}
	return rows
}

func (r *copyTradeRepository) GetOwned(ctx context.Context, id, followerID uint64) (*model.CopyTrade, error) {
	var ct model.CopyTrade
	if err := r.db.WithContext(ctx).
		Where("id = ? AND follower_id = ?", id, followerID).
		First(&ct).Error; err != nil {
		return nil, err
	}
	return &ct, nil
}

func (r *copyTradeRepository) UpdateOwned(ctx context.Context, id, followerID uint64, updates map[string]interface{}) (int64, error) {
	updates["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&model.CopyTrade{}).
		Where("id = ? AND follower_id = ?", id, followerID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *copyTradeRepository) DeactivateOwned(ctx context.Context, id, followerID uint64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.CopyTrade{}).
		Where("id = ? AND follower_id = ?", id, followerID).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}
