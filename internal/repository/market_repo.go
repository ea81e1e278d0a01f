package repository

import (
	"context"
	"time"

	"CopyTradeSync/internal/model"

	"gorm.io/gorm"
)

// MarketRepository 市场与成交记录持久化
type MarketRepository interface {
	// CreateMarket 镜像一条链上已创建的市场
	CreateMarket(ctx context.Context, market *model.Market) error
	// GetByMarketID 按链上市场ID查询，不存在返回 gorm.ErrRecordNotFound
	GetByMarketID(ctx context.Context, marketID uint64) (*model.Market, error)
	// ListActive 进行中的市场（未结算且未到期），可按分类过滤
	ListActive(ctx context.Context, category string, limit int) ([]*model.Market, error)
	// AddStake 下注成功后累加对应方向的总注额
	AddStake(ctx context.Context, marketID uint64, prediction bool, amount float64) error
	// CreateTrade 镜像一条链上已成交的下注
	CreateTrade(ctx context.Context, trade *model.Trade) error
	// ListRecentTrades 市场最近成交，按时间倒序
	ListRecentTrades(ctx context.Context, marketID uint64, limit int) ([]*model.Trade, error)
}

type marketRepository struct {
	db *gorm.DB
}

// NewMarketRepository 创建 MarketRepository 实例
func NewMarketRepository(db *gorm.DB) MarketRepository {
	return &marketRepository{db: db}
}

func (r *marketRepository) CreateMarket(ctx context.Context, market *model.Market) error {
	return r.db.WithContext(ctx).Create(market).Error
}

func (r *marketRepository) GetByMarketID(ctx context.Context, marketID uint64) (*model.Market, error) {
	var m model.Market
	if err := r.db.WithContext(ctx).Where("market_id = ?", marketID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *marketRepository) ListActive(ctx context.Context, category string, limit int) ([]*model.Market, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	db := r.db.WithContext(ctx).Model(&model.Market{}).
		Where("resolved = ? AND end_time > ?", false, time.Now())
	if category != "" {
		db = db.Where("category = ?", category)
	}
	var markets []*model.Market
	if err := db.Order("end_time ASC").Limit(limit).Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

func (r *marketRepository) AddStake(ctx context.Context, marketID uint64, prediction bool, amount float64) error {
	column := "no_amount"
	if prediction {
		column = "yes_amount"
	}
	return r.db.WithContext(ctx).Model(&model.Market{}).
		Where("market_id = ?", marketID).
		Updates(map[string]interface{}{
			column:       gorm.Expr(column+" + ?", amount),
			"updated_at": time.Now(),
		}).Error
}

func (r *marketRepository) CreateTrade(ctx context.Context, trade *model.Trade) error {
	return r.db.WithContext(ctx).Create(trade).Error
}

func (r *marketRepository) ListRecentTrades(ctx context.Context, marketID uint64, limit int) ([]*model.Trade, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var trades []*model.Trade
	if err := r.db.WithContext(ctx).
		Where("market_id = ?", marketID).
		Order("created_at DESC").Limit(limit).
		Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}
