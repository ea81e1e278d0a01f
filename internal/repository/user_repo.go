package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"CopyTradeSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户与交易员档案持久化
type UserRepository interface {
	// UpsertUser 按钱包地址插入或更新（注册路径：重复注册以最新 is_public 为准）
	UpsertUser(ctx context.Context, walletAddress string, isPublic bool) (*model.User, error)
	// EnsureUser 保证钱包对应的用户存在（写路径引用前置），已存在时不覆盖任何字段
	EnsureUser(ctx context.Context, walletAddress string) (*model.User, error)
	// GetUserByWallet 按钱包地址查用户，不存在返回 gorm.ErrRecordNotFound
	GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error)
	// UpsertProfile 插入或更新交易员档案（user_id 唯一）
	UpsertProfile(ctx context.Context, profile *model.TraderProfile) error
	// GetProfileByUserID 按用户ID查档案
	GetProfileByUserID(ctx context.Context, userID uint64) (*model.TraderProfile, error)
	// ListTopProfiles 本地收益榜：公开用户按累计盈亏降序，可按分类过滤
	ListTopProfiles(ctx context.Context, category string, limit int) ([]*TraderRow, error)
}

// TraderRow 收益榜单行视图（档案 + 钱包地址），避免 service 再回表
type TraderRow struct {
	WalletAddress string
	Profile       model.TraderProfile
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) UpsertUser(ctx context.Context, walletAddress string, isPublic bool) (*model.User, error) {
	user := &model.User{
		WalletAddress: strings.ToLower(walletAddress),
		IsPublic:      isPublic,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_public": isPublic, "updated_at": time.Now()}),
	}).Create(user).Error; err != nil {
		return nil, err
	}
	// OnConflict 更新路径下 ID 不回填，按钱包地址重查
	if user.ID == 0 {
		return r.GetUserByWallet(ctx, walletAddress)
	}
	return user, nil
}

func (r *userRepository) EnsureUser(ctx context.Context, walletAddress string) (*model.User, error) {
	user := &model.User{
		WalletAddress: strings.ToLower(walletAddress),
		IsPublic:      true,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoNothing: true,
	}).Create(user).Error; err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return r.GetUserByWallet(ctx, walletAddress)
	}
	return user, nil
}

func (r *userRepository) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("wallet_address = ?", strings.ToLower(walletAddress)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpsertProfile(ctx context.Context, profile *model.TraderProfile) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"win_rate", "total_trades", "wins", "losses",
			"profit_loss", "volume", "categories", "last_active_at", "updated_at",
		}),
	}).Create(profile).Error
}

func (r *userRepository) GetProfileByUserID(ctx context.Context, userID uint64) (*model.TraderProfile, error) {
	var profile model.TraderProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) ListTopProfiles(ctx context.Context, category string, limit int) ([]*TraderRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	db := r.db.WithContext(ctx).Model(&model.TraderProfile{}).
		Select("trader_profiles.*, users.wallet_address").
		Joins("JOIN users ON users.id = trader_profiles.user_id").
		Where("users.is_public = ?", true)
	if category != "" {
		// categories 为 jsonb 数组，按包含关系过滤
		needle, err := json.Marshal([]string{category})
		if err != nil {
			return nil, err
		}
		db = db.Where("trader_profiles.categories @> ?", string(needle))
	}

	var scanned []traderRowScan
	if err := db.Order("trader_profiles.profit_loss DESC").Limit(limit).Scan(&scanned).Error; err != nil {
		return nil, err
	}
	list := make([]*TraderRow, 0, len(scanned))
	for _, s := range scanned {
		list = append(list, &TraderRow{WalletAddress: s.WalletAddress, Profile: s.TraderProfile})
	}
	return list, nil
}

// traderRowScan 联表查询的扁平扫描结构
type traderRowScan struct {
	model.TraderProfile
	WalletAddress string
}

// IsNotFound 判断是否为记录缺失错误（service 层统一映射 404）
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
