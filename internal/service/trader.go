package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"CopyTradeSync/internal/interfaces"
	"CopyTradeSync/internal/model"
	"CopyTradeSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// TraderService 交易员榜单、详情与注册
type TraderService struct {
	users   repository.UserRepository
	gateway interfaces.LedgerGateway
	logger  *logrus.Logger
}

// NewTraderService 创建 TraderService
func NewTraderService(users repository.UserRepository, gateway interfaces.LedgerGateway, logger *logrus.Logger) *TraderService {
	return &TraderService{users: users, gateway: gateway, logger: logger}
}

// TraderInfo 对外交易员信息
type TraderInfo struct {
	Address     string   `json:"address"`
	WinRate     float64  `json:"winRate"`
	TotalTrades int      `json:"totalTrades"`
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	ProfitLoss  float64  `json:"profitLoss"`
	Volume      float64  `json:"volume"`
	Categories  []string `json:"categories"`
	LastActive  int64    `json:"lastActive,omitempty"` // 毫秒
}

// LeaderboardResult 榜单返回
type LeaderboardResult struct {
	Traders []TraderInfo `json:"traders"`
	Source  string       `json:"source"`
}

// Leaderboard 收益榜。索引服务出错或为空降级到本地库，本地库出错或为空降级到静态数据，
// 所以榜单永远有结果，不返回错误
func (s *TraderService) Leaderboard(ctx context.Context, category string, limit int) *LeaderboardResult {
	traders, err := s.gateway.TopTraders(ctx, category, limit)
	if err != nil {
		s.logger.WithError(err).Warn("索引服务榜单不可用，降级到本地库")
	} else if len(traders) > 0 {
		infos := make([]TraderInfo, 0, len(traders))
		for _, t := range traders {
			infos = append(infos, traderFromIndexer(t))
		}
		return &LeaderboardResult{Traders: infos, Source: SourceIndexer}
	}

	rows, err := s.users.ListTopProfiles(ctx, category, limit)
	if err != nil {
		s.logger.WithError(err).Warn("本地库榜单查询失败，降级到静态数据")
	} else if len(rows) > 0 {
		infos := make([]TraderInfo, 0, len(rows))
		for _, r := range rows {
			infos = append(infos, traderFromRow(r))
		}
		return &LeaderboardResult{Traders: infos, Source: SourceDatabase}
	}

	return &LeaderboardResult{Traders: mockTraders(), Source: SourceMock}
}

// TraderByAddress 交易员详情。索引服务优先，本地库兜底；两边都没有即 ErrNotFound，
// 无静态兜底层
func (s *TraderService) TraderByAddress(ctx context.Context, address string) (*TraderInfo, string, error) {
	addr := strings.ToLower(address)

	trader, err := s.gateway.TraderByAddress(ctx, addr)
	if err != nil {
		s.logger.WithError(err).WithField("address", addr).Warn("索引服务交易员查询不可用，降级到本地库")
	} else if trader != nil {
		info := traderFromIndexer(*trader)
		return &info, SourceIndexer, nil
	}

	user, err := s.users.GetUserByWallet(ctx, addr)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}

	info := &TraderInfo{Address: user.WalletAddress, Categories: []string{}}
	profile, err := s.users.GetProfileByUserID(ctx, user.ID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, "", err
	}
	if profile != nil {
		*info = traderFromProfile(user.WalletAddress, profile)
	}
	return info, SourceDatabase, nil
}

// RegisterRequest 交易员注册/更新参数
type RegisterRequest struct {
	WalletAddress string
	IsPublic      *bool // 缺省为 true
	Categories    []string
}

// Register 注册交易员：用户按钱包地址 upsert（后写的 is_public 生效），
// 分类写入交易员档案
func (s *TraderService) Register(ctx context.Context, req *RegisterRequest) (*TraderInfo, error) {
	if strings.TrimSpace(req.WalletAddress) == "" {
		return nil, fmt.Errorf("%w: walletAddress 不能为空", ErrInvalidArgument)
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	user, err := s.users.UpsertUser(ctx, req.WalletAddress, isPublic)
	if err != nil {
		return nil, err
	}

	profile, err := s.users.GetProfileByUserID(ctx, user.ID)
	if err != nil && !repository.IsNotFound(err) {
		return nil, err
	}
	if profile == nil {
		profile = &model.TraderProfile{UserID: user.ID}
	}
	if req.Categories != nil {
		raw, err := json.Marshal(req.Categories)
		if err != nil {
			return nil, err
		}
		profile.Categories = datatypes.JSON(raw)
	}
	if err := s.users.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}

	info := traderFromProfile(user.WalletAddress, profile)
	return &info, nil
}

// Stats 交易员统计。未注册或无档案时返回零值而非404
func (s *TraderService) Stats(ctx context.Context, address string) (*TraderInfo, error) {
	addr := strings.ToLower(address)
	zero := &TraderInfo{Address: addr, Categories: []string{}}

	user, err := s.users.GetUserByWallet(ctx, addr)
	if err != nil {
		if repository.IsNotFound(err) {
			return zero, nil
		}
		return nil, err
	}
	profile, err := s.users.GetProfileByUserID(ctx, user.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return zero, nil
		}
		return nil, err
	}
	info := traderFromProfile(user.WalletAddress, profile)
	return &info, nil
}

func traderFromIndexer(t model.IndexerTrader) TraderInfo {
	categories := t.Categories
	if categories == nil {
		categories = []string{}
	}
	return TraderInfo{
		Address:     strings.ToLower(t.Address),
		WinRate:     t.WinRate,
		TotalTrades: t.TotalTrades,
		Wins:        t.Wins,
		Losses:      t.Losses,
		ProfitLoss:  t.ProfitLoss,
		Volume:      t.Volume,
		Categories:  categories,
		LastActive:  t.LastActive,
	}
}

func traderFromRow(r *repository.TraderRow) TraderInfo {
	return traderFromProfile(r.WalletAddress, &r.Profile)
}

func traderFromProfile(wallet string, p *model.TraderProfile) TraderInfo {
	info := TraderInfo{
		Address:     wallet,
		WinRate:     p.WinRate,
		TotalTrades: p.TotalTrades,
		Wins:        p.Wins,
		Losses:      p.Losses,
		ProfitLoss:  p.ProfitLoss,
		Volume:      p.Volume,
		Categories:  categoriesFromJSON(p.Categories),
	}
	if p.LastActiveAt != nil {
		info.LastActive = p.LastActiveAt.UnixMilli()
	}
	return info
}

func categoriesFromJSON(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var categories []string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return []string{}
	}
	return categories
}
