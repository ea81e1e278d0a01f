package service

import "time"

// 静态兜底数据：索引服务与本地库都拿不到结果时返回，保证前端演示可用。
// 固定三条，内容不随时间变化（市场截止时间除外，保持在未来）。

func mockTraders() []TraderInfo {
	return []TraderInfo{
		{
			Address:     "0x7a3b5c9d1e8f2a4b6c8d0e2f4a6b8c0d2e4f6a8b",
			WinRate:     0.72,
			TotalTrades: 148,
			Wins:        107,
			Losses:      41,
			ProfitLoss:  12840.5,
			Volume:      96500,
			Categories:  []string{"crypto", "sports"},
		},
		{
			Address:     "0x1f2e3d4c5b6a7988776655443322110ffeeddccb",
			WinRate:     0.65,
			TotalTrades: 203,
			Wins:        132,
			Losses:      71,
			ProfitLoss:  8920.25,
			Volume:      154200,
			Categories:  []string{"politics"},
		},
		{
			Address:     "0x9c8b7a6f5e4d3c2b1a0f9e8d7c6b5a4f3e2d1c0b",
			WinRate:     0.58,
			TotalTrades: 87,
			Wins:        50,
			Losses:      37,
			ProfitLoss:  3310.75,
			Volume:      42800,
			Categories:  []string{"sports", "entertainment"},
		},
	}
}

func demoMarkets() []MarketInfo {
	endTime := time.Now().Add(72 * time.Hour).UnixMilli()
	return []MarketInfo{
		{
			MarketID:  1,
			Question:  "Will BTC close above $100k this month?",
			Category:  "crypto",
			EndTime:   endTime,
			YesAmount: 15200,
			NoAmount:  9800,
		},
		{
			MarketID:  2,
			Question:  "Will the home team win the championship final?",
			Category:  "sports",
			EndTime:   endTime,
			YesAmount: 8400,
			NoAmount:  11600,
		},
		{
			MarketID:  3,
			Question:  "Will the incumbent win the next election?",
			Category:  "politics",
			EndTime:   endTime,
			YesAmount: 22000,
			NoAmount:  18500,
		},
	}
}

// marketCategories 静态分类表，GET /api/markets/categories/list 直接返回
func marketCategories() []string {
	return []string{"crypto", "sports", "politics", "entertainment", "science", "other"}
}
