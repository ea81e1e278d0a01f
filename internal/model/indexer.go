package model

// IndexerTrader 索引服务返回的交易员原始结构
type IndexerTrader struct {
	Address     string   `json:"address"`     // 钱包地址
	WinRate     float64  `json:"winRate"`     // 胜率 0-1
	TotalTrades int      `json:"totalTrades"` // 累计交易笔数
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	ProfitLoss  float64  `json:"profitLoss"` // 累计盈亏
	Volume      float64  `json:"volume"`     // 累计交易量
	Categories  []string `json:"categories"`
	LastActive  int64    `json:"lastActive"` // 最近活跃时间戳（毫秒）
}

// IndexerMarket 索引服务返回的市场原始结构
type IndexerMarket struct {
	MarketID  uint64  `json:"marketId"`
	Question  string  `json:"question"`
	Category  string  `json:"category"`
	EndTime   int64   `json:"endTime"` // 截止时间戳（毫秒）
	YesAmount float64 `json:"yesAmount"`
	NoAmount  float64 `json:"noAmount"`
	Resolved  bool    `json:"resolved"`
}

// IndexerTrade 索引服务返回的单笔成交
type IndexerTrade struct {
	Address    string  `json:"address"`
	MarketID   uint64  `json:"marketId"`
	Prediction bool    `json:"prediction"`
	Amount     float64 `json:"amount"`
	TxHash     string  `json:"txHash"`
	Timestamp  int64   `json:"timestamp"` // 毫秒
}
