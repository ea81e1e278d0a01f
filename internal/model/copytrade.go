package model

import (
	"time"

	"gorm.io/datatypes"
)

// CopyTrade 跟单关系：follower 跟随 trader，可按分类过滤、限制单笔金额与最大跟单次数
// 不做硬删除，停用即 active=false
type CopyTrade struct {
	ID         uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	FollowerID uint64         `gorm:"column:follower_id;type:bigint;index;not null;comment:跟单人用户ID"`
	TraderID   uint64         `gorm:"column:trader_id;type:bigint;index;not null;comment:被跟单人用户ID"`
	Amount     float64        `gorm:"column:amount;type:numeric(18,6);not null;comment:单笔跟单金额"`
	Categories datatypes.JSON `gorm:"column:categories;type:jsonb;comment:分类过滤"`
	MaxTrades  *int           `gorm:"column:max_trades;comment:最大跟单次数，空为不限"`
	Active     bool           `gorm:"column:active;type:boolean;default:true"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// Agent x402 委托代理：代表 follower 在限额内自动执行跟单
// 外部开通失败时本地生成占位记录并标记 demo=true
type Agent struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerID          uint64    `gorm:"column:owner_id;type:bigint;index;not null;comment:所属用户ID"`
	OwnerWallet      string    `gorm:"column:owner_wallet;type:varchar(64);not null"`
	TraderAddress    string    `gorm:"column:trader_address;type:varchar(64);comment:被跟单钱包地址"`
	AgentAddress     string    `gorm:"column:agent_address;type:varchar(64);not null;comment:代理链上地址"`
	PerTradeLimit    float64   `gorm:"column:per_trade_limit;type:numeric(18,6);not null;comment:单笔限额"`
	TotalLimit       float64   `gorm:"column:total_limit;type:numeric(18,6);not null;comment:总限额"`
	AuthorizedAmount float64   `gorm:"column:authorized_amount;type:numeric(18,6);default:0;comment:已授权金额"`
	SpentAmount      float64   `gorm:"column:spent_amount;type:numeric(18,6);default:0;comment:已消费金额"`
	Active           bool      `gorm:"column:active;type:boolean;default:true"`
	Demo             bool      `gorm:"column:demo;type:boolean;default:false;comment:外部开通失败的占位记录"`
	CreatedAt        time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt        time.Time `gorm:"column:updated_at;type:timestamp;default:now()"`
}

// AgentExecution 代理执行流水（跟单执行历史），由 x402 webhook 上报落库
type AgentExecution struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	AgentID     uint64    `gorm:"column:agent_id;type:bigint;index;not null"`
	CopyTradeID *uint64   `gorm:"column:copy_trade_id;type:bigint;index;comment:关联跟单关系，可空"`
	MarketID    uint64    `gorm:"column:market_id;not null"`
	Prediction  bool      `gorm:"column:prediction;type:boolean;not null"`
	Amount      float64   `gorm:"column:amount;type:numeric(18,6);not null"`
	TxHash      string    `gorm:"column:tx_hash;type:varchar(66);uniqueIndex;not null"`
	Status      string    `gorm:"column:status;type:varchar(16);default:'executed'"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (CopyTrade) TableName() string      { return "copy_trades" }
func (Agent) TableName() string          { return "agents" }
func (AgentExecution) TableName() string { return "agent_executions" }
