package model

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	WalletAddress string    `gorm:"column:wallet_address;type:varchar(64);uniqueIndex;not null;comment:用户钱包地址（统一小写）"`
	IsPublic      bool      `gorm:"column:is_public;type:boolean;default:true;comment:是否公开展示"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt     time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

type TraderProfile struct {
	ID           uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	UserID       uint64         `gorm:"column:user_id;type:bigint;uniqueIndex;not null;comment:关联用户ID"`
	WinRate      float64        `gorm:"column:win_rate;type:numeric(8,4);default:0;comment:胜率 0-1"`
	TotalTrades  int            `gorm:"column:total_trades;type:int;default:0;comment:累计交易笔数"`
	Wins         int            `gorm:"column:wins;type:int;default:0;comment:盈利笔数"`
	Losses       int            `gorm:"column:losses;type:int;default:0;comment:亏损笔数"`
	ProfitLoss   float64        `gorm:"column:profit_loss;type:numeric(18,6);default:0;comment:累计盈亏"`
	Volume       float64        `gorm:"column:volume;type:numeric(18,6);default:0;comment:累计交易量"`
	Categories   datatypes.JSON `gorm:"column:categories;type:jsonb;comment:擅长分类标签"`
	LastActiveAt *time.Time     `gorm:"column:last_active_at;type:timestamp;comment:最近活跃时间"`
	CreatedAt    time.Time      `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

type Market struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	MarketID  uint64    `gorm:"column:market_id;uniqueIndex;not null;comment:链上市场ID"`
	Question  string    `gorm:"column:question;type:varchar(512);not null;comment:预测问题"`
	Category  string    `gorm:"column:category;type:varchar(32);not null;comment:分类"`
	EndTime   time.Time `gorm:"column:end_time;type:timestamp;not null;comment:截止时间"`
	YesAmount float64   `gorm:"column:yes_amount;type:numeric(18,6);default:0;comment:YES方总注额"`
	NoAmount  float64   `gorm:"column:no_amount;type:numeric(18,6);default:0;comment:NO方总注额"`
	Resolved  bool      `gorm:"column:resolved;type:boolean;default:false;comment:是否已结算"`
	Creator   string    `gorm:"column:creator;type:varchar(64);comment:创建者钱包地址"`
	TxHash    string    `gorm:"column:tx_hash;type:varchar(66);comment:创建交易哈希"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:now();comment:创建时间"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:now();comment:更新时间"`
}

// Trade 单笔下注记录，外部链上交易成功后本地镜像一行
type Trade struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     uint64    `gorm:"column:user_id;type:bigint;index;not null"`
	UserWallet string    `gorm:"column:user_wallet;type:varchar(64);not null"`
	MarketID   uint64    `gorm:"column:market_id;index;not null"`
	Prediction bool      `gorm:"column:prediction;type:boolean;not null"` // true=YES false=NO
	Amount     float64   `gorm:"column:amount;type:numeric(18,6);not null"`
	TxHash     string    `gorm:"column:tx_hash;type:varchar(66);uniqueIndex;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (User) TableName() string          { return "users" }
func (TraderProfile) TableName() string { return "trader_profiles" }
func (Market) TableName() string        { return "markets" }
func (Trade) TableName() string         { return "trades" }
