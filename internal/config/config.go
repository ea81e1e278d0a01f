package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Postgres PostgresConfig `mapstructure:"postgres"` // PostgreSQL配置
	Indexer  IndexerConfig  `mapstructure:"indexer"`  // 链上索引服务配置
	Chain    ChainConfig    `mapstructure:"chain"`    // 链上合约写入配置
	X402     X402Config     `mapstructure:"x402"`     // x402 代理开通服务配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// PostgresConfig PostgreSQL数据库配置
type PostgresConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// IndexerConfig 索引服务配置（读路径第一优先级数据源）
type IndexerConfig struct {
	BaseURL string `mapstructure:"base_url"` // API基础地址
	Timeout int    `mapstructure:"timeout"`  // 请求超时（秒）
	Proxy   string `mapstructure:"proxy"`    // 代理地址
}

// ChainConfig 链上写入配置（市场创建、下注）
type ChainConfig struct {
	RpcURL             string `mapstructure:"rpc_url"`              // RPC地址
	HubAddress         string `mapstructure:"hub_address"`          // CopyHub 合约地址
	OperatorPrivateKey string `mapstructure:"operator_private_key"` // 运营私钥，Gas 由运营账户支付
}

// X402Config x402 代理开通服务配置
type X402Config struct {
	BaseURL string `mapstructure:"base_url"` // Facilitator 基础地址
	APIKey  string `mapstructure:"api_key"`  // 认证Key
	Timeout int    `mapstructure:"timeout"`  // 请求超时（秒）
	Proxy   string `mapstructure:"proxy"`    // 代理地址
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("INDEXER_BASE_URL"); v != "" {
		cfg.Indexer.BaseURL = v
	}
	if v := os.Getenv("CHAIN_RPC_URL"); v != "" {
		cfg.Chain.RpcURL = v
	}
	if v := os.Getenv("CHAIN_OPERATOR_PRIVATE_KEY"); v != "" {
		cfg.Chain.OperatorPrivateKey = v
	}
	if v := os.Getenv("X402_API_KEY"); v != "" {
		cfg.X402.APIKey = v
	}
	if v := os.Getenv("X402_PROXY"); v != "" {
		cfg.X402.Proxy = v
	}
}
