package conf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// 配置加载（服务端口、Hyperliquid 接口、builder 地址等）

type Db struct {
	DbName   string `yaml:"dbname"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	FileName   string `yaml:"file-name"`
	TimeFormat string `yaml:"time-format"`
	MaxSize    int    `yaml:"max-size"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"`
	Compress   bool   `yaml:"compress"`
	LocalTime  bool   `yaml:"local-time"`
	Console    bool   `yaml:"console"`
}

// RedisConfig is used to configure redis
type RedisConfig struct {
	Addr         string `yaml:"address"`
	Password     string `yaml:"password"`
	Db           int    `yaml:"db"`
	PoolSize     int    `yaml:"pool-size"`
	MinIdleConns int    `yaml:"min-idle-conns"`
	IdleTimeout  int    `yaml:"idle-timeout"`
}

type KafkaConfig struct {
	Broker string `yaml:"broker"`
}

// Hyperliquid 公共 API 配置
type HyperliquidConfig struct {
	ApiURL     string        `yaml:"api-url"`     // /info 接口地址
	StatsURL   string        `yaml:"stats-url"`   // stats-data 文件服务地址（builder CSV）
	Timeout    time.Duration `yaml:"timeout"`     // 单次请求超时
	MaxRetries int           `yaml:"max-retries"` // 429/网络错误的最大重试次数
}

// 目标 builder 的归因配置
type BuilderConfig struct {
	Address       string `yaml:"address"`         // builder 钱包地址
	MatchWindowMs int64  `yaml:"match-window-ms"` // 撮合时间容差，默认 1000ms
	Concurrency   int    `yaml:"concurrency"`     // 排行榜每用户并发上限
	CsvCacheSize  int    `yaml:"csv-cache-size"`  // 按日期缓存的 CSV 份数
}

type Config struct {
	AppName      string `yaml:"app_name"`
	Listen       string `yaml:"listen"`
	Mode         string `yaml:"mode"`
	MaxPingCount int    `yaml:"max-ping-count"`

	Db          `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Hyperliquid HyperliquidConfig `yaml:"hyperliquid"`
	Builder     BuilderConfig     `yaml:"builder"`
}

var AppConfig Config

func LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Read config file error %w", err)
	}
	if err := yaml.Unmarshal(data, &AppConfig); err != nil {
		return fmt.Errorf("Unmarshal config yaml error: %w", err)
	}
	applyDefaults(&AppConfig)
	return nil
}

func applyDefaults(c *Config) {
	if c.Hyperliquid.ApiURL == "" {
		c.Hyperliquid.ApiURL = "https://api.hyperliquid.xyz"
	}
	if c.Hyperliquid.StatsURL == "" {
		c.Hyperliquid.StatsURL = "https://stats-data.hyperliquid.xyz/Mainnet"
	}
	if c.Hyperliquid.Timeout <= 0 {
		c.Hyperliquid.Timeout = 30 * time.Second
	}
	if c.Hyperliquid.MaxRetries <= 0 {
		c.Hyperliquid.MaxRetries = 5
	}
	if c.Builder.MatchWindowMs <= 0 {
		c.Builder.MatchWindowMs = 1000
	}
	if c.Builder.Concurrency <= 0 {
		c.Builder.Concurrency = 8
	}
	if c.Builder.CsvCacheSize <= 0 {
		c.Builder.CsvCacheSize = 64
	}
}
