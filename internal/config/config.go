package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
	KakaoPay KakaoPayConfig `mapstructure:"kakaopay"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	ID       IDConfig       `mapstructure:"id"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	LogLevel string `mapstructure:"log_level"` // silent, error, warn, info
}

type TaskConfig struct {
	Interval          int `mapstructure:"interval"`           // 秒, 项目状态任务
	ExpiryInterval    int `mapstructure:"expiry_interval"`    // 秒, 过期待支付捐款扫描
	ReconcileInterval int `mapstructure:"reconcile_interval"` // 秒, 聚合对账
	ExpiryBatchSize   int `mapstructure:"expiry_batch_size"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

// KakaoPayConfig KakaoPay 网关配置
type KakaoPayConfig struct {
	SecretKey   string `mapstructure:"secret_key"`
	CID         string `mapstructure:"cid"`
	ReadyURL    string `mapstructure:"ready_url"`
	ApproveURL  string `mapstructure:"approve_url"`
	ApprovalURL string `mapstructure:"approval_url"` // 支付成功回跳地址
	CancelURL   string `mapstructure:"cancel_url"`   // 用户取消回跳地址
	FailURL     string `mapstructure:"fail_url"`     // 支付失败回跳地址
}

// PaymentConfig 支付生命周期配置
type PaymentConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`     // 单次网关调用超时
	PendingTTL time.Duration `mapstructure:"pending_ttl"` // 待支付捐款的过期时间
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// StorageConfig 文件存储配置
type StorageConfig struct {
	Driver   string `mapstructure:"driver"` // local, s3
	LocalDir string `mapstructure:"local_dir"`
	BaseURL  string `mapstructure:"base_url"`
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
}

type NotifyConfig struct {
	PoolSize       int    `mapstructure:"pool_size"`
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

type IDConfig struct {
	Node int64 `mapstructure:"node"` // snowflake 节点号
}

func Load() *Config {
	// .env 文件是可选的
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded: %v", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/donation")

	setDefaults()

	// 自动读取环境变量, 例如 DATABASE_HOST, KAKAOPAY_SECRET_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "donation")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.log_level", "warn")
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("task.expiry_interval", 300)
	viper.SetDefault("task.reconcile_interval", 3600)
	viper.SetDefault("task.expiry_batch_size", 100)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")
	viper.SetDefault("kakaopay.cid", "TC0ONETIME")
	viper.SetDefault("kakaopay.ready_url", "https://open-api.kakaopay.com/online/v1/payment/ready")
	viper.SetDefault("kakaopay.approve_url", "https://open-api.kakaopay.com/online/v1/payment/approve")
	viper.SetDefault("kakaopay.approval_url", "http://localhost:3000/payment/success")
	viper.SetDefault("kakaopay.cancel_url", "http://localhost:3000/payment/cancel")
	viper.SetDefault("kakaopay.fail_url", "http://localhost:3000/payment/fail")
	viper.SetDefault("payment.timeout", "10s")
	viper.SetDefault("payment.pending_ttl", "30m")
	viper.SetDefault("storage.driver", "local")
	viper.SetDefault("storage.local_dir", "uploads")
	viper.SetDefault("storage.base_url", "/uploads")
	viper.SetDefault("storage.region", "ap-northeast-2")
	viper.SetDefault("notify.pool_size", 16)
	viper.SetDefault("id.node", 1)
}
