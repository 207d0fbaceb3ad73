package types

import "time"

// Config 主配置结构
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Signal    SignalConfig    `mapstructure:"signal"`
	Report    ReportConfig    `mapstructure:"report"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Email     EmailConfig     `mapstructure:"email"`
	State     StateConfig     `mapstructure:"state"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Network   NetworkConfig   `mapstructure:"network"`
	Run       RunConfig       `mapstructure:"run"`
	PriceFeed PriceFeedConfig `mapstructure:"pricefeed"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`       // 日志级别
	FilePath   string `mapstructure:"file_path"`   // 日志输出路径名
	MaxSize    int    `mapstructure:"max_size"`    // 日志文件大小 单位：MB，超限后会自动切割
	MaxAge     int    `mapstructure:"max_age"`     // 日志文件存放时间 单位：天
	MaxBackups int    `mapstructure:"max_backups"` // 日志文件备份数量
	Compress   bool   `mapstructure:"compress"`    // 日志文件压缩
}

// SignalConfig 信号分析配置
type SignalConfig struct {
	Symbols             []string      `mapstructure:"symbols"`               // 交易对列表，如 BTC/USDT
	Timeframe           string        `mapstructure:"timeframe"`             // K线周期，如 1h
	OHLCVLimit          int           `mapstructure:"ohlcv_limit"`           // 拉取K线数量，默认200
	ScoreThreshold      int           `mapstructure:"score_threshold"`       // 最低信号分数，默认3
	CooldownHours       int           `mapstructure:"cooldown_hours"`        // 同一交易对冷却时间，默认4小时
	MinVolumeMultiplier float64       `mapstructure:"min_volume_multiplier"` // 成交量过滤倍数，默认0.8
	MaxTracked          int           `mapstructure:"max_tracked"`           // 同时跟踪的信号上限，默认50
	PerRunCap           int           `mapstructure:"per_run_cap"`           // 单次运行最多发出的信号数，默认2
	PaceDelay           time.Duration `mapstructure:"pace_delay"`            // 交易对之间的请求间隔，默认800ms
}

// ReportConfig 日报配置
type ReportConfig struct {
	DailyHourUTC int `mapstructure:"daily_hour_utc"` // 日报发送的UTC小时，默认20
	TopN         int `mapstructure:"top_n"`          // 日报信号数量上限，默认8
}

// TelegramConfig Telegram机器人配置
type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// EmailConfig SMTP邮件配置
type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
	To       string `mapstructure:"to"`
}

// StateConfig 状态存储配置
type StateConfig struct {
	Backend  string `mapstructure:"backend"`   // file 或 redis
	FilePath string `mapstructure:"file_path"` // 状态文件路径
}

// RedisConfig Redis配置
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	ArchiveEnabled bool        `mapstructure:"archive_enabled"` // 是否归档信号到MySQL
	MySQL          MySQLConfig `mapstructure:"mysql"`
}

// MySQLConfig MySQL配置
type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// NetworkConfig 网络配置
type NetworkConfig struct {
	Proxy   string        `mapstructure:"proxy"`   // HTTP代理地址，如 http://127.0.0.1:7890
	Timeout time.Duration `mapstructure:"timeout"` // 网络超时时间
}

// RunConfig 运行模式配置
type RunConfig struct {
	Loop          bool          `mapstructure:"loop"`           // true时循环运行直到到达时限
	Interval      time.Duration `mapstructure:"interval"`       // 循环模式下两轮之间的间隔
	Duration      time.Duration `mapstructure:"duration"`       // 循环模式总时长
	RetryInterval time.Duration `mapstructure:"retry_interval"` // 一轮失败后的重试等待
}

// PriceFeedConfig 实时价格推送配置（循环模式可选）
type PriceFeedConfig struct {
	Enabled              bool          `mapstructure:"enabled"`
	Endpoint             string        `mapstructure:"endpoint"`
	ReconnectInterval    time.Duration `mapstructure:"reconnect_interval"`
	PingInterval         time.Duration `mapstructure:"ping_interval"`
	MaxReconnectAttempts int           `mapstructure:"max_reconnect_attempts"`
}
