package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
	"smart-signal-sentry/pkg/types"
)

// Load 加载配置
func Load() (*types.Config, error) {
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// 设置默认值
	setDefaults()

	// 读取环境变量
	viper.AutomaticEnv()

	// 优先尝试读取本地配置文件
	viper.SetConfigName("config.local")
	if err := viper.ReadInConfig(); err != nil {
		// 如果本地配置文件不存在，尝试读取默认配置文件
		viper.SetConfigName("config")
		if err := viper.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, err
			}
		}
	}

	var config types.Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file_path", "logs")
	viper.SetDefault("log.max_size", 200)
	viper.SetDefault("log.max_age", 30)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.compress", false)

	viper.SetDefault("signal.symbols", []string{"BTC/USDT", "ETH/USDT", "BNB/USDT", "SOL/USDT", "ADA/USDT"})
	viper.SetDefault("signal.timeframe", "1h")
	viper.SetDefault("signal.ohlcv_limit", 200)
	viper.SetDefault("signal.score_threshold", 3)
	viper.SetDefault("signal.cooldown_hours", 4)
	viper.SetDefault("signal.min_volume_multiplier", 0.8)
	viper.SetDefault("signal.max_tracked", 50)
	viper.SetDefault("signal.per_run_cap", 2)
	viper.SetDefault("signal.pace_delay", 800*time.Millisecond)

	viper.SetDefault("report.daily_hour_utc", 20)
	viper.SetDefault("report.top_n", 8)

	viper.SetDefault("telegram.bot_token", "")
	viper.SetDefault("telegram.chat_id", "")
	viper.SetDefault("email.smtp_host", "smtp.gmail.com")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.from", "")
	viper.SetDefault("email.password", "")
	viper.SetDefault("email.to", "")

	viper.SetDefault("state.backend", "file")
	viper.SetDefault("state.file_path", "signal_state.json")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("database.archive_enabled", false)
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", 3306)
	viper.SetDefault("database.mysql.max_idle_conns", 5)
	viper.SetDefault("database.mysql.max_open_conns", 20)

	viper.SetDefault("network.proxy", "")
	viper.SetDefault("network.timeout", 15*time.Second)

	viper.SetDefault("run.loop", false)
	viper.SetDefault("run.interval", 15*time.Minute)
	viper.SetDefault("run.duration", 6*time.Hour)
	viper.SetDefault("run.retry_interval", time.Minute)

	viper.SetDefault("pricefeed.enabled", false)
	viper.SetDefault("pricefeed.endpoint", "wss://ws.okx.com:8443/ws/v5/public")
	viper.SetDefault("pricefeed.reconnect_interval", 5*time.Second)
	viper.SetDefault("pricefeed.ping_interval", 20*time.Second)
	viper.SetDefault("pricefeed.max_reconnect_attempts", 10)
}
