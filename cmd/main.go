package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"smart-signal-sentry/pkg/config"
	"smart-signal-sentry/pkg/logger"
)

func main() {
	// 加载.env（不存在则忽略，便于容器环境直接用环境变量）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	// 初始化日志
	appLogger := logger.Init(cfg.Log)
	defer appLogger.Sync()

	zap.L().Info("🚀 Smart Signal Sentry 启动中...",
		zap.Strings("symbols", cfg.Signal.Symbols),
		zap.String("timeframe", cfg.Signal.Timeframe),
		zap.Bool("loop", cfg.Run.Loop))

	app := NewApp(cfg)
	if err := app.Start(); err != nil {
		zap.L().Fatal("❌ 启动失败", zap.Error(err))
	}

	app.WaitForShutdown()
	app.Stop()
}
