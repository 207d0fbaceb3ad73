package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"smart-signal-sentry/internal/engine"
	"smart-signal-sentry/internal/fetcher"
	"smart-signal-sentry/internal/notifier"
	"smart-signal-sentry/internal/pricefeed"
	"smart-signal-sentry/internal/storage"
	"smart-signal-sentry/pkg/types"
)

// App 应用程序管理器
type App struct {
	config *types.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	archive   *storage.Archive
	priceFeed *pricefeed.Client
	done      chan struct{} // 单次模式运行完毕后关闭
}

// NewApp 创建应用程序实例
func NewApp(config *types.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		config: config,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start 组装各模块并启动引擎
func (app *App) Start() error {
	market := fetcher.New(app.config.Network)
	notify := notifier.Build(app.config)
	store := app.buildStateStore()

	// MySQL信号归档（可选）
	if app.config.Database.ArchiveEnabled {
		archive, err := storage.NewArchive(app.config.Database.MySQL)
		if err != nil {
			zap.L().Warn("⚠️ 信号归档初始化失败，跳过归档", zap.Error(err))
		} else {
			app.archive = archive
		}
	}

	// WebSocket实时价格（仅循环模式有意义）
	if app.config.PriceFeed.Enabled && app.config.Run.Loop {
		feed := pricefeed.NewClient(app.config.Signal.Symbols, pricefeed.Options{
			Endpoint:             app.config.PriceFeed.Endpoint,
			Proxy:                app.config.Network.Proxy,
			ReconnectInterval:    app.config.PriceFeed.ReconnectInterval,
			PingInterval:         app.config.PriceFeed.PingInterval,
			MaxReconnectAttempts: app.config.PriceFeed.MaxReconnectAttempts,
		})
		if err := feed.Connect(); err != nil {
			zap.L().Warn("⚠️ 实时价格连接失败，复查将使用REST", zap.Error(err))
		} else {
			feed.Start()
			app.priceFeed = feed
		}
	}

	eng := engine.New(app.config, market, notify, store, app.archive, app.priceFeed)

	if err := notify.Send("Sentry Online",
		"🤖 Smart Signal Sentry is online.\n⏰ "+time.Now().UTC().Format("2006-01-02 15:04:05")+" UTC"); err != nil {
		zap.L().Warn("⚠️ 上线通知发送失败", zap.Error(err))
	}

	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer close(app.done)

		if app.config.Run.Loop {
			if err := eng.RunLoop(app.ctx); err != nil && err != context.Canceled {
				zap.L().Error("❌ 循环运行异常退出", zap.Error(err))
			}
			return
		}

		if err := eng.Run(app.ctx, time.Now()); err != nil {
			zap.L().Error("❌ 本轮扫描失败", zap.Error(err))
		}
	}()

	zap.L().Info("✅ Smart Signal Sentry 已启动")
	return nil
}

// buildStateStore 根据配置选择状态后端，Redis不可用时降级为文件
func (app *App) buildStateStore() storage.StateStore {
	if app.config.State.Backend == "redis" {
		store, err := storage.NewRedisStateStore(app.config.Redis)
		if err != nil {
			zap.L().Warn("⚠️ Redis状态存储不可用，降级为文件存储", zap.Error(err))
		} else {
			return store
		}
	}
	return storage.NewFileStateStore(app.config.State.FilePath)
}

// WaitForShutdown 阻塞等待中断信号或运行结束
func (app *App) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zap.L().Info("🛑 收到停止信号")
	case <-app.done:
		zap.L().Info("运行结束")
	}
}

// Stop 优雅关闭
func (app *App) Stop() {
	zap.L().Info("🛑 正在优雅关闭...")
	app.cancel()

	// 等待所有goroutine结束，最多等待30秒
	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		zap.L().Warn("⚠️ 强制关闭超时")
	}

	if app.priceFeed != nil {
		app.priceFeed.Close()
	}
	if app.archive != nil {
		app.archive.Close()
	}

	zap.L().Info("✅ Smart Signal Sentry 已安全关闭")
}
