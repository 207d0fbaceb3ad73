package notifier

import (
	"fmt"

	"go.uber.org/zap"
	"smart-signal-sentry/pkg/types"
)

// Interface 通知接口，所有通道只负责把文本送出去
type Interface interface {
	Send(subject, text string) error
	Name() string
}

// ConsoleNotifier 控制台通知器（未配置任何通道时的兜底）
type ConsoleNotifier struct{}

func NewConsoleNotifier() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (cn *ConsoleNotifier) Name() string { return "console" }

func (cn *ConsoleNotifier) Send(subject, text string) error {
	fmt.Printf("\n===== %s =====\n%s\n\n", subject, text)
	return nil
}

// MultiNotifier 多通道扇出：任一通道成功即视为送达
// 单个通道失败只记日志，不影响其他通道
type MultiNotifier struct {
	sinks []Interface
}

func NewMultiNotifier(sinks ...Interface) *MultiNotifier {
	return &MultiNotifier{sinks: sinks}
}

func (mn *MultiNotifier) Name() string { return "multi" }

func (mn *MultiNotifier) Send(subject, text string) error {
	if len(mn.sinks) == 0 {
		return &types.NotificationError{Sink: "multi", Err: fmt.Errorf("没有可用的通知通道")}
	}

	delivered := false
	for _, sink := range mn.sinks {
		if err := sink.Send(subject, text); err != nil {
			zap.L().Warn("⚠️ 通知通道发送失败",
				zap.String("sink", sink.Name()),
				zap.Error(err))
			continue
		}
		delivered = true
	}

	if !delivered {
		return &types.NotificationError{Sink: "multi", Err: fmt.Errorf("所有通道均发送失败")}
	}
	return nil
}

// Build 根据配置组装通知链：Telegram + 邮件，都未配置时退回控制台
func Build(cfg *types.Config) Interface {
	var sinks []Interface

	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		sinks = append(sinks, NewTelegramNotifier(cfg.Telegram, cfg.Network.Timeout))
		zap.L().Info("✅ 已配置Telegram通知通道")
	}

	if cfg.Email.From != "" && cfg.Email.Password != "" && cfg.Email.To != "" {
		sinks = append(sinks, NewEmailNotifier(cfg.Email))
		zap.L().Info("✅ 已配置邮件通知通道")
	}

	if len(sinks) == 0 {
		zap.L().Info("🔧 未配置任何通知通道，使用控制台输出模式")
		return NewConsoleNotifier()
	}

	return NewMultiNotifier(sinks...)
}
