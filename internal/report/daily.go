package report

import (
	"sort"
	"time"

	"go.uber.org/zap"
	"smart-signal-sentry/internal/notifier"
	"smart-signal-sentry/pkg/types"
)

const dateLayout = "2006-01-02"

// Aggregator 日报聚合器：每个UTC日历日最多发送一次信号汇总
type Aggregator struct {
	hourUTC int
	topN    int
}

// New 创建日报聚合器
func New(cfg types.ReportConfig) *Aggregator {
	return &Aggregator{
		hourUTC: cfg.DailyHourUTC,
		topN:    cfg.TopN,
	}
}

// MaybeSend 如果到达目标小时且当日尚未发送过，挑选分数最高的topN条
// 在跟踪信号发送日报。没有在跟踪的信号时跳过且不推进日期，
// 同一小时窗口内的下一次运行仍有机会补发；返回状态是否变更
func (a *Aggregator) MaybeSend(state *types.State, notify notifier.Interface, now time.Time) bool {
	utc := now.UTC()
	if utc.Hour() != a.hourUTC {
		return false
	}

	today := utc.Format(dateLayout)
	if state.LastDailyReportDate == today {
		return false
	}

	top := a.selectTop(state)
	if len(top) == 0 {
		zap.L().Info("📭 当前没有在跟踪的信号，跳过日报")
		return false
	}

	text := notifier.FormatDailyReport(top, utc)
	if err := notify.Send("Daily Top Signals", text); err != nil {
		zap.L().Warn("⚠️ 日报发送失败，日期不推进，稍后重试", zap.Error(err))
		return false
	}

	zap.L().Info("📊 日报已发送",
		zap.Int("signal_count", len(top)),
		zap.String("date", today))

	state.LastDailyReportDate = today
	return true
}

// selectTop 按分数降序选取topN条，分数相同时较新发出的排前
func (a *Aggregator) selectTop(state *types.State) []*types.TrackedSignal {
	signals := make([]*types.TrackedSignal, 0, len(state.TrackedSignals))
	for _, sig := range state.TrackedSignals {
		signals = append(signals, sig)
	}

	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		return signals[i].EmittedAt.After(signals[j].EmittedAt)
	})

	if len(signals) > a.topN {
		signals = signals[:a.topN]
	}
	return signals
}
