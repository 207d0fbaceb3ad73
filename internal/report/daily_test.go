package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"smart-signal-sentry/pkg/types"
)

// fakeNotifier 记录发送过的通知
type fakeNotifier struct {
	texts []string
	fail  bool
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Send(_, text string) error {
	if f.fail {
		return &types.NotificationError{Sink: "fake", Err: fmt.Errorf("模拟失败")}
	}
	f.texts = append(f.texts, text)
	return nil
}

func defaultAggregator() *Aggregator {
	return New(types.ReportConfig{DailyHourUTC: 20, TopN: 8})
}

func addSignal(state *types.State, symbol string, score int, emittedAt time.Time) {
	state.TrackedSignals[symbol] = &types.TrackedSignal{
		Symbol:     symbol,
		Direction:  types.DirectionLong,
		Score:      score,
		EntryPrice: 100,
		StopLoss:   98,
		TakeProfit: 104,
		EmittedAt:  emittedAt,
	}
}

func TestMaybeSendWrongHour(t *testing.T) {
	a := defaultAggregator()
	state := types.NewState()
	addSignal(state, "BTC/USDT", 5, time.Now())

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notify := &fakeNotifier{}

	if a.MaybeSend(state, notify, now) {
		t.Error("非目标小时不应发送日报")
	}
	if len(notify.texts) != 0 {
		t.Error("非目标小时发出了通知")
	}
}

func TestMaybeSendOncePerDate(t *testing.T) {
	a := defaultAggregator()
	state := types.NewState()
	addSignal(state, "BTC/USDT", 5, time.Now())

	now := time.Date(2025, 6, 1, 20, 5, 0, 0, time.UTC)
	notify := &fakeNotifier{}

	if !a.MaybeSend(state, notify, now) {
		t.Fatal("目标小时首次调用期望发送")
	}
	if state.LastDailyReportDate != "2025-06-01" {
		t.Errorf("日期 = %q, 期望 2025-06-01", state.LastDailyReportDate)
	}

	// 同一小时内再次运行不重发
	if a.MaybeSend(state, notify, now.Add(30*time.Minute)) {
		t.Error("同日第二次调用不应重发")
	}
	if len(notify.texts) != 1 {
		t.Errorf("通知次数 = %d, 期望 1", len(notify.texts))
	}

	// 次日同一小时再次发送
	if !a.MaybeSend(state, notify, now.Add(24*time.Hour)) {
		t.Error("次日期望再次发送")
	}
}

func TestMaybeSendEmptySkipsWithoutAdvancingDate(t *testing.T) {
	a := defaultAggregator()
	state := types.NewState()

	now := time.Date(2025, 6, 1, 20, 5, 0, 0, time.UTC)
	notify := &fakeNotifier{}

	if a.MaybeSend(state, notify, now) {
		t.Error("无在跟踪信号时不应发送")
	}
	// 日期不推进，同一窗口内后续运行仍可补发
	if state.LastDailyReportDate != "" {
		t.Errorf("空日报推进了日期: %q", state.LastDailyReportDate)
	}

	addSignal(state, "BTC/USDT", 4, now.Add(-time.Hour))
	if !a.MaybeSend(state, notify, now.Add(10*time.Minute)) {
		t.Error("同一窗口内出现信号后期望补发")
	}
}

func TestMaybeSendFailureKeepsDate(t *testing.T) {
	a := defaultAggregator()
	state := types.NewState()
	addSignal(state, "BTC/USDT", 5, time.Now())

	now := time.Date(2025, 6, 1, 20, 5, 0, 0, time.UTC)

	if a.MaybeSend(state, &fakeNotifier{fail: true}, now) {
		t.Error("发送失败不应视为状态变更")
	}
	if state.LastDailyReportDate != "" {
		t.Error("发送失败推进了日期")
	}
}

func TestSelectTopOrderingAndCap(t *testing.T) {
	a := defaultAggregator()
	state := types.NewState()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	// 10个信号，分数3-5混合，超出topN=8
	for i := 0; i < 10; i++ {
		addSignal(state, fmt.Sprintf("SYM%d/USDT", i), 3+i%3, base.Add(time.Duration(i)*time.Minute))
	}

	top := a.selectTop(state)
	if len(top) != 8 {
		t.Fatalf("选取数量 = %d, 期望 8", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Errorf("分数未按降序: top[%d]=%d > top[%d]=%d", i, top[i].Score, i-1, top[i-1].Score)
		}
		// 同分时较新发出的排前
		if top[i].Score == top[i-1].Score && top[i].EmittedAt.After(top[i-1].EmittedAt) {
			t.Errorf("同分信号未按发出时间降序排列")
		}
	}
}

func TestDailyReportContent(t *testing.T) {
	a := defaultAggregator()
	state := types.NewState()
	addSignal(state, "BTC/USDT", 5, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	addSignal(state, "ETH/USDT", 3, time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	notify := &fakeNotifier{}

	if !a.MaybeSend(state, notify, now) {
		t.Fatal("期望发送日报")
	}

	text := notify.texts[0]
	if !strings.Contains(text, "BTC/USDT") || !strings.Contains(text, "ETH/USDT") {
		t.Errorf("日报缺少交易对: %s", text)
	}
	// 高分信号排在前面
	if strings.Index(text, "BTC/USDT") > strings.Index(text, "ETH/USDT") {
		t.Error("日报中高分信号未排在前面")
	}
}
