package notifier

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"smart-signal-sentry/pkg/types"
)

var testTime = time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

func TestFormatSignal(t *testing.T) {
	cand := &types.SignalCandidate{
		Symbol:     "BTC/USDT",
		Direction:  types.DirectionLong,
		Score:      4,
		EntryPrice: 50123.4567,
		StopLoss:   49500,
		TakeProfit: 51370,
		RSI:        52.33,
		Volume:     1234.5,
		ComputedAt: testTime,
	}

	text := FormatSignal(cand)

	for _, want := range []string{
		"BTC/USDT",
		"LONG",
		"50123.4567",
		"49500",
		"51370",
		"Signal Score: 4/5",
		"2025-06-01 12:30:00 UTC",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("推送文本缺少 %q:\n%s", want, text)
		}
	}
}

func TestFormatSignalShortArrow(t *testing.T) {
	cand := &types.SignalCandidate{
		Symbol:    "ETH/USDT",
		Direction: types.DirectionShort,
	}

	text := FormatSignal(cand)
	if !strings.Contains(text, "📉") {
		t.Error("空头信号缺少下跌箭头")
	}
	if !strings.Contains(text, "SHORT") {
		t.Error("空头信号缺少方向标识")
	}
}

func TestFormatOutcomes(t *testing.T) {
	sig := &types.TrackedSignal{
		Symbol:     "BTC/USDT",
		Direction:  types.DirectionLong,
		EntryPrice: 100,
		StopLoss:   95,
		TakeProfit: 110,
		EmittedAt:  testTime,
	}

	invalidated := FormatInvalidated(sig, 94.5, testTime.Add(time.Hour))
	if !strings.Contains(invalidated, "Signal Invalidated") || !strings.Contains(invalidated, "94.5") {
		t.Errorf("失效文本异常:\n%s", invalidated)
	}

	closed := FormatClosed(sig, 110.5, testTime.Add(time.Hour))
	if !strings.Contains(closed, "Target Reached") || !strings.Contains(closed, "110.5") {
		t.Errorf("平仓文本异常:\n%s", closed)
	}
}

func TestFormatDailyReport(t *testing.T) {
	signals := []*types.TrackedSignal{
		{Symbol: "BTC/USDT", Direction: types.DirectionLong, Score: 5, EntryPrice: 100, StopLoss: 98, TakeProfit: 104, EmittedAt: testTime},
		{Symbol: "ETH/USDT", Direction: types.DirectionShort, Score: 3, EntryPrice: 200, StopLoss: 206, TakeProfit: 188, EmittedAt: testTime},
	}

	text := FormatDailyReport(signals, testTime)

	if !strings.Contains(text, "Daily Top Signals (2025-06-01 UTC)") {
		t.Errorf("日报缺少标题:\n%s", text)
	}
	// 序号与输入顺序一致
	if !strings.Contains(text, "1. 💹 BTC/USDT") || !strings.Contains(text, "2. 💹 ETH/USDT") {
		t.Errorf("日报序号异常:\n%s", text)
	}
}

func TestMultiNotifierPartialFailure(t *testing.T) {
	good := &recordingSink{name: "good"}
	bad := &recordingSink{name: "bad", fail: true}

	mn := NewMultiNotifier(bad, good)
	if err := mn.Send("subject", "text"); err != nil {
		t.Errorf("任一通道成功即应视为送达: %v", err)
	}
	if len(good.sent) != 1 {
		t.Error("正常通道未收到消息")
	}
}

func TestMultiNotifierAllFail(t *testing.T) {
	mn := NewMultiNotifier(
		&recordingSink{name: "a", fail: true},
		&recordingSink{name: "b", fail: true},
	)

	err := mn.Send("subject", "text")
	if err == nil {
		t.Fatal("所有通道失败时期望返回错误")
	}
	if _, ok := err.(*types.NotificationError); !ok {
		t.Errorf("期望NotificationError, 得到 %T", err)
	}
}

type recordingSink struct {
	name string
	fail bool
	sent []string
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Send(subject, _ string) error {
	if r.fail {
		return &types.NotificationError{Sink: r.name, Err: fmt.Errorf("模拟失败")}
	}
	r.sent = append(r.sent, subject)
	return nil
}
