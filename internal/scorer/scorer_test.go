package scorer

import (
	"math"
	"testing"
	"time"

	"smart-signal-sentry/pkg/types"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func defaultConfig() types.SignalConfig {
	return types.SignalConfig{
		ScoreThreshold:      3,
		MinVolumeMultiplier: 0.8,
	}
}

func candle(close, volume float64) types.Candle {
	return types.Candle{
		Symbol: "BTC/USDT",
		Close:  close,
		Volume: volume,
	}
}

func TestEvaluatePerfectLong(t *testing.T) {
	s := New(defaultConfig())

	// 五项判据全部满足的多头行情
	row := types.IndicatorRow{
		EMAFast: 105, EMAMid: 102, EMASlow: 100,
		RSI: 50, ATR: 2,
		MACD: 1.5, MACDSignal: 1.0,
		StochK: 60, StochD: 40,
		AvgVolume: 1000,
	}

	cand := s.Evaluate("BTC/USDT", row, candle(100, 1200), testTime)
	if cand == nil {
		t.Fatal("期望返回信号候选")
	}
	if cand.Direction != types.DirectionLong {
		t.Errorf("方向 = %s, 期望 LONG", cand.Direction)
	}
	if cand.Score != MaxScore {
		t.Errorf("分数 = %d, 期望满分 %d", cand.Score, MaxScore)
	}
	if cand.StopLoss != 100-2 {
		t.Errorf("止损 = %f, 期望 entry-ATR = 98", cand.StopLoss)
	}
	if cand.TakeProfit != 100+4 {
		t.Errorf("止盈 = %f, 期望 entry+2ATR = 104", cand.TakeProfit)
	}
	if cand.ComputedAt != testTime {
		t.Errorf("时间戳 = %v, 期望 %v", cand.ComputedAt, testTime)
	}
}

func TestEvaluatePerfectShort(t *testing.T) {
	s := New(defaultConfig())

	row := types.IndicatorRow{
		EMAFast: 95, EMAMid: 98, EMASlow: 100,
		RSI: 45, ATR: 3,
		MACD: -1.5, MACDSignal: -1.0,
		StochK: 30, StochD: 50,
		AvgVolume: 1000,
	}

	cand := s.Evaluate("ETH/USDT", row, candle(200, 1000), testTime)
	if cand == nil {
		t.Fatal("期望返回信号候选")
	}
	if cand.Direction != types.DirectionShort {
		t.Errorf("方向 = %s, 期望 SHORT", cand.Direction)
	}
	if cand.Score != MaxScore {
		t.Errorf("分数 = %d, 期望满分", cand.Score)
	}
	// 空头止损在上方，止盈在下方
	if cand.StopLoss != 200+3 {
		t.Errorf("止损 = %f, 期望 entry+ATR = 203", cand.StopLoss)
	}
	if cand.TakeProfit != 200-6 {
		t.Errorf("止盈 = %f, 期望 entry-2ATR = 194", cand.TakeProfit)
	}
}

func TestEvaluateVolumeFilter(t *testing.T) {
	s := New(defaultConfig())

	row := types.IndicatorRow{
		EMAFast: 105, EMAMid: 102, EMASlow: 100,
		RSI: 50, ATR: 2,
		MACD: 1.5, MACDSignal: 1.0,
		StochK: 60, StochD: 40,
		AvgVolume: 1000,
	}

	// 成交量低于 0.8×均量，满分行情也不进入打分
	if cand := s.Evaluate("BTC/USDT", row, candle(100, 700), testTime); cand != nil {
		t.Errorf("低成交量期望被过滤, 得到分数 %d", cand.Score)
	}

	// 恰好等于下限则放行
	if cand := s.Evaluate("BTC/USDT", row, candle(100, 800), testTime); cand == nil {
		t.Error("成交量等于下限时期望放行")
	}
}

func TestEvaluateNoDirection(t *testing.T) {
	s := New(defaultConfig())

	// EMA交错，没有形成方向排列
	row := types.IndicatorRow{
		EMAFast: 100, EMAMid: 105, EMASlow: 102,
		RSI: 50, ATR: 2,
		MACD: 1.5, MACDSignal: 1.0,
		StochK: 60, StochD: 40,
		AvgVolume: 1000,
	}

	if cand := s.Evaluate("BTC/USDT", row, candle(100, 1200), testTime); cand != nil {
		t.Error("EMA无方向排列时期望拒绝")
	}
}

func TestEvaluateBelowThreshold(t *testing.T) {
	s := New(defaultConfig())

	// 只有方向排列成立，其余判据全部落空: 分数1 < 阈值3
	row := types.IndicatorRow{
		EMAFast: 105, EMAMid: 102, EMASlow: 100,
		RSI: 75, ATR: 0,
		MACD: 0.5, MACDSignal: 1.0,
		StochK: 30, StochD: 50,
		AvgVolume: 1000,
	}

	if cand := s.Evaluate("BTC/USDT", row, candle(100, 1200), testTime); cand != nil {
		t.Errorf("分数不足期望拒绝, 得到分数 %d", cand.Score)
	}
}

func TestEvaluateATRFallbackLevels(t *testing.T) {
	s := New(defaultConfig())

	// ATR为零: 丢掉波动分但其余四项满足，分数4达标，风险水位退回固定比例
	row := types.IndicatorRow{
		EMAFast: 105, EMAMid: 102, EMASlow: 100,
		RSI: 50, ATR: 0,
		MACD: 1.5, MACDSignal: 1.0,
		StochK: 60, StochD: 40,
		AvgVolume: 1000,
	}

	cand := s.Evaluate("BTC/USDT", row, candle(100, 1200), testTime)
	if cand == nil {
		t.Fatal("期望返回信号候选")
	}
	if cand.Score != 4 {
		t.Errorf("分数 = %d, 期望 4", cand.Score)
	}
	if math.Abs(cand.StopLoss-99) > 1e-9 {
		t.Errorf("兜底止损 = %f, 期望 entry×0.99 = 99", cand.StopLoss)
	}
	if math.Abs(cand.TakeProfit-102) > 1e-9 {
		t.Errorf("兜底止盈 = %f, 期望 entry×1.02 = 102", cand.TakeProfit)
	}
}
