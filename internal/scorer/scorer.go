package scorer

import (
	"time"

	"go.uber.org/zap"
	"smart-signal-sentry/pkg/types"
)

// MaxScore 信号满分
const MaxScore = 5

// RSI中性区间：不追超买超卖，接受中等风险
const (
	rsiBandLow  = 40.0
	rsiBandHigh = 60.0
)

// ATR不可用时的兜底止损/止盈比例
const (
	fallbackStopPct   = 0.01
	fallbackTargetPct = 0.02
)

// Scorer 信号打分器，纯计算无I/O，同一输入恒定输出
type Scorer struct {
	scoreThreshold      int
	minVolumeMultiplier float64
}

// New 创建打分器
func New(cfg types.SignalConfig) *Scorer {
	return &Scorer{
		scoreThreshold:      cfg.ScoreThreshold,
		minVolumeMultiplier: cfg.MinVolumeMultiplier,
	}
}

// Evaluate 对最新指标行打分，返回信号候选，未达标返回nil
// 所有判据都基于同一行指标，分数累计0-5：
//  1. EMA方向排列（同时确定LONG/SHORT方向，无方向直接拒绝）
//  2. RSI处于[40,60]中性区间
//  3. ATR > 0（存在可测波动）
//  4. MACD与方向一致
//  5. 随机指标与方向一致
func (s *Scorer) Evaluate(symbol string, row types.IndicatorRow, latest types.Candle, now time.Time) *types.SignalCandidate {
	// 成交量前置过滤：流动性不足不进入打分
	if latest.Volume < s.minVolumeMultiplier*row.AvgVolume {
		zap.L().Debug("成交量不足，跳过打分",
			zap.String("symbol", symbol),
			zap.Float64("volume", latest.Volume),
			zap.Float64("avg_volume", row.AvgVolume))
		return nil
	}

	score := 0
	direction := ""

	// 1. EMA方向排列
	switch {
	case row.EMAFast > row.EMAMid && row.EMAMid > row.EMASlow:
		direction = types.DirectionLong
		score++
	case row.EMAFast < row.EMAMid && row.EMAMid < row.EMASlow:
		direction = types.DirectionShort
		score++
	default:
		// 没有建立方向，其余判据无意义
		zap.L().Debug("EMA未形成方向排列", zap.String("symbol", symbol))
		return nil
	}

	// 2. RSI中性区间
	if row.RSI >= rsiBandLow && row.RSI <= rsiBandHigh {
		score++
	}

	// 3. 存在可测波动
	if row.ATR > 0 {
		score++
	}

	// 4. MACD确认方向
	if (direction == types.DirectionLong && row.MACD > row.MACDSignal) ||
		(direction == types.DirectionShort && row.MACD < row.MACDSignal) {
		score++
	}

	// 5. 随机指标确认方向
	if (direction == types.DirectionLong && row.StochK > row.StochD) ||
		(direction == types.DirectionShort && row.StochK < row.StochD) {
		score++
	}

	if score < s.scoreThreshold {
		zap.L().Debug("信号分数不足",
			zap.String("symbol", symbol),
			zap.Int("score", score),
			zap.Int("threshold", s.scoreThreshold))
		return nil
	}

	price := latest.Close
	stopLoss, takeProfit := riskLevels(direction, price, row.ATR)

	return &types.SignalCandidate{
		Symbol:     symbol,
		Direction:  direction,
		Score:      score,
		EntryPrice: price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
		RSI:        row.RSI,
		Volume:     latest.Volume,
		ComputedAt: now,
	}
}

// riskLevels 计算止损/止盈：基于ATR，ATR为零时退回固定比例
// 信号永远携带风险水位
func riskLevels(direction string, price, atr float64) (stopLoss, takeProfit float64) {
	if atr <= 0 {
		if direction == types.DirectionLong {
			return price * (1 - fallbackStopPct), price * (1 + fallbackTargetPct)
		}
		return price * (1 + fallbackStopPct), price * (1 - fallbackTargetPct)
	}

	if direction == types.DirectionLong {
		return price - atr, price + 2*atr
	}
	return price + atr, price - 2*atr
}
