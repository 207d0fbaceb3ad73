package indicators

import (
	"math"

	"smart-signal-sentry/pkg/types"
)

// 指标参数，与策略规则配套，不做配置项
const (
	EMAFastSpan   = 10
	EMAMidSpan    = 50
	EMASlowSpan   = 200
	RSIPeriod     = 14
	ATRPeriod     = 14
	MACDFastSpan  = 12
	MACDSlowSpan  = 26
	MACDSignalLen = 9
	StochPeriod   = 14
	StochSmooth   = 3
	VolumePeriod  = 20

	// MinCandles 计算指标所需的最少K线数量
	MinCandles = 20

	// epsilon 避免除零的最小分母
	epsilon = 1e-9
)

// Compute 对K线序列计算全部指标，返回与输入按下标对齐的指标行
// 仅使用当前及更早的K线，不存在未来数据泄露
func Compute(candles []types.Candle) ([]types.IndicatorRow, error) {
	if len(candles) < MinCandles {
		symbol := ""
		if len(candles) > 0 {
			symbol = candles[0].Symbol
		}
		return nil, &types.InsufficientDataError{Symbol: symbol, Have: len(candles), Need: MinCandles}
	}

	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	emaFast := EMA(closes, EMAFastSpan)
	emaMid := EMA(closes, EMAMidSpan)
	emaSlow := EMA(closes, EMASlowSpan)
	rsi := computeRSI(closes)
	atr := computeATR(highs, lows, closes)
	macd, macdSignal := computeMACD(closes)
	stochK, stochD := computeStochastic(highs, lows, closes)
	avgVolume := rollingMean(volumes, VolumePeriod)

	rows := make([]types.IndicatorRow, n)
	for i := 0; i < n; i++ {
		rows[i] = types.IndicatorRow{
			EMAFast:    emaFast[i],
			EMAMid:     emaMid[i],
			EMASlow:    emaSlow[i],
			RSI:        rsi[i],
			ATR:        atr[i],
			MACD:       macd[i],
			MACDSignal: macdSignal[i],
			StochK:     stochK[i],
			StochD:     stochD[i],
			AvgVolume:  avgVolume[i],
		}
	}

	return rows, nil
}

// computeRSI 计算RSI序列：14周期涨跌幅均值之比
// 跌幅均值为零时以epsilon兜底，恒定价格序列RSI为0而不是NaN
func computeRSI(closes []float64) []float64 {
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := rollingMean(gains, RSIPeriod)
	avgLoss := rollingMean(losses, RSIPeriod)

	rsi := make([]float64, n)
	for i := 0; i < n; i++ {
		loss := avgLoss[i]
		if loss == 0 {
			loss = epsilon
		}
		rs := avgGain[i] / loss
		rsi[i] = 100 - 100/(1+rs)
	}
	return rsi
}

// computeATR 计算ATR序列：真实波幅的14周期均值
func computeATR(highs, lows, closes []float64) []float64 {
	n := len(highs)
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		hl := highs[i] - lows[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return rollingMean(tr, ATRPeriod)
}

// computeMACD 计算MACD及其信号线
func computeMACD(closes []float64) ([]float64, []float64) {
	ema12 := EMA(closes, MACDFastSpan)
	ema26 := EMA(closes, MACDSlowSpan)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = ema12[i] - ema26[i]
	}

	return macd, EMA(macd, MACDSignalLen)
}

// computeStochastic 计算随机指标%K和%D
// 高低区间为零时以epsilon兜底
func computeStochastic(highs, lows, closes []float64) ([]float64, []float64) {
	n := len(closes)
	lowest := rollingMin(lows, StochPeriod)
	highest := rollingMax(highs, StochPeriod)

	k := make([]float64, n)
	for i := 0; i < n; i++ {
		rng := highest[i] - lowest[i]
		if rng == 0 {
			rng = epsilon
		}
		k[i] = (closes[i] - lowest[i]) / rng * 100
	}

	return k, rollingMean(k, StochSmooth)
}
