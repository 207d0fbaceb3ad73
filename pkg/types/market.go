package types

import "time"

// Candle K线数据结构（通用市场数据，按时间升序排列）
type Candle struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Interval  string    `json:"interval"` // 1h
}

// IndicatorRow 单根K线对应的指标行，与输入K线按下标对齐
type IndicatorRow struct {
	EMAFast    float64 `json:"ema_fast"`    // EMA10
	EMAMid     float64 `json:"ema_mid"`     // EMA50
	EMASlow    float64 `json:"ema_slow"`    // EMA200
	RSI        float64 `json:"rsi"`         // 0-100
	ATR        float64 `json:"atr"`         // 14周期真实波幅均值
	MACD       float64 `json:"macd"`        // EMA12 - EMA26
	MACDSignal float64 `json:"macd_signal"` // MACD的9周期EMA
	StochK     float64 `json:"stoch_k"`     // 随机指标%K
	StochD     float64 `json:"stoch_d"`     // %K的3周期均值
	AvgVolume  float64 `json:"avg_volume"`  // 20周期成交量均值
}
