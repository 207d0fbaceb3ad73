package types

import "time"

// 信号方向
const (
	DirectionLong  = "LONG"
	DirectionShort = "SHORT"
)

// SignalCandidate 信号候选（打分通过但尚未发出）
type SignalCandidate struct {
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"` // LONG / SHORT
	Score      int       `json:"score"`     // 0-5
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	RSI        float64   `json:"rsi"`
	Volume     float64   `json:"volume"`
	ComputedAt time.Time `json:"computed_at"`
}

// TrackedSignal 已发出且仍在跟踪中的信号，每个交易对最多一条
type TrackedSignal struct {
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	Score      int       `json:"score"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	EmittedAt  time.Time `json:"emitted_at"`
}

// State 跨次运行持久化的状态
type State struct {
	LastSignalTime      map[string]time.Time      `json:"last_signal_time"`
	TrackedSignals      map[string]*TrackedSignal `json:"tracked_signals"`
	LastDailyReportDate string                    `json:"last_daily_report_date,omitempty"` // 2006-01-02
}

// NewState 创建空状态（首次运行或状态文件缺失时使用）
func NewState() *State {
	return &State{
		LastSignalTime: make(map[string]time.Time),
		TrackedSignals: make(map[string]*TrackedSignal),
	}
}

// Normalize 补齐反序列化后可能为nil的map
func (s *State) Normalize() {
	if s.LastSignalTime == nil {
		s.LastSignalTime = make(map[string]time.Time)
	}
	if s.TrackedSignals == nil {
		s.TrackedSignals = make(map[string]*TrackedSignal)
	}
}
