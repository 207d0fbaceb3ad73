package lifecycle

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"smart-signal-sentry/internal/notifier"
	"smart-signal-sentry/pkg/types"
)

// PriceSource 最新价格来源（复查只需要最新价，不拉全量K线）
type PriceSource interface {
	FetchTicker(ctx context.Context, symbol string) (float64, error)
}

// Tracker 信号生命周期管理器
// 状态机（按交易对）：NONE → OPEN → (INVALIDATED | CLOSED) → NONE
// 所有状态变更都作用于显式传入的State，自身不持有任何跨次运行的状态
type Tracker struct {
	cooldown   time.Duration
	maxTracked int

	// OnOutcome 信号平仓/失效时的回调（可选，用于归档）
	OnOutcome func(sig *types.TrackedSignal, outcome string, exitPrice float64, at time.Time)
}

// New 创建生命周期管理器
func New(cfg types.SignalConfig) *Tracker {
	return &Tracker{
		cooldown:   time.Duration(cfg.CooldownHours) * time.Hour,
		maxTracked: cfg.MaxTracked,
	}
}

// AllowSignal 检查交易对当前是否允许发出新信号：
// 没有未平仓信号、冷却时间已过、跟踪总量未超限
func (t *Tracker) AllowSignal(state *types.State, symbol string, now time.Time) bool {
	if _, open := state.TrackedSignals[symbol]; open {
		return false
	}
	if len(state.TrackedSignals) >= t.maxTracked {
		return false
	}
	if last, ok := state.LastSignalTime[symbol]; ok {
		if now.Sub(last) < t.cooldown {
			zap.L().Debug("冷却时间未到，抑制信号",
				zap.String("symbol", symbol),
				zap.Time("last_signal", last))
			return false
		}
	}
	return true
}

// Open 记录新发出的信号：NONE → OPEN
func (t *Tracker) Open(state *types.State, cand *types.SignalCandidate, now time.Time) {
	state.TrackedSignals[cand.Symbol] = &types.TrackedSignal{
		Symbol:     cand.Symbol,
		Direction:  cand.Direction,
		Score:      cand.Score,
		EntryPrice: cand.EntryPrice,
		StopLoss:   cand.StopLoss,
		TakeProfit: cand.TakeProfit,
		EmittedAt:  now,
	}
	state.LastSignalTime[cand.Symbol] = now
}

// Recheck 对全部在跟踪信号做一轮复查，对照最新价判定止损/止盈
// 单个交易对的取价失败只跳过该交易对，返回状态是否发生变更
func (t *Tracker) Recheck(ctx context.Context, state *types.State, prices PriceSource, notify notifier.Interface, now time.Time) bool {
	if len(state.TrackedSignals) == 0 {
		return false
	}

	// 固定遍历顺序，保证复查行为可复现
	symbols := make([]string, 0, len(state.TrackedSignals))
	for symbol := range state.TrackedSignals {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	changed := false
	for _, symbol := range symbols {
		sig := state.TrackedSignals[symbol]

		price, err := prices.FetchTicker(ctx, symbol)
		if err != nil {
			zap.L().Warn("⚠️ 复查取价失败，跳过该交易对",
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}

		switch t.evaluate(sig, price) {
		case outcomeInvalidated:
			zap.L().Info("❌ 信号止损失效",
				zap.String("symbol", symbol),
				zap.Float64("price", price),
				zap.Float64("stop_loss", sig.StopLoss))
			if err := notify.Send("Signal Invalidated "+symbol, notifier.FormatInvalidated(sig, price, now)); err != nil {
				zap.L().Warn("失效通知发送失败", zap.String("symbol", symbol), zap.Error(err))
			}
			if t.OnOutcome != nil {
				t.OnOutcome(sig, "INVALIDATED", price, now)
			}
			delete(state.TrackedSignals, symbol)
			changed = true
		case outcomeClosed:
			zap.L().Info("🏁 信号止盈平仓",
				zap.String("symbol", symbol),
				zap.Float64("price", price),
				zap.Float64("take_profit", sig.TakeProfit))
			if err := notify.Send("Target Reached "+symbol, notifier.FormatClosed(sig, price, now)); err != nil {
				zap.L().Warn("平仓通知发送失败", zap.String("symbol", symbol), zap.Error(err))
			}
			if t.OnOutcome != nil {
				t.OnOutcome(sig, "CLOSED", price, now)
			}
			delete(state.TrackedSignals, symbol)
			changed = true
		}
	}

	return changed
}

type outcome int

const (
	outcomeOpen outcome = iota
	outcomeInvalidated
	outcomeClosed
)

// evaluate 判定单个信号的去留：止损优先于止盈
func (t *Tracker) evaluate(sig *types.TrackedSignal, price float64) outcome {
	if sig.Direction == types.DirectionLong {
		if price <= sig.StopLoss {
			return outcomeInvalidated
		}
		if price >= sig.TakeProfit {
			return outcomeClosed
		}
		return outcomeOpen
	}

	if price >= sig.StopLoss {
		return outcomeInvalidated
	}
	if price <= sig.TakeProfit {
		return outcomeClosed
	}
	return outcomeOpen
}
