package notifier

import (
	"fmt"
	"strings"
	"time"

	"smart-signal-sentry/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

func directionArrow(direction string) string {
	if direction == types.DirectionShort {
		return "📉"
	}
	return "📈"
}

// FormatSignal 构建新信号的推送文本
func FormatSignal(cand *types.SignalCandidate) string {
	return fmt.Sprintf(
		"💹 Symbol: %s\n"+
			"%s Action: %s\n"+
			"💰 Entry: %.4f\n"+
			"⚠️ Stop Loss: %.4f\n"+
			"🏁 Take Profit: %.4f\n"+
			"📊 RSI: %.2f\n"+
			"📊 Volume: %.2f\n"+
			"⭐ Signal Score: %d/5\n"+
			"⏰ Time: %s UTC",
		cand.Symbol,
		directionArrow(cand.Direction), cand.Direction,
		cand.EntryPrice,
		cand.StopLoss,
		cand.TakeProfit,
		cand.RSI,
		cand.Volume,
		cand.Score,
		cand.ComputedAt.UTC().Format(timeLayout))
}

// FormatInvalidated 构建止损触发的推送文本
func FormatInvalidated(sig *types.TrackedSignal, price float64, now time.Time) string {
	return fmt.Sprintf(
		"❌ Signal Invalidated: %s\n"+
			"%s Action: %s\n"+
			"💰 Entry: %.4f\n"+
			"⚠️ Stop Loss hit at: %.4f\n"+
			"⏰ Time: %s UTC",
		sig.Symbol,
		directionArrow(sig.Direction), sig.Direction,
		sig.EntryPrice,
		price,
		now.UTC().Format(timeLayout))
}

// FormatClosed 构建止盈达成的推送文本
func FormatClosed(sig *types.TrackedSignal, price float64, now time.Time) string {
	return fmt.Sprintf(
		"✅ Target Reached: %s\n"+
			"%s Action: %s\n"+
			"💰 Entry: %.4f\n"+
			"🏁 Take Profit hit at: %.4f\n"+
			"⏰ Time: %s UTC",
		sig.Symbol,
		directionArrow(sig.Direction), sig.Direction,
		sig.EntryPrice,
		price,
		now.UTC().Format(timeLayout))
}

// FormatDailyReport 构建日报文本，signals已按分数排好序
func FormatDailyReport(signals []*types.TrackedSignal, now time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 Daily Top Signals (%s UTC):\n\n", now.UTC().Format("2006-01-02")))

	for i, sig := range signals {
		b.WriteString(fmt.Sprintf(
			"%d. 💹 %s\n"+
				"   %s %s | ⭐ %d/5\n"+
				"   💰 Entry: %.4f | ⚠️ SL: %.4f | 🏁 TP: %.4f\n"+
				"   ⏰ Emitted: %s UTC\n\n",
			i+1, sig.Symbol,
			directionArrow(sig.Direction), sig.Direction, sig.Score,
			sig.EntryPrice, sig.StopLoss, sig.TakeProfit,
			sig.EmittedAt.UTC().Format(timeLayout)))
	}

	return strings.TrimRight(b.String(), "\n")
}
