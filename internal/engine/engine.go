package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"smart-signal-sentry/internal/fetcher"
	"smart-signal-sentry/internal/indicators"
	"smart-signal-sentry/internal/lifecycle"
	"smart-signal-sentry/internal/notifier"
	"smart-signal-sentry/internal/pricefeed"
	"smart-signal-sentry/internal/report"
	"smart-signal-sentry/internal/scorer"
	"smart-signal-sentry/internal/storage"
	"smart-signal-sentry/pkg/types"
)

// Engine 信号引擎：把一轮"复查→拉取→打分→发信→日报→落盘"串起来
// 每轮都从存储加载状态、结束时写回，自身不在内存里积累跨轮状态
type Engine struct {
	cfg       *types.Config
	market    fetcher.MarketDataSource
	scorer    *scorer.Scorer
	tracker   *lifecycle.Tracker
	report    *report.Aggregator
	notify    notifier.Interface
	store     storage.StateStore
	archive   *storage.Archive
	priceFeed *pricefeed.Client
}

// New 创建信号引擎，archive和priceFeed可为nil
func New(
	cfg *types.Config,
	market fetcher.MarketDataSource,
	notify notifier.Interface,
	store storage.StateStore,
	archive *storage.Archive,
	priceFeed *pricefeed.Client,
) *Engine {
	e := &Engine{
		cfg:       cfg,
		market:    market,
		scorer:    scorer.New(cfg.Signal),
		tracker:   lifecycle.New(cfg.Signal),
		report:    report.New(cfg.Report),
		notify:    notify,
		store:     store,
		archive:   archive,
		priceFeed: priceFeed,
	}

	if archive != nil {
		e.tracker.OnOutcome = func(sig *types.TrackedSignal, outcome string, exitPrice float64, at time.Time) {
			if err := archive.SaveOutcome(sig.Symbol, sig.EmittedAt, outcome, exitPrice, at); err != nil {
				zap.L().Warn("⚠️ 信号结局归档失败",
					zap.String("symbol", sig.Symbol),
					zap.String("outcome", outcome),
					zap.Error(err))
			}
		}
	}

	return e
}

// symbolFault 单个交易对的处理失败记录
type symbolFault struct {
	symbol string
	err    error
}

// Run 执行一轮完整的扫描
// 所有故障按作用域恢复：单个交易对的失败只记入故障清单，
// 状态读写失败退回默认值或记日志，都不中断本轮
func (e *Engine) Run(ctx context.Context, now time.Time) error {
	zap.L().Info("🚀 开始信号扫描",
		zap.Int("symbol_count", len(e.cfg.Signal.Symbols)),
		zap.String("timeframe", e.cfg.Signal.Timeframe))

	state, err := e.store.Load()
	if err != nil {
		// 加载失败已退回空状态，记录后继续
		zap.L().Warn("⚠️ 状态加载异常，以空状态继续", zap.Error(err))
	}

	dirty := false

	// 1. 复查在跟踪的信号
	if e.tracker.Recheck(ctx, state, e.priceSource(), e.notify, now) {
		dirty = true
		e.saveState(state)
	}

	// 2. 逐个交易对拉取、计算、打分
	candidates, faults := e.scanSymbols(ctx, now)

	for _, fault := range faults {
		zap.L().Warn("⚠️ 交易对处理失败",
			zap.String("symbol", fault.symbol),
			zap.Error(fault.err))
	}

	// 3. 按分数降序发出信号，单轮不超过上限
	if e.emitSignals(state, candidates, now) {
		dirty = true
	}

	// 4. 日报
	if e.report.MaybeSend(state, e.notify, now) {
		dirty = true
	}

	// 5. 落盘：写入失败只记日志，本轮分析和通知已经完成，下一轮会重写
	if err := e.store.Save(state); err != nil {
		zap.L().Error("❌ 状态写入失败", zap.Error(err))
	}

	zap.L().Info("✅ 信号扫描完成",
		zap.Int("candidates", len(candidates)),
		zap.Int("faults", len(faults)),
		zap.Int("tracked", len(state.TrackedSignals)),
		zap.Bool("state_changed", dirty))

	return nil
}

// scanSymbols 逐个交易对拉取K线并打分，交易对之间限速防止触发交易所限流
func (e *Engine) scanSymbols(ctx context.Context, now time.Time) ([]*types.SignalCandidate, []symbolFault) {
	var candidates []*types.SignalCandidate
	var faults []symbolFault

	for i, symbol := range e.cfg.Signal.Symbols {
		if i > 0 && e.cfg.Signal.PaceDelay > 0 {
			select {
			case <-ctx.Done():
				faults = append(faults, symbolFault{symbol: symbol, err: ctx.Err()})
				return candidates, faults
			case <-time.After(e.cfg.Signal.PaceDelay):
			}
		}

		cand, err := e.scanOne(ctx, symbol, now)
		if err != nil {
			faults = append(faults, symbolFault{symbol: symbol, err: err})
			continue
		}
		if cand != nil {
			candidates = append(candidates, cand)
		}
	}

	return candidates, faults
}

// scanOne 处理单个交易对：拉取K线 → 计算指标 → 打分
func (e *Engine) scanOne(ctx context.Context, symbol string, now time.Time) (*types.SignalCandidate, error) {
	candles, err := e.market.FetchOHLCV(ctx, symbol, e.cfg.Signal.Timeframe, e.cfg.Signal.OHLCVLimit)
	if err != nil {
		return nil, err
	}

	rows, err := indicators.Compute(candles)
	if err != nil {
		return nil, err
	}

	latest := candles[len(candles)-1]
	row := rows[len(rows)-1]

	return e.scorer.Evaluate(symbol, row, latest, now), nil
}

// emitSignals 按分数降序逐条发出，发出前再次校验冷却/跟踪限制
// 只有至少一个通道确认送达才把信号记入跟踪，避免"静默开仓"
func (e *Engine) emitSignals(state *types.State, candidates []*types.SignalCandidate, now time.Time) bool {
	if len(candidates) == 0 {
		return false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})

	emitted := 0
	changed := false

	for _, cand := range candidates {
		if emitted >= e.cfg.Signal.PerRunCap {
			zap.L().Info("本轮信号数已达上限，剩余候选丢弃",
				zap.Int("cap", e.cfg.Signal.PerRunCap),
				zap.Int("dropped", len(candidates)-emitted))
			break
		}

		if !e.tracker.AllowSignal(state, cand.Symbol, now) {
			continue
		}

		if err := e.notify.Send(fmt.Sprintf("Signal %s %s", cand.Direction, cand.Symbol),
			notifier.FormatSignal(cand)); err != nil {
			zap.L().Warn("⚠️ 信号通知发送失败，不记入跟踪",
				zap.String("symbol", cand.Symbol),
				zap.Error(err))
			continue
		}

		e.tracker.Open(state, cand, now)
		emitted++
		changed = true

		zap.L().Info("📣 信号已发出",
			zap.String("symbol", cand.Symbol),
			zap.String("direction", cand.Direction),
			zap.Int("score", cand.Score),
			zap.Float64("entry", cand.EntryPrice))

		if e.archive != nil {
			if err := e.archive.SaveEmitted(state.TrackedSignals[cand.Symbol]); err != nil {
				zap.L().Warn("⚠️ 信号归档失败", zap.String("symbol", cand.Symbol), zap.Error(err))
			}
		}
	}

	return changed
}

// priceSource 复查用的价格来源：优先WebSocket缓存，缓存缺失回退REST
func (e *Engine) priceSource() lifecycle.PriceSource {
	if e.priceFeed == nil {
		return e.market
	}
	return &cachedPriceSource{feed: e.priceFeed, fallback: e.market}
}

// cachedPriceSource WebSocket价格缓存加REST兜底
type cachedPriceSource struct {
	feed     *pricefeed.Client
	fallback fetcher.MarketDataSource
}

func (c *cachedPriceSource) FetchTicker(ctx context.Context, symbol string) (float64, error) {
	if price, ok := c.feed.LastPrice(symbol); ok {
		return price, nil
	}
	return c.fallback.FetchTicker(ctx, symbol)
}

// saveState 中途落盘，失败只告警（轮末还会再写一次）
func (e *Engine) saveState(state *types.State) {
	if err := e.store.Save(state); err != nil {
		zap.L().Warn("⚠️ 状态中途写入失败", zap.Error(err))
	}
}

// RunLoop 循环运行直到时限或上下文取消
// 单轮失败不退出，等待重试间隔后继续
func (e *Engine) RunLoop(ctx context.Context) error {
	deadline := time.Now().Add(e.cfg.Run.Duration)
	zap.L().Info("⏳ 进入循环模式",
		zap.Duration("interval", e.cfg.Run.Interval),
		zap.Duration("duration", e.cfg.Run.Duration),
		zap.Time("deadline", deadline))

	for {
		now := time.Now()
		if e.cfg.Run.Duration > 0 && !now.Before(deadline) {
			zap.L().Info("🏁 到达运行时限，循环结束")
			return nil
		}

		wait := e.cfg.Run.Interval
		if err := e.Run(ctx, now); err != nil {
			zap.L().Warn("⚠️ 本轮扫描失败，稍后重试",
				zap.Error(err),
				zap.Duration("retry_in", e.cfg.Run.RetryInterval))
			wait = e.cfg.Run.RetryInterval
		}

		select {
		case <-ctx.Done():
			zap.L().Info("收到退出信号，循环结束")
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
