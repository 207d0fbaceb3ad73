package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"smart-signal-sentry/pkg/types"
)

// MarketDataSource 行情数据来源
type MarketDataSource interface {
	// FetchOHLCV 拉取K线序列，按时间升序返回
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)
	// FetchTicker 拉取最新成交价
	FetchTicker(ctx context.Context, symbol string) (float64, error)
}

// exchangeBackend 单个交易所后端
type exchangeBackend interface {
	name() string
	fetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)
	fetchTicker(ctx context.Context, symbol string) (float64, error)
}

// RESTFetcher 依次尝试多个交易所后端的REST行情获取器，首个成功即返回
type RESTFetcher struct {
	backends []exchangeBackend
}

// 每个后端的重试次数
const maxAttempts = 3

// New 创建行情获取器：Binance优先，OKX兜底
func New(network types.NetworkConfig) *RESTFetcher {
	client := newHTTPClient(network)

	return &RESTFetcher{
		backends: []exchangeBackend{
			newBinanceBackend(client),
			newOKXBackend(client),
		},
	}
}

// newHTTPClient 创建带超时和可选代理的HTTP客户端
func newHTTPClient(network types.NetworkConfig) *http.Client {
	timeout := network.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	client := &http.Client{Timeout: timeout}

	if network.Proxy != "" {
		proxyURL, err := url.Parse(network.Proxy)
		if err == nil {
			client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
			zap.L().Info("✅ 已配置HTTP代理", zap.String("proxy", network.Proxy))
		} else {
			zap.L().Warn("⚠️ 代理地址格式错误，忽略", zap.Error(err))
		}
	}

	return client
}

// FetchOHLCV 拉取K线，逐个后端带退避重试，全部失败返回FetchError
func (f *RESTFetcher) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	var lastErr error

	for _, backend := range f.backends {
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			if attempt > 1 {
				select {
				case <-ctx.Done():
					return nil, &types.FetchError{Exchange: backend.name(), Symbol: symbol, Err: ctx.Err()}
				case <-time.After(time.Duration(attempt) * time.Second):
				}
			}

			candles, err := backend.fetchCandles(ctx, symbol, timeframe, limit)
			if err != nil {
				lastErr = err
				zap.L().Debug("K线获取失败",
					zap.String("exchange", backend.name()),
					zap.String("symbol", symbol),
					zap.Int("attempt", attempt),
					zap.Error(err))
				continue
			}

			zap.L().Debug("✅ K线获取完成",
				zap.String("exchange", backend.name()),
				zap.String("symbol", symbol),
				zap.Int("count", len(candles)))
			return candles, nil
		}
	}

	return nil, &types.FetchError{Exchange: "all", Symbol: symbol,
		Err: fmt.Errorf("所有交易所后端均失败: %v", lastErr)}
}

// FetchTicker 拉取最新价，后端顺序与K线一致
func (f *RESTFetcher) FetchTicker(ctx context.Context, symbol string) (float64, error) {
	var lastErr error

	for _, backend := range f.backends {
		price, err := backend.fetchTicker(ctx, symbol)
		if err != nil {
			lastErr = err
			continue
		}
		return price, nil
	}

	return 0, &types.FetchError{Exchange: "all", Symbol: symbol,
		Err: fmt.Errorf("所有交易所后端均失败: %v", lastErr)}
}
