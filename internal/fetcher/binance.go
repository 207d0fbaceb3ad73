package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"smart-signal-sentry/pkg/types"
)

// binanceBackend Binance现货REST后端
type binanceBackend struct {
	baseURL    string
	httpClient *http.Client
}

func newBinanceBackend(client *http.Client) *binanceBackend {
	return &binanceBackend{
		baseURL:    "https://api.binance.com/api/v3",
		httpClient: client,
	}
}

func (b *binanceBackend) name() string { return "binance" }

// toBinanceSymbol BTC/USDT → BTCUSDT
func toBinanceSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

// fetchCandles 拉取K线
// Binance返回格式: [openTime, open, high, low, close, volume, closeTime, ...]
// 价格和成交量为字符串，时间戳为毫秒数字，已按时间升序
func (b *binanceBackend) fetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	requestURL := fmt.Sprintf("%s/klines?symbol=%s&interval=%s&limit=%d",
		b.baseURL, toBinanceSymbol(symbol), timeframe, limit)

	body, err := b.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("解析K线响应失败: %v", err)
	}

	candles := make([]types.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}

		candle, err := b.parseKlineRow(symbol, timeframe, row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

// parseKlineRow 解析单行K线数据
func (b *binanceBackend) parseKlineRow(symbol, timeframe string, row []json.RawMessage) (types.Candle, error) {
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return types.Candle{}, fmt.Errorf("解析开盘时间失败: %v", err)
	}

	fields := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		var raw string
		if err := json.Unmarshal(row[i], &raw); err != nil {
			return types.Candle{}, fmt.Errorf("解析K线字段失败: %v", err)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.Candle{}, fmt.Errorf("解析K线数值失败: %v", err)
		}
		fields[i-1] = value
	}

	return types.Candle{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(openTime),
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
		Interval:  timeframe,
	}, nil
}

// fetchTicker 拉取最新成交价
func (b *binanceBackend) fetchTicker(ctx context.Context, symbol string) (float64, error) {
	requestURL := fmt.Sprintf("%s/ticker/price?symbol=%s", b.baseURL, toBinanceSymbol(symbol))

	body, err := b.get(ctx, requestURL)
	if err != nil {
		return 0, err
	}

	var ticker struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("解析ticker响应失败: %v", err)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("解析价格失败: %v", err)
	}

	return price, nil
}

func (b *binanceBackend) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP响应错误: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
