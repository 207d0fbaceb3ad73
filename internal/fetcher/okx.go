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

// okxBackend OKX V5 REST后端
type okxBackend struct {
	baseURL    string
	httpClient *http.Client
}

func newOKXBackend(client *http.Client) *okxBackend {
	return &okxBackend{
		baseURL:    "https://www.okx.com/api/v5/market",
		httpClient: client,
	}
}

func (o *okxBackend) name() string { return "okx" }

// toOKXSymbol BTC/USDT → BTC-USDT
func toOKXSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

// toOKXBar 1h → 1H（OKX小时及以上周期使用大写）
func toOKXBar(timeframe string) string {
	if strings.HasSuffix(timeframe, "h") || strings.HasSuffix(timeframe, "d") {
		return strings.ToUpper(timeframe)
	}
	return timeframe
}

// okxResponse OKX API统一响应
type okxResponse struct {
	Code string     `json:"code"`
	Msg  string     `json:"msg"`
	Data [][]string `json:"data"`
}

// fetchCandles 拉取K线
// OKX K线格式: [timestamp, open, high, low, close, volume, ...]
// 返回数据从新到旧排序，需要反转为从旧到新
func (o *okxBackend) fetchCandles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	requestURL := fmt.Sprintf("%s/candles?instId=%s&bar=%s&limit=%d",
		o.baseURL, toOKXSymbol(symbol), toOKXBar(timeframe), limit)

	okxResp, err := o.get(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	candles := make([]types.Candle, 0, len(okxResp.Data))
	for _, row := range okxResp.Data {
		if len(row) < 6 {
			continue
		}

		candle, err := o.parseCandleRow(symbol, timeframe, row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	reverseCandles(candles)
	return candles, nil
}

// parseCandleRow 解析单行K线数据
func (o *okxBackend) parseCandleRow(symbol, timeframe string, row []string) (types.Candle, error) {
	timestamp, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return types.Candle{}, fmt.Errorf("解析时间戳失败: %v", err)
	}

	fields := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		value, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return types.Candle{}, fmt.Errorf("解析K线数值失败: %v", err)
		}
		fields[i-1] = value
	}

	return types.Candle{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(timestamp),
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
		Interval:  timeframe,
	}, nil
}

// fetchTicker 拉取最新成交价
func (o *okxBackend) fetchTicker(ctx context.Context, symbol string) (float64, error) {
	requestURL := fmt.Sprintf("%s/ticker?instId=%s", o.baseURL, toOKXSymbol(symbol))

	okxResp, err := o.getTicker(ctx, requestURL)
	if err != nil {
		return 0, err
	}

	if len(okxResp.Data) == 0 {
		return 0, fmt.Errorf("ticker响应数据为空")
	}

	price, err := strconv.ParseFloat(okxResp.Data[0].Last, 64)
	if err != nil {
		return 0, fmt.Errorf("解析价格失败: %v", err)
	}

	return price, nil
}

// okxTickerResponse OKX ticker响应
type okxTickerResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		InstID string `json:"instId"`
		Last   string `json:"last"`
	} `json:"data"`
}

func (o *okxBackend) get(ctx context.Context, requestURL string) (*okxResponse, error) {
	body, err := o.doRequest(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var okxResp okxResponse
	if err := json.Unmarshal(body, &okxResp); err != nil {
		return nil, fmt.Errorf("解析JSON失败: %v", err)
	}

	if okxResp.Code != "0" {
		return nil, fmt.Errorf("OKX API返回错误: code=%s, msg=%s", okxResp.Code, okxResp.Msg)
	}

	return &okxResp, nil
}

func (o *okxBackend) getTicker(ctx context.Context, requestURL string) (*okxTickerResponse, error) {
	body, err := o.doRequest(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	var okxResp okxTickerResponse
	if err := json.Unmarshal(body, &okxResp); err != nil {
		return nil, fmt.Errorf("解析JSON失败: %v", err)
	}

	if okxResp.Code != "0" {
		return nil, fmt.Errorf("OKX API返回错误: code=%s, msg=%s", okxResp.Code, okxResp.Msg)
	}

	return &okxResp, nil
}

func (o *okxBackend) doRequest(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %v", err)
	}
	req.Header.Set("User-Agent", "Smart-Signal-Sentry/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP请求失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP响应错误: %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// reverseCandles 反转K线数组（从新到旧 → 从旧到新）
func reverseCandles(candles []types.Candle) {
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}
}
