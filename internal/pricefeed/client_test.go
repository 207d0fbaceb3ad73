package pricefeed

import (
	"testing"
	"time"
)

func newTestClient() *Client {
	return NewClient([]string{"BTC/USDT", "ETH/USDT"}, Options{
		Endpoint:             "wss://example.invalid/ws",
		ReconnectInterval:    time.Second,
		PingInterval:         time.Second,
		MaxReconnectAttempts: 1,
	})
}

func TestParseTickerPushUpdatesCache(t *testing.T) {
	c := newTestClient()

	msg := []byte(`{"arg":{"channel":"tickers","instId":"BTC-USDT"},` +
		`"data":[{"instId":"BTC-USDT","last":"50123.45"}]}`)

	if err := c.parseTickerPush(msg); err != nil {
		t.Fatalf("parseTickerPush失败: %v", err)
	}

	price, ok := c.LastPrice("BTC/USDT")
	if !ok {
		t.Fatal("推送后缓存缺少价格")
	}
	if price != 50123.45 {
		t.Errorf("缓存价格 = %f, 期望 50123.45", price)
	}

	// 未收到推送的交易对不应有价格
	if _, ok := c.LastPrice("ETH/USDT"); ok {
		t.Error("未推送的交易对出现了缓存价格")
	}
}

func TestParseTickerPushIgnoresSubscribeAck(t *testing.T) {
	c := newTestClient()

	// 订阅确认不带data数组，解析后不产生任何缓存更新
	ack := []byte(`{"event":"subscribe","arg":{"channel":"tickers","instId":"BTC-USDT"}}`)
	if err := c.parseTickerPush(ack); err != nil {
		t.Errorf("订阅确认不应报错: %v", err)
	}

	other := []byte(`{"arg":{"channel":"candle1H","instId":"BTC-USDT"},"data":[["1717200000000","100"]]}`)
	if err := c.parseTickerPush(other); err != nil {
		t.Errorf("非tickers频道不应报错: %v", err)
	}
	if _, ok := c.LastPrice("BTC/USDT"); ok {
		t.Error("非行情消息污染了价格缓存")
	}
}

func TestParseTickerPushSkipsBadPrice(t *testing.T) {
	c := newTestClient()

	// 一条坏数据不影响同批次的好数据
	msg := []byte(`{"arg":{"channel":"tickers","instId":"BTC-USDT"},` +
		`"data":[{"instId":"BTC-USDT","last":"not-a-number"},` +
		`{"instId":"ETH-USDT","last":"3500.5"}]}`)

	if err := c.parseTickerPush(msg); err != nil {
		t.Fatalf("parseTickerPush失败: %v", err)
	}

	if _, ok := c.LastPrice("BTC/USDT"); ok {
		t.Error("无法解析的价格进入了缓存")
	}
	price, ok := c.LastPrice("ETH/USDT")
	if !ok || price != 3500.5 {
		t.Errorf("ETH价格 = %f (ok=%v), 期望 3500.5", price, ok)
	}
}

func TestSymbolConversion(t *testing.T) {
	if got := toInstID("BTC/USDT"); got != "BTC-USDT" {
		t.Errorf("toInstID = %q, 期望 BTC-USDT", got)
	}
	if got := fromInstID("BTC-USDT"); got != "BTC/USDT" {
		t.Errorf("fromInstID = %q, 期望 BTC/USDT", got)
	}
}
