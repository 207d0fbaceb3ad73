package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client OKX tickers频道实时价格客户端
// 循环模式下为信号复核提供实时价格缓存，替代逐个REST查询
type Client struct {
	endpoint      string
	proxy         string
	conn          *websocket.Conn
	mu            sync.RWMutex
	isConnected   bool
	reconnectChan chan struct{}
	ctx           context.Context
	cancel        context.CancelFunc

	symbols []string

	priceMu sync.RWMutex
	prices  map[string]float64 // 键为 BTC/USDT 形式

	reconnectInterval    time.Duration
	pingInterval         time.Duration
	maxReconnectAttempts int
}

// okxTickerPush OKX tickers推送消息
type okxTickerPush struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Data []struct {
		InstID string `json:"instId"`
		Last   string `json:"last"`
	} `json:"data"`
}

// okxSubscription OKX订阅消息
type okxSubscription struct {
	Op   string `json:"op"`
	Args []struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"args"`
}

// Options 价格客户端参数
type Options struct {
	Endpoint             string
	Proxy                string
	ReconnectInterval    time.Duration
	PingInterval         time.Duration
	MaxReconnectAttempts int
}

// NewClient 创建价格推送客户端
func NewClient(symbols []string, opts Options) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		endpoint:             opts.Endpoint,
		proxy:                opts.Proxy,
		reconnectChan:        make(chan struct{}, 1),
		ctx:                  ctx,
		cancel:               cancel,
		symbols:              symbols,
		prices:               make(map[string]float64),
		reconnectInterval:    opts.ReconnectInterval,
		pingInterval:         opts.PingInterval,
		maxReconnectAttempts: opts.MaxReconnectAttempts,
	}
}

// Connect 建立WebSocket连接并订阅所有交易对
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 复制一份默认Dialer，避免代理设置污染包级共享实例
	dialer := *websocket.DefaultDialer
	if c.proxy != "" {
		proxyURL, err := url.Parse(c.proxy)
		if err != nil {
			return fmt.Errorf("解析代理URL失败: %v", err)
		}
		dialer.Proxy = http.ProxyURL(proxyURL)
	}

	conn, _, err := dialer.Dial(c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("WebSocket连接失败: %v", err)
	}

	c.conn = conn
	c.isConnected = true

	zap.L().Info("✅ 价格推送连接建立成功",
		zap.String("endpoint", c.endpoint),
		zap.String("proxy", c.proxy))

	return c.subscribeLocked()
}

// subscribeLocked 发送tickers订阅消息，要求持有c.mu
func (c *Client) subscribeLocked() error {
	subscription := okxSubscription{
		Op: "subscribe",
	}

	for _, symbol := range c.symbols {
		subscription.Args = append(subscription.Args, struct {
			Channel string `json:"channel"`
			InstID  string `json:"instId"`
		}{
			Channel: "tickers",
			InstID:  toInstID(symbol),
		})
	}

	if err := c.conn.WriteJSON(subscription); err != nil {
		return fmt.Errorf("发送订阅消息失败: %v", err)
	}

	zap.L().Info("📊 已订阅实时价格", zap.Strings("symbols", c.symbols))
	return nil
}

// toInstID BTC/USDT → BTC-USDT
func toInstID(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

// fromInstID BTC-USDT → BTC/USDT
func fromInstID(instID string) string {
	return strings.ReplaceAll(instID, "-", "/")
}

// Start 启动读取、重连、心跳循环
func (c *Client) Start() {
	go c.readLoop()
	go c.reconnectLoop()
	go c.pingLoop()
}

// readLoop 读取数据循环
func (c *Client) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("WebSocket读取panic", zap.Any("error", r))
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			c.mu.RLock()
			conn := c.conn
			c.mu.RUnlock()

			if conn == nil {
				time.Sleep(time.Second)
				continue
			}

			_, message, err := conn.ReadMessage()
			if err != nil {
				zap.L().Error("WebSocket读取消息失败", zap.Error(err))
				c.handleDisconnect()
				continue
			}

			if err := c.parseTickerPush(message); err != nil {
				zap.L().Warn("解析价格推送失败", zap.Error(err))
			}
		}
	}
}

// parseTickerPush 解析tickers推送并更新价格缓存
func (c *Client) parseTickerPush(message []byte) error {
	var push okxTickerPush
	if err := json.Unmarshal(message, &push); err != nil {
		return err
	}

	if push.Arg.Channel != "tickers" {
		return nil // 忽略订阅确认等非行情消息
	}

	for _, data := range push.Data {
		price, err := strconv.ParseFloat(data.Last, 64)
		if err != nil {
			zap.L().Warn("解析价格失败",
				zap.String("instId", data.InstID),
				zap.String("last", data.Last))
			continue
		}

		c.priceMu.Lock()
		c.prices[fromInstID(data.InstID)] = price
		c.priceMu.Unlock()
	}

	return nil
}

// LastPrice 获取缓存的最新价格，false表示该交易对尚未收到推送
func (c *Client) LastPrice(symbol string) (float64, bool) {
	c.priceMu.RLock()
	defer c.priceMu.RUnlock()

	price, ok := c.prices[symbol]
	return price, ok
}

// reconnectLoop 重连循环
func (c *Client) reconnectLoop() {
	reconnectAttempts := 0

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.reconnectChan:
			reconnectAttempts++
			if reconnectAttempts > c.maxReconnectAttempts {
				zap.L().Error("达到最大重连次数，停止重连",
					zap.Int("max_attempts", c.maxReconnectAttempts))
				return
			}

			zap.L().Info("尝试重连价格推送",
				zap.Int("attempt", reconnectAttempts),
				zap.Int("max_attempts", c.maxReconnectAttempts))

			if err := c.Connect(); err != nil {
				zap.L().Error("重连失败", zap.Error(err))
				time.Sleep(c.reconnectInterval)
				select {
				case c.reconnectChan <- struct{}{}:
				default:
				}
				continue
			}

			reconnectAttempts = 0
			zap.L().Info("价格推送重连成功")
		}
	}
}

// pingLoop 心跳循环
func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			conn := c.conn
			isConnected := c.isConnected
			c.mu.RUnlock()

			if !isConnected || conn == nil {
				continue
			}

			if err := conn.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				zap.L().Error("发送心跳失败", zap.Error(err))
				c.handleDisconnect()
			}
		}
	}
}

// handleDisconnect 处理断线
func (c *Client) handleDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.isConnected = false

	select {
	case c.reconnectChan <- struct{}{}:
	default:
	}
}

// IsConnected 检查连接状态
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

// Close 关闭连接
func (c *Client) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.isConnected = false
		return err
	}

	return nil
}
