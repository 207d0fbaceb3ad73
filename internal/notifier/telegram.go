package notifier

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smart-signal-sentry/pkg/types"
)

// TelegramNotifier Telegram机器人通知器
type TelegramNotifier struct {
	botToken   string
	chatID     string
	apiBase    string
	httpClient *http.Client
}

// telegramResponse Telegram API响应
type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotifier 创建Telegram通知器
func NewTelegramNotifier(cfg types.TelegramConfig, timeout time.Duration) *TelegramNotifier {
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &TelegramNotifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		apiBase:  "https://api.telegram.org",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (tn *TelegramNotifier) Name() string { return "telegram" }

// Send 通过sendMessage接口推送文本，subject并入正文首行
func (tn *TelegramNotifier) Send(subject, text string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", tn.apiBase, tn.botToken)

	payload := url.Values{}
	payload.Set("chat_id", tn.chatID)
	payload.Set("text", text)

	resp, err := tn.httpClient.Post(apiURL, "application/x-www-form-urlencoded",
		strings.NewReader(payload.Encode()))
	if err != nil {
		return &types.NotificationError{Sink: tn.Name(), Err: err}
	}
	defer resp.Body.Close()

	var tgResp telegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&tgResp); err != nil {
		return &types.NotificationError{Sink: tn.Name(), Err: fmt.Errorf("解析响应失败: %v", err)}
	}

	if !tgResp.OK {
		return &types.NotificationError{Sink: tn.Name(),
			Err: fmt.Errorf("Telegram API返回错误: %s", tgResp.Description)}
	}

	return nil
}
