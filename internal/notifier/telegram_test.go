package notifier

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smart-signal-sentry/pkg/types"
)

func newTestTelegram(serverURL string) *TelegramNotifier {
	tn := NewTelegramNotifier(types.TelegramConfig{
		BotToken: "test-token",
		ChatID:   "12345",
	}, 5*time.Second)
	tn.apiBase = serverURL
	return tn
}

func TestTelegramSend(t *testing.T) {
	var gotPath, gotChatID, gotText string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotChatID = r.FormValue("chat_id")
		gotText = r.FormValue("text")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tn := newTestTelegram(server.URL)
	if err := tn.Send("Signal LONG BTC/USDT", "signal body"); err != nil {
		t.Fatalf("Send失败: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Errorf("请求路径 = %q", gotPath)
	}
	if gotChatID != "12345" {
		t.Errorf("chat_id = %q, 期望 12345", gotChatID)
	}
	if gotText != "signal body" {
		t.Errorf("text = %q", gotText)
	}
}

func TestTelegramSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	tn := newTestTelegram(server.URL)
	err := tn.Send("subject", "text")
	if err == nil {
		t.Fatal("API返回失败时期望返回错误")
	}

	var notifyErr *types.NotificationError
	if !errors.As(err, &notifyErr) {
		t.Fatalf("期望NotificationError, 得到 %T", err)
	}
	if notifyErr.Sink != "telegram" {
		t.Errorf("Sink = %q, 期望 telegram", notifyErr.Sink)
	}
}
