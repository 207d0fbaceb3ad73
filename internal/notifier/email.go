package notifier

import (
	"fmt"
	"net/smtp"
	"strings"

	"smart-signal-sentry/pkg/types"
)

// EmailNotifier SMTP邮件通知器
type EmailNotifier struct {
	host     string
	port     int
	from     string
	password string
	to       []string
}

// NewEmailNotifier 创建邮件通知器
func NewEmailNotifier(cfg types.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.From,
		password: cfg.Password,
		to:       strings.Split(cfg.To, ","),
	}
}

func (en *EmailNotifier) Name() string { return "email" }

// Send 以纯文本邮件发送，SMTP连接使用STARTTLS
func (en *EmailNotifier) Send(subject, text string) error {
	addr := fmt.Sprintf("%s:%d", en.host, en.port)
	auth := smtp.PlainAuth("", en.from, en.password, en.host)

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", en.from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(en.to, ",")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(text)

	if err := smtp.SendMail(addr, auth, en.from, en.to, []byte(msg.String())); err != nil {
		return &types.NotificationError{Sink: en.Name(), Err: err}
	}

	return nil
}
