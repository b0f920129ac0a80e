package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

// Alerter 运维告警通道
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// LogAlerter 未配置告警通道时退化为日志
type LogAlerter struct{}

func (LogAlerter) Alert(_ context.Context, text string) error {
	logger.Warn("ALERT: %s", text)
	return nil
}

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter 发送到指定 Telegram 会话
type TelegramAlerter struct {
	bot    telegramSender
	chatId int64
}

func NewTelegramAlerter(token string, chatId int64) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logger.Info("Telegram alerter authorized as %s", bot.Self.UserName)
	return &TelegramAlerter{bot: bot, chatId: chatId}, nil
}

func (a *TelegramAlerter) Alert(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(a.chatId, text)
	if _, err := a.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}
