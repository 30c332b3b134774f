package notify

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/farellandr/rifas/internal/logger"
)

var ErrNoChat = errors.New("admin chat not registered")

// Telegram sends notifications to one admin chat. When no chat id is
// configured, the first /start command received by the bot registers it.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID atomic.Int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	t := &Telegram{bot: bot}
	t.chatID.Store(chatID)

	logger.Info("telegram bot authorized", zap.String("account", bot.Self.UserName))
	return t, nil
}

func (t *Telegram) ChatID() int64 { return t.chatID.Load() }

func (t *Telegram) Notify(ctx context.Context, text string) error {
	chatID := t.chatID.Load()
	if chatID == 0 {
		return ErrNoChat
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Listen registers the admin chat from /start commands until ctx is done.
func (t *Telegram) Listen(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() || update.Message.Command() != "start" {
				continue
			}
			chatID := update.Message.Chat.ID
			t.chatID.Store(chatID)
			logger.Info("telegram admin chat registered", zap.Int64("chat_id", chatID))

			reply := tgbotapi.NewMessage(chatID, fmt.Sprintf("Chat %d registrado. Recibirás las notificaciones de rifas aquí.", chatID))
			if _, err := t.bot.Send(reply); err != nil {
				logger.Warn("telegram reply failed", zap.Error(err))
			}
		}
	}
}
