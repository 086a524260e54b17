package telegram

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/rs/zerolog/log"
)

// InboundHandler receives every inbound text update from the bot.
// Implementations must not block the update loop; errors are resolved
// through chat replies, not returned here.
type InboundHandler interface {
	HandleInbound(ctx context.Context, chatID, senderID int64, text string)
}

// Bot wraps the Telegram long-polling client. It implements the
// service.Transport interface for outbound sends and drives the inbound
// handler from the update stream.
type Bot struct {
	bot *telego.Bot
}

func NewBot(token string) (*Bot, error) {
	bot, err := telego.NewBot(token, telego.WithDefaultLogger(false, true))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Bot{bot: bot}, nil
}

// Run consumes long-polling updates until ctx is cancelled. Updates for
// different chats are handled concurrently; each update gets its own
// goroutine so a slow bind cannot stall the stream.
func (b *Bot) Run(ctx context.Context, handler InboundHandler) error {
	updates, err := b.bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	log.Info().Msg("telegram bot polling for updates")

	for update := range updates {
		msg := update.Message
		if msg == nil || msg.Text == "" {
			continue
		}

		var senderID int64
		if msg.From != nil {
			senderID = msg.From.ID
		}

		go handler.HandleInbound(ctx, msg.Chat.ID, senderID, msg.Text)
	}

	return nil
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string) error {
	if _, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
