package handlers

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TypingNotifier keeps the "typing..." indicator alive while the gateway
// waits for the consultation backend. Telegram expires a chat action after
// about five seconds, so it is refreshed every four.
type TypingNotifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	done    chan struct{}
	logger  *zap.Logger
	started bool
}

// NewTypingNotifier creates a typing indicator for one chat
func NewTypingNotifier(bot *tgbotapi.BotAPI, chatID int64, logger *zap.Logger) *TypingNotifier {
	return &TypingNotifier{
		bot:    bot,
		chatID: chatID,
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Start sends the first typing action immediately and refreshes it until
// Stop is called or the context ends
func (t *TypingNotifier) Start(ctx context.Context) {
	if t.started {
		return
	}
	t.started = true

	t.sendAction()

	go func() {
		ticker := time.NewTicker(4 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.sendAction()
			case <-t.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the typing indicator
func (t *TypingNotifier) Stop() {
	if !t.started {
		return
	}

	close(t.done)
	t.started = false
}

func (t *TypingNotifier) sendAction() {
	action := tgbotapi.NewChatAction(t.chatID, tgbotapi.ChatTyping)
	if _, err := t.bot.Request(action); err != nil {
		t.logger.Warn("failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", t.chatID),
		)
	}
}
