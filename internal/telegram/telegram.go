package telegram

import (
	"context"
	"fmt"

	"github.com/hukumku/consult-gateway/internal/config"
	"github.com/hukumku/consult-gateway/internal/telegram/bot"
	"github.com/hukumku/consult-gateway/internal/telegram/handlers"
	"github.com/hukumku/consult-gateway/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot initializes the telegram bot with all dependencies
func NewBot(
	cfg *config.TelegramConfig,
	storage state.Storage,
	consultations handlers.Consultations,
	logger *zap.Logger,
) (Bot, error) {
	stateManager := state.NewManager(storage)

	b, err := bot.New(cfg, stateManager, consultations, logger)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	registerHandlers(b, logger)

	logger.Info("telegram bot initialized successfully")

	return b, nil
}

// registerHandlers registers all handlers with the bot
func registerHandlers(b *bot.Bot, logger *zap.Logger) {
	api := b.GetAPI()
	stateManager := b.GetStateManager()
	consultations := b.GetConsultations()
	kb := b.GetKeyboard()

	flow := handlers.NewTurnFlow(handlers.NewMessageSender(api, logger), kb, stateManager)

	// Callback handler (handles all button clicks)
	b.RegisterHandler(handlers.NewCallbackHandler(api, stateManager, consultations, flow, kb, logger))

	// Chat handler (free-text consultation turns)
	b.RegisterHandler(handlers.NewChatHandler(api, stateManager, consultations, flow, logger))

	// Answering handler (clarification question flow)
	b.RegisterHandler(handlers.NewAnsweringHandler(api, stateManager, consultations, flow, logger))

	logger.Info("telegram handlers registered",
		zap.Int("handler_count", 3),
	)
}
