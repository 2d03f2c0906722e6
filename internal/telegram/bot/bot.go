package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/config"
	"github.com/hukumku/consult-gateway/internal/telegram/handlers"
	"github.com/hukumku/consult-gateway/internal/telegram/keyboard"
	"github.com/hukumku/consult-gateway/internal/telegram/middleware"
	"github.com/hukumku/consult-gateway/internal/telegram/render"
	"github.com/hukumku/consult-gateway/internal/telegram/state"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot
type Bot struct {
	api           *tgbotapi.BotAPI
	cfg           *config.TelegramConfig
	stateManager  *state.Manager
	handlers      map[string]handlers.Handler
	consultations handlers.Consultations
	keyboard      *keyboard.Builder
	logger        *zap.Logger
	loggingMW     *middleware.LoggingMiddleware
	recoveryMW    *middleware.RecoveryMiddleware
	rateLimitMW   *middleware.RateLimiterMiddleware
	updatesChan   tgbotapi.UpdatesChannel
	stopChan      chan struct{}
	wg            sync.WaitGroup
}

// New creates a new Telegram bot
func New(
	cfg *config.TelegramConfig,
	stateManager *state.Manager,
	consultations handlers.Consultations,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	bot := &Bot{
		api:           api,
		cfg:           cfg,
		stateManager:  stateManager,
		consultations: consultations,
		keyboard:      keyboard.NewBuilder(),
		logger:        logger,
		handlers:      make(map[string]handlers.Handler),
		stopChan:      make(chan struct{}),
	}

	bot.loggingMW = middleware.NewLoggingMiddleware(logger)
	bot.recoveryMW = middleware.NewRecoveryMiddleware(logger, api)
	bot.rateLimitMW = middleware.NewRateLimiterMiddleware(
		cfg.RateLimitPerMinute,
		cfg.RateLimitBurst,
		logger,
		api,
	)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)
	b.updatesChan = updates

	ctx = ctxzap.ToContext(ctx, b.logger)

	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

// processUpdates processes incoming updates
func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update := <-b.updatesChan:
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware processes update through middleware chain
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(u3)
			})
		})
	})
}

// handleUpdate routes update to appropriate handler
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
		return
	}
}

// handleMessage handles incoming messages
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	chatID := message.Chat.ID

	// The chat mode decides whether the text is a consultation turn or the
	// answer to a pending clarification question.
	mode := state.ModeChat
	if _, err := b.stateManager.GetChat(ctx, chatID); err == nil {
		data, err := b.stateManager.GetStateData(ctx, chatID)
		if err != nil {
			ctxzap.Error(ctx, "failed to get state data",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
			)
			b.sendError(chatID, render.ErrGeneric)
			return
		}
		mode = data.Mode
	}

	handler, exists := b.handlers[mode]
	if !exists {
		ctxzap.Warn(ctx, "no handler for mode",
			zap.String("mode", mode),
			zap.Int64("chat_id", chatID),
		)
		b.sendError(chatID, render.ErrGeneric)
		return
	}

	msg := &handlers.Message{
		ChatID:    chatID,
		UserID:    message.From.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error",
			zap.Error(err),
			zap.String("mode", mode),
			zap.Int64("chat_id", chatID),
		)
		b.sendError(chatID, render.ErrGeneric)
	}
}

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := message.Command()

	ctxzap.Info(ctx, "command received",
		zap.String("command", command),
		zap.Int64("chat_id", message.Chat.ID),
	)

	switch command {
	case "start":
		b.handleStartCommand(ctx, message)
	case "help":
		b.sendMessage(message.Chat.ID, render.MsgHelp, nil)
	case "tier":
		b.sendMessage(message.Chat.ID, render.MsgChooseTier, *b.keyboard.TierKeyboard())
	case "export":
		b.handleExportCommand(ctx, message)
	case "reset":
		b.handleResetCommand(ctx, message)
	default:
		b.sendError(message.Chat.ID, render.ErrUnknownCommand)
	}
}

// handleStartCommand handles /start command
func (b *Bot) handleStartCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, err := b.stateManager.GetOrCreateChat(ctx, chatID); err != nil {
		ctxzap.Error(ctx, "failed to create chat state",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		b.sendError(chatID, render.ErrGeneric)
		return
	}

	if _, err := b.sendMessage(chatID, render.MsgWelcome, *b.keyboard.TierKeyboard()); err != nil {
		ctxzap.Error(ctx, "failed to send welcome message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// handleExportCommand handles /export command
func (b *Bot) handleExportCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	chat, err := b.stateManager.GetChat(ctx, chatID)
	if err != nil {
		b.sendMessage(chatID, render.MsgNothingToExport, nil)
		return
	}
	if _, ok := b.consultations.Lookup(chat.UserID); !ok {
		b.sendMessage(chatID, render.MsgNothingToExport, nil)
		return
	}

	b.sendMessage(chatID, render.MsgChooseExportFormat, *b.keyboard.ExportKeyboard())
}

// handleResetCommand handles /reset command with confirmation
func (b *Bot) handleResetCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if _, err := b.stateManager.GetChat(ctx, chatID); err != nil {
		b.sendMessage(chatID, render.ErrNoActiveChat, nil)
		return
	}

	data, err := b.stateManager.GetStateData(ctx, chatID)
	if err != nil {
		ctxzap.Error(ctx, "failed to get state data", zap.Error(err))
		data = &state.StateData{Mode: state.ModeChat}
	}

	data.PendingConfirmation = "reset"
	if err := b.stateManager.UpdateStateData(ctx, chatID, data); err != nil {
		ctxzap.Error(ctx, "failed to record pending confirmation", zap.Error(err))
	}

	b.sendMessage(chatID, render.MsgConfirmReset, *b.keyboard.ConfirmResetKeyboard())
}

// handleCallbackQuery handles callback button clicks
func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := keyboard.ParseCallback(query.Data); err != nil {
		ctxzap.Error(ctx, "invalid callback data",
			zap.Error(err),
			zap.String("data", query.Data),
		)
		b.answerCallback(query.ID, render.ErrGeneric)
		return
	}

	handler, exists := b.handlers[handlers.HandlerStateCallback]
	if !exists {
		ctxzap.Warn(ctx, "callback handler not registered")
		b.answerCallback(query.ID, render.ErrGeneric)
		return
	}

	// Acknowledge immediately so Telegram does not expire the query while
	// the backend turn is running.
	b.answerCallback(query.ID, "")

	msg := &handlers.Message{
		ChatID:       query.Message.Chat.ID,
		UserID:       query.From.ID,
		MessageID:    query.Message.MessageID,
		CallbackData: query.Data,
		CallbackID:   query.ID,
	}

	if err := handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "callback handler error",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
		b.sendError(msg.ChatID, render.ErrGeneric)
	}
}

// sendMessage sends a message to chat
func (b *Bot) sendMessage(chatID int64, text string, replyMarkup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if replyMarkup != nil {
		msg.ReplyMarkup = replyMarkup
	}
	return b.api.Send(msg)
}

// sendError sends an error message
func (b *Bot) sendError(chatID int64, text string) {
	if _, err := b.sendMessage(chatID, text, nil); err != nil {
		b.logger.Error("failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// answerCallback answers a callback query
func (b *Bot) answerCallback(callbackID string, text string) {
	callback := tgbotapi.NewCallback(callbackID, text)
	if _, err := b.api.Request(callback); err != nil {
		b.logger.Error("failed to answer callback",
			zap.Error(err),
			zap.String("callback_id", callbackID),
		)
	}
}

// RegisterHandler registers a handler for a chat mode
func (b *Bot) RegisterHandler(handler handlers.Handler) {
	mode := handler.GetState()

	if !handlers.IsValidState(mode) {
		b.logger.Fatal("invalid handler state",
			zap.String("state", mode),
		)
	}

	b.handlers[mode] = handler
	b.logger.Info("handler registered",
		zap.String("state", mode),
	)
}

// GetAPI returns the bot API instance (for handlers)
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}

// GetStateManager returns the state manager (for handlers)
func (b *Bot) GetStateManager() *state.Manager {
	return b.stateManager
}

// GetKeyboard returns the keyboard builder (for handlers)
func (b *Bot) GetKeyboard() *keyboard.Builder {
	return b.keyboard
}

// GetConsultations returns the consultation registry (for handlers)
func (b *Bot) GetConsultations() handlers.Consultations {
	return b.consultations
}
