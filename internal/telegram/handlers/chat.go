package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/telegram/state"
	"go.uber.org/zap"
)

// ChatHandler handles free-text messages in the CHAT mode: each message is
// one consultation turn against the backend.
type ChatHandler struct {
	BaseHandler
	consultations Consultations
	stateManager  *state.Manager
	flow          *TurnFlow
}

func NewChatHandler(
	api *tgbotapi.BotAPI,
	stateManager *state.Manager,
	consultations Consultations,
	flow *TurnFlow,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateChat,
			messageSender: NewMessageSender(api, logger),
		},
		consultations: consultations,
		stateManager:  stateManager,
		flow:          flow,
	}
}

// Handle sends the message text as a consultation turn.
func (h *ChatHandler) Handle(ctx context.Context, msg *Message) error {
	chat, err := h.stateManager.GetOrCreateChat(ctx, msg.ChatID)
	if err != nil {
		return err
	}

	ctxzap.Info(ctx, "sending consultation turn",
		zap.String("user_id", chat.UserID),
		zap.String("user_tier", string(chat.UserTier)),
	)

	typing := NewTypingNotifier(h.messageSender.bot, msg.ChatID, h.messageSender.logger)
	typing.Start(ctx)
	defer typing.Stop()

	client := h.consultations.Get(chat.UserID, chat.UserTier)
	snap, err := client.SendText(ctx, msg.Text)
	if err != nil {
		h.HandleError(ctx, msg.ChatID, err)
		return nil
	}

	return h.flow.RenderTurn(ctx, msg.ChatID, snap)
}
