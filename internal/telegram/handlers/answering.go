package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hukumku/consult-gateway/internal/telegram/render"
	"github.com/hukumku/consult-gateway/internal/telegram/state"
	"go.uber.org/zap"
)

// AnsweringHandler handles free-text messages while clarification questions
// are being answered one by one.
type AnsweringHandler struct {
	BaseHandler
	consultations Consultations
	stateManager  *state.Manager
	flow          *TurnFlow
}

func NewAnsweringHandler(
	api *tgbotapi.BotAPI,
	stateManager *state.Manager,
	consultations Consultations,
	flow *TurnFlow,
	logger *zap.Logger,
) *AnsweringHandler {
	return &AnsweringHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateAnswering,
			messageSender: NewMessageSender(api, logger),
		},
		consultations: consultations,
		stateManager:  stateManager,
		flow:          flow,
	}
}

// Handle records the message text as the answer to the current question.
func (h *AnsweringHandler) Handle(ctx context.Context, msg *Message) error {
	chat, err := h.stateManager.GetChat(ctx, msg.ChatID)
	if err != nil {
		return err
	}

	client, ok := h.consultations.Lookup(chat.UserID)
	if !ok {
		// The in-memory conversation expired; fall back to a fresh chat.
		h.sendMessage(msg.ChatID, render.ErrNoActiveChat, nil)
		return h.stateManager.UpdateStateData(ctx, msg.ChatID, &state.StateData{
			Mode: state.ModeChat,
		})
	}

	if err := h.flow.RecordAnswer(ctx, msg.ChatID, client, msg.Text); err != nil {
		h.HandleError(ctx, msg.ChatID, err)
	}
	return nil
}
