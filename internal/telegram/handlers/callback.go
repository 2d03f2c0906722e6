package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/feature"
	"github.com/hukumku/consult-gateway/internal/orchestrator"
	"github.com/hukumku/consult-gateway/internal/pkg/formatter"
	"github.com/hukumku/consult-gateway/internal/telegram/keyboard"
	"github.com/hukumku/consult-gateway/internal/telegram/render"
	"github.com/hukumku/consult-gateway/internal/telegram/state"
	"go.uber.org/zap"
)

// CallbackHandler routes all inline button clicks.
type CallbackHandler struct {
	BaseHandler
	consultations Consultations
	stateManager  *state.Manager
	flow          *TurnFlow
	keyboard      *keyboard.Builder
}

func NewCallbackHandler(
	api *tgbotapi.BotAPI,
	stateManager *state.Manager,
	consultations Consultations,
	flow *TurnFlow,
	kb *keyboard.Builder,
	logger *zap.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		BaseHandler: BaseHandler{
			stateName:     HandlerStateCallback,
			messageSender: NewMessageSender(api, logger),
		},
		consultations: consultations,
		stateManager:  stateManager,
		flow:          flow,
		keyboard:      kb,
	}
}

// Handle dispatches a parsed callback to its action.
func (h *CallbackHandler) Handle(ctx context.Context, msg *Message) error {
	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		return err
	}

	ctxzap.Info(ctx, "handling callback",
		zap.String("action", data.Action),
		zap.String("value", data.Value),
		zap.Int64("chat_id", msg.ChatID),
	)

	switch data.Action {
	case "tier":
		return h.handleTier(ctx, msg.ChatID, data.Value)
	case "ans":
		return h.handleAnswer(ctx, msg.ChatID, data.Value)
	case "choice":
		return h.handleChoice(ctx, msg.ChatID, data.Value)
	case "clarify":
		return h.handleClarifyControl(ctx, msg.ChatID, data.Value)
	case "feat":
		return h.handleFeature(ctx, msg.ChatID, data.Value)
	case "upgrade":
		return h.handleUpgrade(ctx, msg.ChatID, data.Value)
	case "export":
		return h.handleExport(ctx, msg.ChatID, data.Value)
	case "confirm":
		return h.handleConfirm(ctx, msg.ChatID, data.Value)
	default:
		return fmt.Errorf("unknown callback action: %s", data.Action)
	}
}

func (h *CallbackHandler) handleTier(ctx context.Context, chatID int64, value string) error {
	tier := entity.UserTier(value)
	switch tier {
	case entity.TierFree, entity.TierProfessional, entity.TierPremium:
	default:
		return fmt.Errorf("unknown tier: %s", value)
	}

	if err := h.stateManager.SetTier(ctx, chatID, tier); err != nil {
		return err
	}

	h.sendMessage(chatID, fmt.Sprintf(render.MsgTierSet, tier), nil)
	return nil
}

func (h *CallbackHandler) handleAnswer(ctx context.Context, chatID int64, value string) error {
	client, err := h.activeClient(ctx, chatID)
	if err != nil {
		h.HandleError(ctx, chatID, err)
		return nil
	}

	if err := h.flow.RecordAnswer(ctx, chatID, client, value); err != nil {
		h.HandleError(ctx, chatID, err)
	}
	return nil
}

// handleChoice resolves a multiple-choice answer referenced by index.
func (h *CallbackHandler) handleChoice(ctx context.Context, chatID int64, value string) error {
	client, err := h.activeClient(ctx, chatID)
	if err != nil {
		h.HandleError(ctx, chatID, err)
		return nil
	}

	idx, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid choice index: %s", value)
	}

	data, err := h.stateManager.GetStateData(ctx, chatID)
	if err != nil {
		return err
	}

	questions := client.PendingQuestions()
	if data.CurrentQuestionIndex >= len(questions) {
		return entity.ErrNoPendingQuestions
	}
	q := questions[data.CurrentQuestionIndex]
	if idx < 0 || idx >= len(q.Choices) {
		return fmt.Errorf("choice index %d out of range for %q", idx, q.Question)
	}

	if err := h.flow.RecordAnswer(ctx, chatID, client, q.Choices[idx]); err != nil {
		h.HandleError(ctx, chatID, err)
	}
	return nil
}

func (h *CallbackHandler) handleClarifyControl(ctx context.Context, chatID int64, value string) error {
	client, err := h.activeClient(ctx, chatID)
	if err != nil {
		h.HandleError(ctx, chatID, err)
		return nil
	}

	switch value {
	case "skip":
		if err := h.flow.SkipCurrent(ctx, chatID, client); err != nil {
			h.HandleError(ctx, chatID, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown clarify control: %s", value)
	}
}

func (h *CallbackHandler) handleFeature(ctx context.Context, chatID int64, featureID string) error {
	client, err := h.activeClient(ctx, chatID)
	if err != nil {
		h.HandleError(ctx, chatID, err)
		return nil
	}

	name := featureID
	if meta, ok := feature.Lookup(featureID); ok {
		name = meta.Name
	}
	h.sendMessage(chatID, fmt.Sprintf(render.MsgFeatureRunning, name), nil)

	typing := NewTypingNotifier(h.messageSender.bot, chatID, h.messageSender.logger)
	typing.Start(ctx)
	defer typing.Stop()

	snap, err := client.ExecuteFeature(ctx, featureID)
	if err != nil {
		if errors.Is(err, entity.ErrTierForbidden) {
			tier, _ := h.chatTier(ctx, chatID)
			return h.sendUpgradePrompt(chatID, featureID, tier)
		}
		h.HandleError(ctx, chatID, err)
		return nil
	}

	return h.flow.RenderTurn(ctx, chatID, snap)
}

func (h *CallbackHandler) handleUpgrade(ctx context.Context, chatID int64, featureID string) error {
	tier, _ := h.chatTier(ctx, chatID)
	return h.sendUpgradePrompt(chatID, featureID, tier)
}

func (h *CallbackHandler) handleExport(ctx context.Context, chatID int64, value string) error {
	chat, err := h.stateManager.GetChat(ctx, chatID)
	if err != nil {
		h.sendMessage(chatID, render.MsgNothingToExport, nil)
		return nil
	}

	client, ok := h.consultations.Lookup(chat.UserID)
	if !ok {
		h.sendMessage(chatID, render.MsgNothingToExport, nil)
		return nil
	}

	format, err := entity.ParseResultFormat(value)
	if err != nil {
		return err
	}

	fmtr, err := formatter.NewFactory().Create(format)
	if err != nil {
		return err
	}

	snap := client.Store().Snapshot()
	if len(snap.Messages) == 0 {
		h.sendMessage(chatID, render.MsgNothingToExport, nil)
		return nil
	}

	body, err := fmtr.Format(formatter.Transcript(snap))
	if err != nil {
		return fmt.Errorf("format transcript: %w", err)
	}

	filename := fmt.Sprintf("konsultasi-%d%s", chatID, fmtr.FileExtension())
	return h.messageSender.SendDocument(chatID, filename, body)
}

func (h *CallbackHandler) handleConfirm(ctx context.Context, chatID int64, value string) error {
	switch value {
	case "reset":
		chat, err := h.stateManager.GetChat(ctx, chatID)
		if err == nil {
			h.consultations.Drop(chat.UserID)
		}
		if err := h.stateManager.DeleteChat(ctx, chatID); err != nil {
			ctxzap.Warn(ctx, "failed to delete chat state", zap.Error(err))
		}
		h.sendMessage(chatID, render.MsgResetDone, nil)
		return nil
	case "keep":
		data, err := h.stateManager.GetStateData(ctx, chatID)
		if err == nil && data.PendingConfirmation != "" {
			data.PendingConfirmation = ""
			if err := h.stateManager.UpdateStateData(ctx, chatID, data); err != nil {
				ctxzap.Warn(ctx, "failed to clear pending confirmation", zap.Error(err))
			}
		}
		h.sendMessage(chatID, render.MsgResetCancelled, nil)
		return nil
	default:
		return fmt.Errorf("unknown confirmation: %s", value)
	}
}

func (h *CallbackHandler) sendUpgradePrompt(chatID int64, featureID string, current entity.UserTier) error {
	meta, ok := feature.Lookup(featureID)
	if !ok {
		meta = feature.Fallback(featureID)
	}
	if current == "" {
		current = entity.TierFree
	}

	h.sendMessage(chatID, fmt.Sprintf(render.MsgUpgradeRequired, meta.Name, meta.RequiredTier, current), nil)
	return nil
}

func (h *CallbackHandler) activeClient(ctx context.Context, chatID int64) (*orchestrator.Client, error) {
	chat, err := h.stateManager.GetChat(ctx, chatID)
	if err != nil {
		return nil, entity.ErrSessionNotFound
	}

	client, ok := h.consultations.Lookup(chat.UserID)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return client, nil
}

func (h *CallbackHandler) chatTier(ctx context.Context, chatID int64) (entity.UserTier, bool) {
	chat, err := h.stateManager.GetChat(ctx, chatID)
	if err != nil {
		return "", false
	}
	return chat.UserTier, true
}
