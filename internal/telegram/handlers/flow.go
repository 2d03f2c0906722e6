package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/offering"
	"github.com/hukumku/consult-gateway/internal/orchestrator"
	"github.com/hukumku/consult-gateway/internal/session"
	"github.com/hukumku/consult-gateway/internal/telegram/keyboard"
	"github.com/hukumku/consult-gateway/internal/telegram/render"
	"github.com/hukumku/consult-gateway/internal/telegram/state"
	"go.uber.org/zap"
)

// TurnFlow drives the conversation choreography shared by the message and
// callback handlers: rendering backend turns, walking the clarification
// questions one by one and submitting the collected answers.
type TurnFlow struct {
	sender       *MessageSender
	keyboard     *keyboard.Builder
	stateManager *state.Manager
}

func NewTurnFlow(sender *MessageSender, kb *keyboard.Builder, stateManager *state.Manager) *TurnFlow {
	return &TurnFlow{
		sender:       sender,
		keyboard:     kb,
		stateManager: stateManager,
	}
}

// RenderTurn presents the outcome of a backend turn: the assistant text,
// then either the first clarification question, the feature offerings or
// nothing more.
func (f *TurnFlow) RenderTurn(ctx context.Context, chatID int64, snap session.Snapshot) error {
	if snap.SessionID != "" {
		if err := f.stateManager.SetSessionID(ctx, chatID, snap.SessionID); err != nil {
			ctxzap.Warn(ctx, "failed to persist session id", zap.Error(err))
		}
	}

	if text := lastAssistantText(snap); text != "" {
		f.sender.Send(chatID, text, nil)
	}

	if len(snap.PendingQuestions) > 0 {
		if err := f.stateManager.UpdateStateData(ctx, chatID, &state.StateData{
			Mode: state.ModeAnswering,
		}); err != nil {
			return err
		}
		return f.AskQuestion(ctx, chatID, snap.PendingQuestions, 0)
	}

	if len(snap.PendingOfferings) > 0 {
		presented := offering.Present(snap.PendingOfferings, snap.UserTier)
		f.sender.Send(chatID, render.MsgOfferings, f.keyboard.OfferingsKeyboard(presented))
	}

	return f.stateManager.UpdateStateData(ctx, chatID, &state.StateData{
		Mode: state.ModeChat,
	})
}

// AskQuestion presents one clarification question with its answer controls.
func (f *TurnFlow) AskQuestion(ctx context.Context, chatID int64, questions []entity.ClarificationQuestion, index int) error {
	if index < 0 || index >= len(questions) {
		return fmt.Errorf("question index %d out of range", index)
	}
	q := questions[index]

	text := fmt.Sprintf(render.MsgQuestionProgress, index+1, len(questions), q.Question)
	if !q.Required {
		text += "\n\n" + render.MsgQuestionOptionalHint
	}

	var markup interface{}
	if kb := f.keyboard.QuestionKeyboard(q); kb != nil {
		markup = *kb
	}
	f.sender.Send(chatID, text, markup)

	data, err := f.stateManager.GetStateData(ctx, chatID)
	if err != nil {
		return err
	}
	data.Mode = state.ModeAnswering
	data.CurrentQuestionIndex = index
	return f.stateManager.UpdateStateData(ctx, chatID, data)
}

// RecordAnswer records the answer for the current question and advances.
// A typed validation error re-asks the same question; it never aborts the
// answering flow.
func (f *TurnFlow) RecordAnswer(ctx context.Context, chatID int64, client *orchestrator.Client, value string) error {
	data, err := f.stateManager.GetStateData(ctx, chatID)
	if err != nil {
		return err
	}

	questions := client.PendingQuestions()
	if len(questions) == 0 {
		return entity.ErrNoPendingQuestions
	}
	if data.CurrentQuestionIndex >= len(questions) {
		data.CurrentQuestionIndex = 0
	}
	q := questions[data.CurrentQuestionIndex]

	if err := client.AnswerQuestion(q.Question, value); err != nil {
		if errors.Is(err, entity.ErrInvalidAnswer) {
			f.sender.Send(chatID, fmt.Sprintf(render.MsgAnswerInvalid, err.Error()), nil)
			return f.AskQuestion(ctx, chatID, questions, data.CurrentQuestionIndex)
		}
		return err
	}

	return f.advance(ctx, chatID, client, questions, data.CurrentQuestionIndex)
}

// SkipCurrent moves past the current question without an answer. Any
// rejected attempt on the question is cleared so a skipped question does not
// block submission.
func (f *TurnFlow) SkipCurrent(ctx context.Context, chatID int64, client *orchestrator.Client) error {
	data, err := f.stateManager.GetStateData(ctx, chatID)
	if err != nil {
		return err
	}

	questions := client.PendingQuestions()
	if len(questions) == 0 {
		return entity.ErrNoPendingQuestions
	}
	if data.CurrentQuestionIndex >= len(questions) {
		data.CurrentQuestionIndex = 0
	}
	if err := client.AnswerQuestion(questions[data.CurrentQuestionIndex].Question, ""); err != nil {
		return err
	}

	return f.advance(ctx, chatID, client, questions, data.CurrentQuestionIndex)
}

func (f *TurnFlow) advance(ctx context.Context, chatID int64, client *orchestrator.Client, questions []entity.ClarificationQuestion, index int) error {
	next := index + 1
	if next < len(questions) {
		return f.AskQuestion(ctx, chatID, questions, next)
	}
	return f.SubmitAnswers(ctx, chatID, client)
}

// SubmitAnswers submits the collected answers as one turn. Per-question
// failures jump back to the first flagged question; the rest of the answers
// stay recorded.
func (f *TurnFlow) SubmitAnswers(ctx context.Context, chatID int64, client *orchestrator.Client) error {
	f.sender.Send(chatID, render.MsgAnswersSubmitting, nil)

	snap, fields, err := client.SubmitClarifications(ctx)
	if err != nil {
		return err
	}

	if len(fields) > 0 {
		f.sender.Send(chatID, fmt.Sprintf(render.MsgAnswerInvalid, fields[0].Error), nil)

		questions := client.PendingQuestions()
		for i, q := range questions {
			if q.Question == fields[0].Question {
				return f.AskQuestion(ctx, chatID, questions, i)
			}
		}
		return f.AskQuestion(ctx, chatID, questions, 0)
	}

	return f.RenderTurn(ctx, chatID, snap)
}

// lastAssistantText returns the newest assistant message of a snapshot.
func lastAssistantText(snap session.Snapshot) string {
	for i := len(snap.Messages) - 1; i >= 0; i-- {
		if snap.Messages[i].Role == entity.RoleAssistant {
			return snap.Messages[i].Content
		}
	}
	return ""
}
