// Package orchestrator coordinates consultation turns: it sends user input
// or clarification answers to the backend, applies the resulting stage and
// content update to the session store, and dispatches feature executions.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/clarify"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/offering"
	"github.com/hukumku/consult-gateway/internal/session"
	"go.uber.org/zap"
)

// Client drives one conversation. It owns its session store exclusively and
// allows a single in-flight request at a time: a second submission while one
// is outstanding fails fast instead of racing to update the store.
type Client struct {
	store     *session.Store
	collector *clarify.Collector
	connector ConsultConnector
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight bool
	closed   bool
}

func NewClient(store *session.Store, connector ConsultConnector, logger *zap.Logger) *Client {
	return &Client{
		store:     store,
		collector: clarify.NewCollector(),
		connector: connector,
		logger:    logger,
	}
}

func (c *Client) Store() *session.Store {
	return c.store
}

// PendingQuestions returns the clarification questions awaiting answers.
func (c *Client) PendingQuestions() []entity.ClarificationQuestion {
	return c.collector.Questions()
}

// Close marks the client as torn down. A response still in flight is
// discarded instead of being applied to a store nobody renders anymore.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// SendText submits a free-text turn. The user message is appended to the
// log before the network call resolves and is kept on failure, so a retry
// does not require retyping.
func (c *Client) SendText(ctx context.Context, text string) (session.Snapshot, error) {
	if err := c.beginTurn(); err != nil {
		return c.store.Snapshot(), err
	}
	defer c.endTurn()

	c.store.AppendMessage(entity.ChatMessage{
		ID:        uuid.New().String(),
		Role:      entity.RoleUser,
		Content:   text,
		Stage:     c.store.Stage(),
		CreatedAt: time.Now(),
	})

	return c.sendTurn(ctx, text, nil)
}

// AnswerQuestion records one clarification answer without submitting. Used
// by front ends that collect answers incrementally.
func (c *Client) AnswerQuestion(question, value string) error {
	return c.collector.SetAnswer(question, value)
}

// SubmitAnswers applies an answer map to the pending questions and submits
// the turn. Validation failures never reach the network: they come back as
// per-question field errors with the questions still pending. Keys that do
// not match a pending question are reported the same way, not dropped.
func (c *Client) SubmitAnswers(ctx context.Context, answers map[string]string) (session.Snapshot, []entity.FieldError, error) {
	if !c.collector.HasPending() {
		return c.store.Snapshot(), nil, entity.ErrNoPendingQuestions
	}

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var unknown []entity.FieldError
	for _, k := range keys {
		// Typed errors are recorded per question; Submit reports them.
		if err := c.collector.SetAnswer(k, answers[k]); errors.Is(err, entity.ErrUnknownQuestion) {
			unknown = append(unknown, entity.FieldError{Question: k, Error: err.Error()})
		}
	}
	if len(unknown) > 0 {
		return c.store.Snapshot(), append(unknown, c.collector.FieldErrors()...), nil
	}

	return c.SubmitClarifications(ctx)
}

// SubmitClarifications validates the collected answers and, when every
// required question is answered, sends them as one turn.
func (c *Client) SubmitClarifications(ctx context.Context) (session.Snapshot, []entity.FieldError, error) {
	if !c.collector.HasPending() {
		return c.store.Snapshot(), nil, entity.ErrNoPendingQuestions
	}

	if err := c.beginTurn(); err != nil {
		return c.store.Snapshot(), nil, err
	}
	defer c.endTurn()

	answerMap, fields := c.collector.Submit()
	if len(fields) > 0 {
		return c.store.Snapshot(), fields, nil
	}

	snap, err := c.sendTurn(ctx, "", answerMap)
	if err != nil {
		// The turn failed before the backend consumed the answers; restore
		// them so the user can resubmit without re-answering.
		c.collector.SetQuestions(c.store.PendingClarifications())
		for q, v := range answerMap {
			_ = c.collector.SetAnswer(q, v)
		}
		return snap, nil, err
	}
	return snap, nil, nil
}

// ExecuteFeature dispatches one feature execution. The tier gate runs
// locally first: a select for a feature the user's tier forbids is refused
// before any network call is made.
func (c *Client) ExecuteFeature(ctx context.Context, featureID string) (session.Snapshot, error) {
	selected, err := offering.Gate(c.store.PendingOfferings(), featureID, c.store.UserTier())
	if err != nil {
		return c.store.Snapshot(), err
	}

	if err := c.beginTurn(); err != nil {
		return c.store.Snapshot(), err
	}
	defer c.endTurn()

	resp, err := c.connector.ExecuteFeature(ctx, &entity.ExecuteFeatureRequest{
		SessionID: c.store.SessionID(),
		FeatureID: selected.FeatureID,
	})
	if err != nil {
		ctxzap.Error(ctx, "feature execution failed",
			zap.String("feature_id", featureID),
			zap.Error(err),
		)
		return c.store.Snapshot(), err
	}

	if c.discarded() {
		ctxzap.Warn(ctx, "discarding feature result for closed session")
		return session.Snapshot{}, entity.ErrSessionClosed
	}

	c.store.AppendMessage(entity.ChatMessage{
		ID:        uuid.New().String(),
		Role:      entity.RoleAssistant,
		Content:   renderResult(resp.Result),
		Stage:     entity.StageFeatureExecution,
		CreatedAt: time.Now(),
	})
	// The offering has been consumed.
	c.store.SetPendingOfferings(nil)

	return c.store.Snapshot(), nil
}

func (c *Client) sendTurn(ctx context.Context, text string, answers map[string]string) (session.Snapshot, error) {
	req := &entity.SendMessageRequest{
		Message:              text,
		SessionID:            c.store.SessionID(),
		UserID:               c.store.UserID(),
		ClarificationAnswers: answers,
	}

	resp, err := c.connector.SendMessage(ctx, req)
	if err != nil {
		ctxzap.Error(ctx, "consultation turn failed", zap.Error(err))
		// Stage and pending sets stay untouched; the optimistic user
		// message stays in the log for retry.
		return c.store.Snapshot(), err
	}

	if c.discarded() {
		ctxzap.Warn(ctx, "discarding backend response for closed session",
			zap.String("session_id", resp.SessionID),
		)
		return session.Snapshot{}, entity.ErrSessionClosed
	}

	return c.applyResponse(ctx, resp)
}

// applyResponse performs the single store update of a turn.
func (c *Client) applyResponse(ctx context.Context, resp *entity.SendMessageResponse) (session.Snapshot, error) {
	if err := c.store.SetSession(resp.SessionID); err != nil {
		// A changed session id mid-conversation is a fault, not a user
		// error; refuse to apply the update on top of foreign state.
		ctxzap.Error(ctx, "backend returned conflicting session id", zap.Error(err))
		return c.store.Snapshot(), err
	}

	c.store.AppendMessage(entity.ChatMessage{
		ID:        resp.MessageID,
		Role:      entity.RoleAssistant,
		Content:   resp.AIResponse,
		Stage:     resp.ConversationStage,
		Offerings: resp.FeatureOfferings,
		Questions: resp.Questions,
		CreatedAt: time.Now(),
	})
	c.store.SetStage(resp.ConversationStage)

	// Pending sets are replaced wholesale: anything the response did not
	// re-issue is gone.
	c.store.SetPendingClarifications(resp.Questions)
	c.store.SetPendingOfferings(resp.FeatureOfferings)
	c.collector.SetQuestions(resp.Questions)

	return c.store.Snapshot(), nil
}

func (c *Client) beginTurn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return entity.ErrSessionClosed
	}
	if c.inFlight {
		return entity.ErrRequestInFlight
	}
	c.inFlight = true
	return nil
}

func (c *Client) endTurn() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Client) discarded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// renderResult turns an opaque feature result into display text. Strings
// pass through; anything else is pretty-printed JSON.
func renderResult(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var buf map[string]any
	if err := json.Unmarshal(raw, &buf); err == nil {
		pretty, err := json.MarshalIndent(buf, "", "  ")
		if err == nil {
			return string(pretty)
		}
	}

	return string(raw)
}
