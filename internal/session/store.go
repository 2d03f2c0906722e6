// Package session holds the in-memory state of one consultation: session
// identity, the ordered message log, the current stage and the pending
// clarification/offering sets. It is the single source of truth the
// orchestrator updates and the front ends render from.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/hukumku/consult-gateway/internal/entity"
)

// Store owns the state of a single conversation. One orchestrator instance
// owns one store; the mutex only guards against the HTTP front end and the
// Telegram front end observing a snapshot mid-update.
type Store struct {
	mu sync.Mutex

	userID   string
	userTier entity.UserTier

	sessionID string
	messages  []entity.ChatMessage
	stage     entity.ConversationStage

	pendingQuestions []entity.ClarificationQuestion
	pendingOfferings []entity.FeatureOffering

	createdAt time.Time
	updatedAt time.Time
}

// Snapshot is an immutable view of the store for rendering.
type Snapshot struct {
	SessionID        string                         `json:"session_id,omitempty"`
	UserID           string                         `json:"user_id"`
	UserTier         entity.UserTier                `json:"user_tier"`
	Stage            entity.ConversationStage       `json:"conversation_stage"`
	Messages         []entity.ChatMessage           `json:"messages"`
	PendingQuestions []entity.ClarificationQuestion `json:"pending_clarification_questions,omitempty"`
	PendingOfferings []entity.FeatureOffering       `json:"pending_feature_offerings,omitempty"`
	UpdatedAt        time.Time                      `json:"updated_at"`
}

// NewStore creates a store for a user. The stage starts at initial_inquiry
// until the first backend response overrides it.
func NewStore(userID string, userTier entity.UserTier) *Store {
	now := time.Now()
	return &Store{
		userID:    userID,
		userTier:  userTier,
		stage:     entity.StageInitialInquiry,
		createdAt: now,
		updatedAt: now,
	}
}

// AppendMessage appends to the message log. Prior entries are never mutated
// or removed; the log only grows.
func (s *Store) AppendMessage(msg entity.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.updatedAt = time.Now()
}

// SetSession assigns the backend session identifier. A session identifier
// must not change mid-conversation: a second call with a different id is a
// programming-logic fault, reported as an error rather than applied.
func (s *Store) SetSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionID != "" && s.sessionID != id {
		return fmt.Errorf("%w: have %s, got %s", entity.ErrSessionIDConflict, s.sessionID, id)
	}
	s.sessionID = id
	return nil
}

func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// SetStage records the backend-declared stage. Any stage may follow any
// other; stage policy belongs to the backend.
func (s *Store) SetStage(stage entity.ConversationStage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = stage
	s.updatedAt = time.Now()
}

func (s *Store) Stage() entity.ConversationStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// SetPendingClarifications replaces the pending question set wholesale. An
// empty list means none pending.
func (s *Store) SetPendingClarifications(questions []entity.ClarificationQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingQuestions = questions
	s.updatedAt = time.Now()
}

// SetPendingOfferings replaces the pending offering set wholesale.
func (s *Store) SetPendingOfferings(offerings []entity.FeatureOffering) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingOfferings = offerings
	s.updatedAt = time.Now()
}

func (s *Store) PendingClarifications() []entity.ClarificationQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.ClarificationQuestion(nil), s.pendingQuestions...)
}

func (s *Store) PendingOfferings() []entity.FeatureOffering {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.FeatureOffering(nil), s.pendingOfferings...)
}

func (s *Store) UserID() string {
	return s.userID
}

func (s *Store) UserTier() entity.UserTier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userTier
}

// SetTier applies a subscription change to the running conversation. The
// offering gate reads the tier per call, so an upgrade takes effect on the
// next feature selection without a new session.
func (s *Store) SetTier(tier entity.UserTier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userTier = tier
	s.updatedAt = time.Now()
}

// Snapshot copies the current state for rendering.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SessionID:        s.sessionID,
		UserID:           s.userID,
		UserTier:         s.userTier,
		Stage:            s.stage,
		Messages:         append([]entity.ChatMessage(nil), s.messages...),
		PendingQuestions: append([]entity.ClarificationQuestion(nil), s.pendingQuestions...),
		PendingOfferings: append([]entity.FeatureOffering(nil), s.pendingOfferings...),
		UpdatedAt:        s.updatedAt,
	}
}
