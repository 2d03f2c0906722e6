package state

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hukumku/consult-gateway/internal/entity"
)

// ChatState maps a Telegram chat to its consultation identity plus the
// chat-specific UI state the bot needs between updates.
type ChatState struct {
	ChatID    int64           `json:"chat_id"`
	UserID    string          `json:"user_id"`
	UserTier  entity.UserTier `json:"user_tier"`
	SessionID string          `json:"session_id,omitempty"`
	StateData json.RawMessage `json:"state_data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Chat interaction modes.
const (
	ModeChat      = "CHAT"
	ModeAnswering = "ANSWERING"
)

// StateData contains bot UI state stored in the state_data JSONB column.
// Version 1: initial implementation
type StateData struct {
	Version int `json:"version,omitempty"`

	// Mode decides which handler consumes the next text message.
	Mode string `json:"mode,omitempty"`

	// Position in the pending clarification questions while answering one
	// by one.
	CurrentQuestionIndex int `json:"current_question_index,omitempty"`

	// Confirmation for destructive actions: "reset"
	PendingConfirmation string `json:"pending_confirmation,omitempty"`
}

const StateDataCurrentVersion = 1

// Storage defines the interface for chat state persistence
type Storage interface {
	// Get retrieves chat state by chat ID
	Get(ctx context.Context, chatID int64) (*ChatState, error)

	// Set saves chat state
	Set(ctx context.Context, chat *ChatState) error

	// Delete removes chat state
	Delete(ctx context.Context, chatID int64) error
}
