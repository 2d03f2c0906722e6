// Package repository persists the Telegram chat state: which gateway user
// and backend session a chat belongs to, plus the bot UI state.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/telegram/state"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatStateRepository handles chat state persistence
type ChatStateRepository struct {
	db *pgxpool.Pool
}

// NewChatStateRepository creates a new chat state repository
func NewChatStateRepository(db *pgxpool.Pool) *ChatStateRepository {
	return &ChatStateRepository{
		db: db,
	}
}

// Get retrieves chat state by chat ID
func (r *ChatStateRepository) Get(ctx context.Context, chatID int64) (*state.ChatState, error) {
	const query = `
		SELECT chat_id, user_id, user_tier, session_id, state_data, created_at, updated_at
		FROM chat_states
		WHERE chat_id = $1`

	var (
		chat      state.ChatState
		tier      string
		sessionID *string
	)
	err := r.db.QueryRow(ctx, query, chatID).Scan(
		&chat.ChatID,
		&chat.UserID,
		&tier,
		&sessionID,
		&chat.StateData,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", state.ErrChatNotFound, chatID)
		}
		return nil, fmt.Errorf("query chat state: %w", err)
	}

	chat.UserTier = entity.UserTier(tier)
	if sessionID != nil {
		chat.SessionID = *sessionID
	}
	if len(chat.StateData) == 0 {
		chat.StateData = []byte("{}")
	}

	return &chat, nil
}

// Set saves chat state
func (r *ChatStateRepository) Set(ctx context.Context, chat *state.ChatState) error {
	const query = `
		INSERT INTO chat_states (chat_id, user_id, user_tier, session_id, state_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chat_id) DO UPDATE SET
			user_id    = EXCLUDED.user_id,
			user_tier  = EXCLUDED.user_tier,
			session_id = EXCLUDED.session_id,
			state_data = EXCLUDED.state_data,
			updated_at = EXCLUDED.updated_at`

	var sessionID *string
	if chat.SessionID != "" {
		sessionID = &chat.SessionID
	}

	stateData := []byte(chat.StateData)
	if len(stateData) == 0 {
		stateData = []byte("{}")
	}

	_, err := r.db.Exec(ctx, query,
		chat.ChatID,
		chat.UserID,
		string(chat.UserTier),
		sessionID,
		stateData,
		chat.CreatedAt,
		chat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert chat state: %w", err)
	}

	return nil
}

// Delete removes chat state
func (r *ChatStateRepository) Delete(ctx context.Context, chatID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chat_states WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("delete chat state: %w", err)
	}

	return nil
}
