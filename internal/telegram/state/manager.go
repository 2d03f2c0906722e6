package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hukumku/consult-gateway/internal/entity"
)

// ErrChatNotFound is returned by storage implementations when no state
// exists for a chat.
var ErrChatNotFound = errors.New("chat state not found")

// Manager manages per-chat bot state on top of a Storage implementation.
type Manager struct {
	storage Storage
}

func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
	}
}

// GetChat retrieves chat state from storage
func (m *Manager) GetChat(ctx context.Context, chatID int64) (*ChatState, error) {
	chat, err := m.storage.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat state from storage: %w", err)
	}

	return chat, nil
}

// GetOrCreateChat retrieves chat state, creating a fresh free-tier record on
// first contact. The gateway user id is derived from the chat id.
func (m *Manager) GetOrCreateChat(ctx context.Context, chatID int64) (*ChatState, error) {
	chat, err := m.storage.Get(ctx, chatID)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, ErrChatNotFound) {
		return nil, fmt.Errorf("get chat state from storage: %w", err)
	}

	now := time.Now()
	chat = &ChatState{
		ChatID:    chatID,
		UserID:    fmt.Sprintf("tg-%d", chatID),
		UserTier:  entity.TierFree,
		StateData: json.RawMessage("{}"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.SetChat(ctx, chat); err != nil {
		return nil, err
	}

	return chat, nil
}

// SetChat saves chat state to storage
func (m *Manager) SetChat(ctx context.Context, chat *ChatState) error {
	chat.UpdatedAt = time.Now()

	if err := m.storage.Set(ctx, chat); err != nil {
		return fmt.Errorf("save chat state to storage: %w", err)
	}

	return nil
}

// DeleteChat removes chat state from storage
func (m *Manager) DeleteChat(ctx context.Context, chatID int64) error {
	if err := m.storage.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("delete chat state from storage: %w", err)
	}

	return nil
}

// SetTier updates the subscription tier recorded for a chat.
func (m *Manager) SetTier(ctx context.Context, chatID int64, tier entity.UserTier) error {
	chat, err := m.GetOrCreateChat(ctx, chatID)
	if err != nil {
		return err
	}

	chat.UserTier = tier
	return m.SetChat(ctx, chat)
}

// SetSessionID records the backend session adopted for a chat.
func (m *Manager) SetSessionID(ctx context.Context, chatID int64, sessionID string) error {
	chat, err := m.GetChat(ctx, chatID)
	if err != nil {
		return err
	}

	chat.SessionID = sessionID
	return m.SetChat(ctx, chat)
}

// GetStateData extracts typed UI state for a chat.
func (m *Manager) GetStateData(ctx context.Context, chatID int64) (*StateData, error) {
	chat, err := m.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if len(chat.StateData) == 0 {
		return &StateData{
			Version: StateDataCurrentVersion,
			Mode:    ModeChat,
		}, nil
	}

	var data StateData
	if err := json.Unmarshal(chat.StateData, &data); err != nil {
		return nil, fmt.Errorf("unmarshal state data: %w", err)
	}

	if data.Version == 0 {
		data.Version = StateDataCurrentVersion
	}
	if data.Mode == "" {
		data.Mode = ModeChat
	}

	return &data, nil
}

// UpdateStateData persists the typed UI state of a chat.
func (m *Manager) UpdateStateData(ctx context.Context, chatID int64, data *StateData) error {
	chat, err := m.GetChat(ctx, chatID)
	if err != nil {
		return err
	}

	data.Version = StateDataCurrentVersion

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal state data: %w", err)
	}

	chat.StateData = jsonData
	return m.SetChat(ctx, chat)
}
