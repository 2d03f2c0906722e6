package handlers

import (
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/orchestrator"
)

// Consultations resolves the orchestration client behind a chat.
// Used by the Telegram bot handlers to run consultation turns.
type Consultations interface {
	Get(userID string, userTier entity.UserTier) *orchestrator.Client
	Lookup(userID string) (*orchestrator.Client, bool)
	Drop(userID string)
}
