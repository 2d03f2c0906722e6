package consultation

import (
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/orchestrator"
)

// ClientRegistry resolves the orchestration client of a user.
type ClientRegistry interface {
	Get(userID string, userTier entity.UserTier) *orchestrator.Client
	Lookup(userID string) (*orchestrator.Client, bool)
}
