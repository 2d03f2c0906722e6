package consultation

import (
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/offering"
	"github.com/hukumku/consult-gateway/internal/session"
)

// ConsultationView is the rendered state of one conversation: the snapshot
// plus offerings decorated with metadata and the per-tier call to action.
type ConsultationView struct {
	SessionID        string                         `json:"session_id,omitempty"`
	UserID           string                         `json:"user_id"`
	UserTier         entity.UserTier                `json:"user_tier"`
	Stage            entity.ConversationStage       `json:"conversation_stage"`
	Messages         []entity.ChatMessage           `json:"messages"`
	PendingQuestions []entity.ClarificationQuestion `json:"pending_clarification_questions,omitempty"`
	Offerings        []offering.Presented           `json:"feature_offerings,omitempty"`
}

func toConsultationView(snap session.Snapshot) ConsultationView {
	return ConsultationView{
		SessionID:        snap.SessionID,
		UserID:           snap.UserID,
		UserTier:         snap.UserTier,
		Stage:            snap.Stage,
		Messages:         snap.Messages,
		PendingQuestions: snap.PendingQuestions,
		Offerings:        offering.Present(snap.PendingOfferings, snap.UserTier),
	}
}
