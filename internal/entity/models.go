package entity

import (
	"fmt"
	"time"
)

type ConversationStage string

// Conversation stage represents the backend-declared phase of a consultation.
// The backend is authoritative on transitions; the client only records them.
const (
	StageInitialInquiry   ConversationStage = "initial_inquiry"
	StageClarification    ConversationStage = "clarification"
	StageInitialAnalysis  ConversationStage = "initial_analysis"
	StageFeatureOffering  ConversationStage = "feature_offering"
	StageFeatureExecution ConversationStage = "feature_execution"
	StageSynthesis        ConversationStage = "synthesis"
)

func (s ConversationStage) Validate() error {
	switch s {
	case StageInitialInquiry, StageClarification, StageInitialAnalysis,
		StageFeatureOffering, StageFeatureExecution, StageSynthesis:
		return nil
	default:
		return fmt.Errorf("unknown conversation stage: %s", s)
	}
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type UserTier string

const (
	TierFree         UserTier = "free"
	TierProfessional UserTier = "professional"
	TierPremium      UserTier = "premium"
)

type AnswerType string

const (
	AnswerTypeText           AnswerType = "text"
	AnswerTypeMultipleChoice AnswerType = "multiple_choice"
	AnswerTypeYesNo          AnswerType = "yes_no"
	AnswerTypeDate           AnswerType = "date"
	AnswerTypeNumber         AnswerType = "number"
)

// ChatMessage is one entry of the conversation log. Immutable once appended.
type ChatMessage struct {
	ID        string                  `json:"id"`
	Role      MessageRole             `json:"role"`
	Content   string                  `json:"content"`
	Stage     ConversationStage       `json:"stage,omitempty"`
	Offerings []FeatureOffering       `json:"feature_offerings,omitempty"`
	Questions []ClarificationQuestion `json:"clarification_questions,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

// ClarificationQuestion is a structured follow-up issued by the backend to
// narrow an ambiguous inquiry. Consumed once, then replaced wholesale by the
// next response.
type ClarificationQuestion struct {
	Question string     `json:"question"`
	Type     AnswerType `json:"answer_type"`
	Choices  []string   `json:"choices,omitempty"`
	Required bool       `json:"required"`
}

// FeatureOffering is a backend-suggested premium capability relevant to the
// current conversation.
type FeatureOffering struct {
	FeatureID    string   `json:"feature_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	RequiredTier UserTier `json:"required_tier"`
	Price        string   `json:"price,omitempty"`
	TimeEstimate string   `json:"time_estimate,omitempty"`
	Benefits     []string `json:"benefits,omitempty"`
}
