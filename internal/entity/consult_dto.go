package entity

import "encoding/json"

// Wire contract of the consultation backend.

type SendMessageRequest struct {
	Message              string            `json:"message"`
	SessionID            string            `json:"session_id,omitempty"`
	UserID               string            `json:"user_id,omitempty"`
	ClarificationAnswers map[string]string `json:"clarification_answers,omitempty"`
}

type SendMessageResponse struct {
	SessionID         string                  `json:"session_id"`
	MessageID         string                  `json:"message_id"`
	AIResponse        string                  `json:"ai_response"`
	ConversationStage ConversationStage       `json:"conversation_stage"`
	FeatureOfferings  []FeatureOffering       `json:"feature_offerings,omitempty"`
	Questions         []ClarificationQuestion `json:"clarification_questions,omitempty"`
}

type ExecuteFeatureRequest struct {
	SessionID string `json:"session_id"`
	FeatureID string `json:"feature_id"`
}

// ExecuteFeatureResponse carries a feature-specific result. The shape is
// opaque to the gateway; it is rendered as formatted text, not interpreted.
type ExecuteFeatureResponse struct {
	Result json.RawMessage `json:"result"`
}

// Gateway-facing DTOs.

type UserMessageRequest struct {
	UserID   string   `json:"user_id"`
	UserTier UserTier `json:"user_tier,omitempty"`
	Message  string   `json:"message"`
}

type ClarificationAnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// FieldError is a validation error scoped to a single clarification question.
type FieldError struct {
	Question string `json:"question"`
	Error    string `json:"error"`
}

type ValidationErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields"`
}
