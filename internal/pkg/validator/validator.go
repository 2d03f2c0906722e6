// Package validator checks gateway request DTOs before they reach the
// orchestration core.
package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hukumku/consult-gateway/internal/entity"
)

const maxMessageLength = 8000

type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUserMessage validates a free-text turn from the web UI.
func (v *Validator) ValidateUserMessage(req *entity.UserMessageRequest) error {
	if req.UserID == "" {
		return fmt.Errorf("%w: user_id", entity.ErrMissingField)
	}
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message", entity.ErrMissingField)
	}
	if utf8.RuneCountInString(req.Message) > maxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", entity.ErrInvalidParameter, maxMessageLength)
	}
	return nil
}

// ValidateClarificationAnswers validates the answer-map submission shape.
// Per-question validation belongs to the clarify collector.
func (v *Validator) ValidateClarificationAnswers(req *entity.ClarificationAnswersRequest) error {
	if len(req.Answers) == 0 {
		return fmt.Errorf("%w: answers", entity.ErrMissingField)
	}
	return nil
}
