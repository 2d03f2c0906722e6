package entity

import "errors"

// Domain errors
var (
	// Session errors
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionIDConflict = errors.New("session id already assigned")
	ErrSessionClosed     = errors.New("session is closed")
	ErrRequestInFlight   = errors.New("another request is already in flight")

	// Clarification errors
	ErrNoPendingQuestions = errors.New("no clarification questions pending")
	ErrAnswerRequired     = errors.New("answer is required")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrUnknownQuestion    = errors.New("unknown question")

	// Feature errors
	ErrFeatureNotOffered = errors.New("feature is not currently offered")
	ErrTierForbidden     = errors.New("feature requires a higher subscription tier")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
