package handlers

import (
	"context"
	"errors"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/telegram/render"
	pkghttp "github.com/hukumku/consult-gateway/pkg/http"
	"go.uber.org/zap"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity int

const (
	SeverityWarning ErrorSeverity = iota
	SeverityError
)

// HandlerError represents a structured error with user message and logging info
type HandlerError struct {
	Err         error
	UserMessage string
	LogMessage  string
	Severity    ErrorSeverity
}

// classifyHandlerError analyzes an error and returns a HandlerError with
// appropriate severity and messages
func classifyHandlerError(err error) *HandlerError {
	if err == nil {
		return &HandlerError{
			UserMessage: render.ErrGeneric,
			LogMessage:  "unknown error",
			Severity:    SeverityWarning,
		}
	}

	// Domain errors (non-critical)
	switch {
	case errors.Is(err, entity.ErrRequestInFlight):
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrRequestInFlight,
			LogMessage:  "request already in flight",
			Severity:    SeverityWarning,
		}
	case errors.Is(err, entity.ErrSessionNotFound), errors.Is(err, entity.ErrSessionClosed):
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrNoActiveChat,
			LogMessage:  "no active consultation",
			Severity:    SeverityWarning,
		}
	case errors.Is(err, entity.ErrNoPendingQuestions):
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrGeneric,
			LogMessage:  "no pending clarification questions",
			Severity:    SeverityWarning,
		}
	case errors.Is(err, entity.ErrFeatureNotOffered):
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrGeneric,
			LogMessage:  "feature not offered",
			Severity:    SeverityWarning,
		}
	}

	// Timeouts
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrTimeout,
			LogMessage:  "operation timed out",
			Severity:    SeverityError,
		}
	}

	// Backend connectivity problems keep the optimistic message in the log,
	// so the user is told to retry rather than retype.
	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrNetworkIssue,
			LogMessage:  "consultation backend unreachable",
			Severity:    SeverityError,
		}
	}

	var stdNetErr net.Error
	if errors.As(err, &stdNetErr) {
		if stdNetErr.Timeout() {
			return &HandlerError{
				Err:         err,
				UserMessage: render.ErrTimeout,
				LogMessage:  "network timeout",
				Severity:    SeverityError,
			}
		}
		return &HandlerError{
			Err:         err,
			UserMessage: render.ErrNetworkIssue,
			LogMessage:  "network error",
			Severity:    SeverityError,
		}
	}

	return &HandlerError{
		Err:         err,
		UserMessage: render.ErrGeneric,
		LogMessage:  "handler error",
		Severity:    SeverityError,
	}
}

// HandleError provides centralized error handling for all handlers.
// It logs the error with appropriate severity and sends a user-friendly message.
func (h *BaseHandler) HandleError(ctx context.Context, chatID int64, err error) {
	if err == nil {
		return
	}

	handlerErr := classifyHandlerError(err)

	switch handlerErr.Severity {
	case SeverityError:
		ctxzap.Error(ctx, handlerErr.LogMessage,
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	case SeverityWarning:
		ctxzap.Warn(ctx, handlerErr.LogMessage,
			zap.Error(handlerErr.Err),
			zap.Int64("chat_id", chatID),
		)
	}

	if h.messageSender != nil {
		h.messageSender.Send(chatID, handlerErr.UserMessage, nil)
	}
}
