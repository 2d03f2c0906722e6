package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/pkg/formatter"
	"github.com/hukumku/consult-gateway/internal/pkg/logger"
	"github.com/hukumku/consult-gateway/internal/pkg/response"
	"github.com/hukumku/consult-gateway/internal/pkg/validator"
	"go.uber.org/zap"
)

type Handler struct {
	registry  ClientRegistry
	validator *validator.Validator
}

func NewHandler(registry ClientRegistry, validator *validator.Validator) *Handler {
	return &Handler{
		registry:  registry,
		validator: validator,
	}
}

// SendMessage handles POST /consultation/message - Submit a free-text turn
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SendMessage")

	var req entity.UserMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateUserMessage(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx = logger.AddFields(ctx, zap.String("user_id", req.UserID))
	ctxzap.Info(ctx, "handling consultation turn")

	client := h.registry.Get(req.UserID, req.UserTier)
	snap, err := client.SendText(ctx, req.Message)
	if err != nil {
		h.handleClientError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "consultation turn completed",
		zap.String("session_id", snap.SessionID),
		zap.String("stage", string(snap.Stage)),
	)

	response.Success(w, toConsultationView(snap))
}

// SubmitClarifications handles POST /consultation/{user_id}/clarifications -
// Submit answers to the pending clarification questions
func (h *Handler) SubmitClarifications(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(logger.WithAction(r.Context(), "SubmitClarifications"),
		zap.String("user_id", userID),
	)

	var req entity.ClarificationAnswersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Error(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateClarificationAnswers(&req); err != nil {
		ctxzap.Error(ctx, "failed to validate request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	client, ok := h.registry.Lookup(userID)
	if !ok {
		response.Error(w, http.StatusNotFound, "no active consultation for user")
		return
	}

	snap, fields, err := client.SubmitAnswers(ctx, req.Answers)
	if err != nil {
		h.handleClientError(ctx, w, err)
		return
	}
	if len(fields) > 0 {
		ctxzap.Info(ctx, "clarification answers rejected", zap.Int("field_errors", len(fields)))
		response.ValidationError(w, fields)
		return
	}

	ctxzap.Info(ctx, "clarification answers submitted",
		zap.String("stage", string(snap.Stage)),
	)

	response.Success(w, toConsultationView(snap))
}

// ExecuteFeature handles POST /consultation/{user_id}/feature/{feature_id} -
// Select one of the pending feature offerings
func (h *Handler) ExecuteFeature(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	featureID := chi.URLParam(r, "feature_id")
	ctx := logger.AddFields(logger.WithAction(r.Context(), "ExecuteFeature"),
		zap.String("user_id", userID),
		zap.String("feature_id", featureID),
	)

	client, ok := h.registry.Lookup(userID)
	if !ok {
		response.Error(w, http.StatusNotFound, "no active consultation for user")
		return
	}

	snap, err := client.ExecuteFeature(ctx, featureID)
	if err != nil {
		h.handleClientError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "feature executed")
	response.Success(w, toConsultationView(snap))
}

// GetConsultation handles GET /consultation/{user_id} - Current conversation state
func (h *Handler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(r.Context(), zap.String("user_id", userID))

	client, ok := h.registry.Lookup(userID)
	if !ok {
		response.Error(w, http.StatusNotFound, "no active consultation for user")
		return
	}

	ctxzap.Debug(ctx, "fetching consultation state")
	response.Success(w, toConsultationView(client.Store().Snapshot()))
}

// ExportConsultation handles GET /consultation/{user_id}/export - Download the
// transcript as markdown, PDF or DOCX
func (h *Handler) ExportConsultation(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	ctx := logger.AddFields(logger.WithAction(r.Context(), "ExportConsultation"),
		zap.String("user_id", userID),
	)

	format, err := entity.ParseResultFormat(r.URL.Query().Get("format"))
	if err != nil {
		ctxzap.Warn(ctx, "invalid format parameter", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	client, ok := h.registry.Lookup(userID)
	if !ok {
		response.Error(w, http.StatusNotFound, "no active consultation for user")
		return
	}

	fmtr, err := formatter.NewFactory().Create(format)
	if err != nil {
		ctxzap.Error(ctx, "format not implemented", zap.Error(err))
		response.Error(w, http.StatusNotImplemented, "format not implemented")
		return
	}

	snap := client.Store().Snapshot()
	body, err := fmtr.Format(formatter.Transcript(snap))
	if err != nil {
		ctxzap.Error(ctx, "failed to format transcript", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to format transcript")
		return
	}

	ctxzap.Info(ctx, "transcript exported", zap.String("format", string(format)))
	filename := fmt.Sprintf("konsultasi-%s%s", userID, fmtr.FileExtension())
	response.Document(w, fmtr.ContentType(), filename, body)
}

func (h *Handler) handleClientError(ctx context.Context, w http.ResponseWriter, err error) {
	ctxzap.Error(ctx, "consultation request failed", zap.Error(err))

	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, "consultation not found")
	case errors.Is(err, entity.ErrRequestInFlight):
		response.Error(w, http.StatusConflict, "a request is already in progress for this consultation")
	case errors.Is(err, entity.ErrNoPendingQuestions):
		response.Error(w, http.StatusConflict, "no clarification questions are pending")
	case errors.Is(err, entity.ErrFeatureNotOffered):
		response.Error(w, http.StatusConflict, "feature is not offered in this consultation")
	case errors.Is(err, entity.ErrTierForbidden):
		response.Error(w, http.StatusForbidden, "subscription tier does not allow this feature")
	case errors.Is(err, entity.ErrSessionClosed):
		response.Error(w, http.StatusGone, "consultation has been closed")
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidParameter):
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		response.Error(w, http.StatusBadGateway, "consultation backend unavailable")
	}
}
