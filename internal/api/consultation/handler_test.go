package consultation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/orchestrator"
	"github.com/hukumku/consult-gateway/internal/pkg/validator"
	"github.com/hukumku/consult-gateway/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type scriptedConnector struct {
	responses []*entity.SendMessageResponse
	calls     int
	execResp  *entity.ExecuteFeatureResponse
	execCalls int
}

func (s *scriptedConnector) SendMessage(_ context.Context, _ *entity.SendMessageRequest) (*entity.SendMessageResponse, error) {
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func (s *scriptedConnector) ExecuteFeature(_ context.Context, _ *entity.ExecuteFeatureRequest) (*entity.ExecuteFeatureResponse, error) {
	s.execCalls++
	return s.execResp, nil
}

type fakeRegistry struct {
	clients map[string]*orchestrator.Client
	conn    orchestrator.ConsultConnector
}

func newFakeRegistry(conn orchestrator.ConsultConnector) *fakeRegistry {
	return &fakeRegistry{clients: make(map[string]*orchestrator.Client), conn: conn}
}

func (f *fakeRegistry) Get(userID string, userTier entity.UserTier) *orchestrator.Client {
	if c, ok := f.clients[userID]; ok {
		return c
	}
	c := orchestrator.NewClient(session.NewStore(userID, userTier), f.conn, zap.NewNop())
	f.clients[userID] = c
	return c
}

func (f *fakeRegistry) Lookup(userID string) (*orchestrator.Client, bool) {
	c, ok := f.clients[userID]
	return c, ok
}

func newTestRouter(reg ClientRegistry) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(reg, validator.NewValidator()))
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSendMessageReturnsConversationView(t *testing.T) {
	conn := &scriptedConnector{responses: []*entity.SendMessageResponse{{
		SessionID:         "s1",
		MessageID:         "m1",
		AIResponse:        "Mohon perjelas.",
		ConversationStage: entity.StageClarification,
		Questions: []entity.ClarificationQuestion{
			{Question: "Kapan kontrak ditandatangani?", Type: entity.AnswerTypeDate, Required: true},
		},
	}}}
	router := newTestRouter(newFakeRegistry(conn))

	rec := postJSON(t, router, "/consultation/message", entity.UserMessageRequest{
		UserID:   "u1",
		UserTier: entity.TierFree,
		Message:  "Apa syarat sah kontrak kerja?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var view ConsultationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "s1", view.SessionID)
	assert.Equal(t, entity.StageClarification, view.Stage)
	assert.Len(t, view.Messages, 2)
	assert.Len(t, view.PendingQuestions, 1)
}

func TestSendMessageRejectsBlankMessage(t *testing.T) {
	router := newTestRouter(newFakeRegistry(&scriptedConnector{}))

	rec := postJSON(t, router, "/consultation/message", entity.UserMessageRequest{
		UserID:  "u1",
		Message: "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitClarificationsFieldErrorsAre422(t *testing.T) {
	conn := &scriptedConnector{responses: []*entity.SendMessageResponse{{
		SessionID:         "s1",
		MessageID:         "m1",
		AIResponse:        "Mohon perjelas.",
		ConversationStage: entity.StageClarification,
		Questions: []entity.ClarificationQuestion{
			{Question: "Kapan kontrak ditandatangani?", Type: entity.AnswerTypeDate, Required: true},
			{Question: "Apa posisi Anda?", Type: entity.AnswerTypeText, Required: true},
		},
	}}}
	router := newTestRouter(newFakeRegistry(conn))

	rec := postJSON(t, router, "/consultation/message", entity.UserMessageRequest{
		UserID: "u1", UserTier: entity.TierFree, Message: "Halo",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/consultation/u1/clarifications", entity.ClarificationAnswersRequest{
		Answers: map[string]string{"Kapan kontrak ditandatangani?": "bukan tanggal"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body entity.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	// The malformed date and the missing required answer are both reported.
	assert.Len(t, body.Fields, 2)
	// Nothing was sent to the backend.
	assert.Equal(t, 1, conn.calls)
}

func TestSubmitClarificationsUnknownUserIs404(t *testing.T) {
	router := newTestRouter(newFakeRegistry(&scriptedConnector{}))

	rec := postJSON(t, router, "/consultation/ghost/clarifications", entity.ClarificationAnswersRequest{
		Answers: map[string]string{"q": "a"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExecuteFeatureTierForbiddenIs403(t *testing.T) {
	conn := &scriptedConnector{responses: []*entity.SendMessageResponse{{
		SessionID:         "s1",
		MessageID:         "m1",
		AIResponse:        "Saya dapat membantu lebih jauh.",
		ConversationStage: entity.StageFeatureOffering,
		FeatureOfferings: []entity.FeatureOffering{
			{FeatureID: "contract_drafting", Name: "Penyusunan Kontrak", RequiredTier: entity.TierPremium},
		},
	}}}
	router := newTestRouter(newFakeRegistry(conn))

	rec := postJSON(t, router, "/consultation/message", entity.UserMessageRequest{
		UserID: "u1", UserTier: entity.TierFree, Message: "Buatkan kontrak",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/consultation/u1/feature/contract_drafting", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, conn.execCalls)
}

func TestFreeTierOfferingRendersUpgradeCTA(t *testing.T) {
	conn := &scriptedConnector{responses: []*entity.SendMessageResponse{{
		SessionID:         "s1",
		MessageID:         "m1",
		AIResponse:        "Saya dapat membantu lebih jauh.",
		ConversationStage: entity.StageFeatureOffering,
		FeatureOfferings: []entity.FeatureOffering{
			{FeatureID: "contract_drafting", Name: "Penyusunan Kontrak", RequiredTier: entity.TierPremium},
		},
	}}}
	router := newTestRouter(newFakeRegistry(conn))

	rec := postJSON(t, router, "/consultation/message", entity.UserMessageRequest{
		UserID: "u1", UserTier: entity.TierFree, Message: "Buatkan kontrak",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var view ConsultationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Len(t, view.Offerings, 1)
	assert.Equal(t, "upgrade", string(view.Offerings[0].CTA))
	assert.False(t, view.Offerings[0].Accessible)
}

func TestGetConsultationUnknownUserIs404(t *testing.T) {
	router := newTestRouter(newFakeRegistry(&scriptedConnector{}))

	req := httptest.NewRequest(http.MethodGet, "/consultation/ghost", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportConsultationMarkdown(t *testing.T) {
	conn := &scriptedConnector{responses: []*entity.SendMessageResponse{{
		SessionID:         "s1",
		MessageID:         "m1",
		AIResponse:        "Berikut analisis awal.",
		ConversationStage: entity.StageInitialAnalysis,
	}}}
	router := newTestRouter(newFakeRegistry(conn))

	rec := postJSON(t, router, "/consultation/message", entity.UserMessageRequest{
		UserID: "u1", UserTier: entity.TierFree, Message: "Halo",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/consultation/u1/export?format=md", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "konsultasi-u1")
	assert.Contains(t, rec.Body.String(), "Berikut analisis awal.")
}

func TestExportConsultationBadFormatIs400(t *testing.T) {
	conn := &scriptedConnector{responses: []*entity.SendMessageResponse{{
		SessionID: "s1", MessageID: "m1", AIResponse: "ok",
		ConversationStage: entity.StageInitialAnalysis,
	}}}
	reg := newFakeRegistry(conn)
	router := newTestRouter(reg)

	rec := postJSON(t, router, "/consultation/message", entity.UserMessageRequest{
		UserID: "u1", UserTier: entity.TierFree, Message: "Halo",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/consultation/u1/export?format=xlsx", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
