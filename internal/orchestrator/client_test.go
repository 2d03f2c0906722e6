package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConnector scripts backend responses per call.
type fakeConnector struct {
	sendResponses []*entity.SendMessageResponse
	sendErrs      []error
	sendCalls     int
	lastSendReq   *entity.SendMessageRequest

	execResp  *entity.ExecuteFeatureResponse
	execErr   error
	execCalls int
	execReq   *entity.ExecuteFeatureRequest
}

func (f *fakeConnector) SendMessage(_ context.Context, req *entity.SendMessageRequest) (*entity.SendMessageResponse, error) {
	i := f.sendCalls
	f.sendCalls++
	f.lastSendReq = req
	if i < len(f.sendErrs) && f.sendErrs[i] != nil {
		return nil, f.sendErrs[i]
	}
	if i < len(f.sendResponses) {
		return f.sendResponses[i], nil
	}
	return nil, errors.New("unexpected call")
}

func (f *fakeConnector) ExecuteFeature(_ context.Context, req *entity.ExecuteFeatureRequest) (*entity.ExecuteFeatureResponse, error) {
	f.execCalls++
	f.execReq = req
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.execResp, nil
}

func newTestClient(tier entity.UserTier, conn ConsultConnector) *Client {
	return NewClient(session.NewStore("user-1", tier), conn, zap.NewNop())
}

func clarificationResponse() *entity.SendMessageResponse {
	return &entity.SendMessageResponse{
		SessionID:         "s1",
		MessageID:         "m1",
		AIResponse:        "Mohon jawab pertanyaan berikut.",
		ConversationStage: entity.StageClarification,
		Questions: []entity.ClarificationQuestion{
			{Question: "Sejak kapan bekerja?", Type: entity.AnswerTypeText, Required: true},
			{Question: "Apa posisi Anda?", Type: entity.AnswerTypeText, Required: true},
		},
	}
}

func TestFirstTurnAdoptsSessionAndPendingQuestions(t *testing.T) {
	conn := &fakeConnector{sendResponses: []*entity.SendMessageResponse{clarificationResponse()}}
	c := newTestClient(entity.TierFree, conn)

	snap, err := c.SendText(context.Background(), "Apa syarat sah kontrak kerja?")
	require.NoError(t, err)

	// Request carried no session id, response assigned one.
	assert.Empty(t, conn.lastSendReq.SessionID)
	assert.Equal(t, "s1", snap.SessionID)
	assert.Equal(t, entity.StageClarification, snap.Stage)

	require.Len(t, snap.Messages, 2)
	assert.Equal(t, entity.RoleUser, snap.Messages[0].Role)
	assert.Equal(t, "Apa syarat sah kontrak kerja?", snap.Messages[0].Content)
	assert.Equal(t, entity.RoleAssistant, snap.Messages[1].Role)

	require.Len(t, snap.PendingQuestions, 2)
	assert.True(t, snap.PendingQuestions[0].Required)
	assert.True(t, snap.PendingQuestions[1].Required)
}

func TestClarificationSubmissionBlockedUntilRequiredAnswered(t *testing.T) {
	conn := &fakeConnector{sendResponses: []*entity.SendMessageResponse{clarificationResponse()}}
	c := newTestClient(entity.TierFree, conn)

	_, err := c.SendText(context.Background(), "Apa syarat sah kontrak kerja?")
	require.NoError(t, err)

	_, fields, err := c.SubmitAnswers(context.Background(), map[string]string{
		"Sejak kapan bekerja?": "2023",
	})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Apa posisi Anda?", fields[0].Question)

	// The incomplete submission never reached the network.
	assert.Equal(t, 1, conn.sendCalls)
}

func TestSubmitAnswersReportsUnknownQuestionKeys(t *testing.T) {
	conn := &fakeConnector{sendResponses: []*entity.SendMessageResponse{clarificationResponse()}}
	c := newTestClient(entity.TierFree, conn)

	_, err := c.SendText(context.Background(), "Apa syarat sah kontrak kerja?")
	require.NoError(t, err)

	_, fields, err := c.SubmitAnswers(context.Background(), map[string]string{
		"Sejak kapan bekerja?": "2023",
		"Apa posisi Anda?":     "Staf administrasi",
		"Pertanyaan asing":     "nilai",
	})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Pertanyaan asing", fields[0].Question)
	assert.Contains(t, fields[0].Error, entity.ErrUnknownQuestion.Error())

	// Nothing was sent; the valid answers stay recorded for resubmission.
	assert.Equal(t, 1, conn.sendCalls)
	require.True(t, c.collector.HasPending())
}

func TestClarificationAnswersSentKeyedByQuestionText(t *testing.T) {
	conn := &fakeConnector{sendResponses: []*entity.SendMessageResponse{
		clarificationResponse(),
		{
			SessionID:         "s1",
			MessageID:         "m2",
			AIResponse:        "Analisis awal.",
			ConversationStage: entity.StageInitialAnalysis,
		},
	}}
	c := newTestClient(entity.TierFree, conn)

	_, err := c.SendText(context.Background(), "Apa syarat sah kontrak kerja?")
	require.NoError(t, err)

	snap, fields, err := c.SubmitAnswers(context.Background(), map[string]string{
		"Sejak kapan bekerja?": "2023",
		"Apa posisi Anda?":     "Staf administrasi",
	})
	require.NoError(t, err)
	require.Empty(t, fields)

	require.NotNil(t, conn.lastSendReq.ClarificationAnswers)
	assert.Equal(t, "2023", conn.lastSendReq.ClarificationAnswers["Sejak kapan bekerja?"])
	assert.Equal(t, "s1", conn.lastSendReq.SessionID)

	// Old pending questions are gone, not merged.
	assert.Empty(t, snap.PendingQuestions)
	assert.Equal(t, entity.StageInitialAnalysis, snap.Stage)
}

func TestFailedTurnKeepsUserMessageAndState(t *testing.T) {
	conn := &fakeConnector{
		sendErrs: []error{errors.New("connection refused")},
		sendResponses: []*entity.SendMessageResponse{
			nil,
			clarificationResponse(),
		},
	}
	c := newTestClient(entity.TierFree, conn)

	_, err := c.SendText(context.Background(), "Apa syarat sah kontrak kerja?")
	require.Error(t, err)

	snap := c.Store().Snapshot()
	// Optimistic echo is kept so the user can retry without retyping.
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, entity.RoleUser, snap.Messages[0].Role)
	assert.Equal(t, entity.StageInitialInquiry, snap.Stage)
	assert.Empty(t, snap.SessionID)

	// Retrying the identical input appends as the next message, not a
	// duplicate of the failed one.
	snap, err = c.SendText(context.Background(), "Apa syarat sah kontrak kerja?")
	require.NoError(t, err)
	require.Len(t, snap.Messages, 3)
	assert.Equal(t, entity.RoleUser, snap.Messages[1].Role)
	assert.Equal(t, entity.RoleAssistant, snap.Messages[2].Role)
	assert.Equal(t, "s1", snap.SessionID)
}

func TestTierViolationNeverReachesBackend(t *testing.T) {
	conn := &fakeConnector{sendResponses: []*entity.SendMessageResponse{{
		SessionID:         "s1",
		MessageID:         "m1",
		AIResponse:        "Saya dapat membantu lebih jauh.",
		ConversationStage: entity.StageFeatureOffering,
		FeatureOfferings: []entity.FeatureOffering{
			{FeatureID: "contract_drafting", Name: "Penyusunan Kontrak", RequiredTier: entity.TierPremium},
		},
	}}}
	c := newTestClient(entity.TierFree, conn)

	_, err := c.SendText(context.Background(), "Buatkan kontrak")
	require.NoError(t, err)

	_, err = c.ExecuteFeature(context.Background(), "contract_drafting")
	assert.ErrorIs(t, err, entity.ErrTierForbidden)
	assert.Zero(t, conn.execCalls)
}

func TestExecuteFeatureConsumesOffering(t *testing.T) {
	result, _ := json.Marshal(map[string]any{"summary": "klausul bermasalah ditemukan"})
	conn := &fakeConnector{
		sendResponses: []*entity.SendMessageResponse{{
			SessionID:         "s1",
			MessageID:         "m1",
			AIResponse:        "Saya dapat membantu lebih jauh.",
			ConversationStage: entity.StageFeatureOffering,
			FeatureOfferings: []entity.FeatureOffering{
				{FeatureID: "legal_research", Name: "Riset Hukum", RequiredTier: entity.TierProfessional},
			},
		}},
		execResp: &entity.ExecuteFeatureResponse{Result: result},
	}
	c := newTestClient(entity.TierProfessional, conn)

	_, err := c.SendText(context.Background(), "Cari dasar hukumnya")
	require.NoError(t, err)

	snap, err := c.ExecuteFeature(context.Background(), "legal_research")
	require.NoError(t, err)

	assert.Equal(t, "s1", conn.execReq.SessionID)
	assert.Equal(t, "legal_research", conn.execReq.FeatureID)

	// Result is appended as an assistant message, offering is consumed.
	last := snap.Messages[len(snap.Messages)-1]
	assert.Equal(t, entity.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "klausul bermasalah ditemukan")
	assert.Empty(t, snap.PendingOfferings)
}

func TestSecondSubmissionWhileInFlightIsRefused(t *testing.T) {
	conn := newBlockingConnector(clarificationResponse())
	c := newTestClient(entity.TierFree, conn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.SendText(context.Background(), "pertama")
	}()

	<-conn.started
	_, err := c.SendText(context.Background(), "kedua")
	assert.ErrorIs(t, err, entity.ErrRequestInFlight)

	close(conn.release)
	<-done
}

func TestClosedClientDiscardsLateResponse(t *testing.T) {
	conn := newBlockingConnector(clarificationResponse())
	c := newTestClient(entity.TierFree, conn)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.SendText(context.Background(), "halo")
		errCh <- err
	}()

	<-conn.started
	c.Close()
	close(conn.release)

	assert.ErrorIs(t, <-errCh, entity.ErrSessionClosed)
	// The late response was not applied.
	assert.Empty(t, c.Store().SessionID())
	assert.Equal(t, entity.StageInitialInquiry, c.Store().Stage())
}

// blockingConnector parks SendMessage until released, to exercise the
// in-flight and liveness gates.
type blockingConnector struct {
	release chan struct{}
	resp    *entity.SendMessageResponse
	started chan struct{}
}

func newBlockingConnector(resp *entity.SendMessageResponse) *blockingConnector {
	return &blockingConnector{
		release: make(chan struct{}),
		resp:    resp,
		started: make(chan struct{}),
	}
}

func (b *blockingConnector) SendMessage(context.Context, *entity.SendMessageRequest) (*entity.SendMessageResponse, error) {
	close(b.started)
	<-b.release
	return b.resp, nil
}

func (b *blockingConnector) ExecuteFeature(context.Context, *entity.ExecuteFeatureRequest) (*entity.ExecuteFeatureResponse, error) {
	return nil, errors.New("not scripted")
}
