package session

import (
	"testing"
	"time"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreStartsAtInitialInquiry(t *testing.T) {
	s := NewStore("user-1", entity.TierFree)
	assert.Equal(t, entity.StageInitialInquiry, s.Stage())
	assert.Empty(t, s.SessionID())
}

func TestSetSessionOnceOnly(t *testing.T) {
	s := NewStore("user-1", entity.TierFree)

	require.NoError(t, s.SetSession("s1"))
	assert.Equal(t, "s1", s.SessionID())

	// Re-setting the same id is a no-op, a different id is a fault.
	assert.NoError(t, s.SetSession("s1"))
	assert.ErrorIs(t, s.SetSession("s2"), entity.ErrSessionIDConflict)
	assert.Equal(t, "s1", s.SessionID())
}

func TestAppendMessageOnlyGrowsLog(t *testing.T) {
	s := NewStore("user-1", entity.TierFree)

	s.AppendMessage(entity.ChatMessage{ID: "m1", Role: entity.RoleUser, Content: "halo", CreatedAt: time.Now()})
	s.AppendMessage(entity.ChatMessage{ID: "m2", Role: entity.RoleAssistant, Content: "halo juga", CreatedAt: time.Now()})

	snap := s.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, "m1", snap.Messages[0].ID)
	assert.Equal(t, "m2", snap.Messages[1].ID)

	// Mutating the snapshot must not touch the store.
	snap.Messages[0].Content = "changed"
	assert.Equal(t, "halo", s.Snapshot().Messages[0].Content)
}

func TestStageTransitionsAreRecordedUnconditionally(t *testing.T) {
	s := NewStore("user-1", entity.TierFree)

	// The backend is authoritative; any stage may follow any other,
	// including a further turn after synthesis.
	s.SetStage(entity.StageSynthesis)
	s.SetStage(entity.StageClarification)
	assert.Equal(t, entity.StageClarification, s.Stage())
}

func TestPendingSetsReplaceWholesale(t *testing.T) {
	s := NewStore("user-1", entity.TierFree)

	s.SetPendingClarifications([]entity.ClarificationQuestion{
		{Question: "q1", Type: entity.AnswerTypeText, Required: true},
		{Question: "q2", Type: entity.AnswerTypeText},
	})
	s.SetPendingOfferings([]entity.FeatureOffering{
		{FeatureID: "legal_research", RequiredTier: entity.TierProfessional},
	})

	s.SetPendingClarifications([]entity.ClarificationQuestion{
		{Question: "q3", Type: entity.AnswerTypeYesNo, Required: true},
	})
	s.SetPendingOfferings(nil)

	qs := s.PendingClarifications()
	require.Len(t, qs, 1)
	assert.Equal(t, "q3", qs[0].Question)
	assert.Empty(t, s.PendingOfferings())
}
