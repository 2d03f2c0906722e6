package orchestrator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry(conn ConsultConnector) *Registry {
	return NewRegistry(conn, zap.NewNop(), time.Minute, time.Minute)
}

func TestTierUpgradeAppliesToActiveConversation(t *testing.T) {
	result, _ := json.Marshal("daftar pasal yang relevan")
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
	r := newTestRegistry(conn)

	client := r.Get("u1", entity.TierFree)
	_, err := client.SendText(context.Background(), "Cari dasar hukumnya")
	require.NoError(t, err)

	_, err = client.ExecuteFeature(context.Background(), "legal_research")
	require.ErrorIs(t, err, entity.ErrTierForbidden)

	// The upgrade lands on the existing conversation, not a fresh one.
	upgraded := r.Get("u1", entity.TierProfessional)
	require.Same(t, client, upgraded)

	snap, err := upgraded.ExecuteFeature(context.Background(), "legal_research")
	require.NoError(t, err)
	assert.Equal(t, entity.TierProfessional, snap.UserTier)
	assert.Equal(t, 1, conn.execCalls)
}

func TestBlankTierKeepsCurrentTier(t *testing.T) {
	r := newTestRegistry(&fakeConnector{})

	r.Get("u1", entity.TierPremium)
	client := r.Get("u1", "")
	assert.Equal(t, entity.TierPremium, client.Store().UserTier())
}

func TestDropClosesClient(t *testing.T) {
	r := newTestRegistry(&fakeConnector{})

	client := r.Get("u1", entity.TierFree)
	r.Drop("u1")

	_, ok := r.Lookup("u1")
	assert.False(t, ok)
	_, err := client.SendText(context.Background(), "halo")
	assert.ErrorIs(t, err, entity.ErrSessionClosed)
}
