package offering

import (
	"testing"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOfferings() []entity.FeatureOffering {
	return []entity.FeatureOffering{
		{FeatureID: "document_summary", Name: "Document Summary", RequiredTier: entity.TierFree},
		{FeatureID: "legal_research", Name: "Legal Research", RequiredTier: entity.TierProfessional},
		{FeatureID: "contract_drafting", Name: "Contract Drafting", RequiredTier: entity.TierPremium},
	}
}

func TestPresentDecidesCTAPerTier(t *testing.T) {
	presented := Present(sampleOfferings(), entity.TierProfessional)
	require.Len(t, presented, 3)

	assert.Equal(t, CTAUseNow, presented[0].CTA)
	assert.Equal(t, CTAUseNow, presented[1].CTA)
	assert.Equal(t, CTAUpgrade, presented[2].CTA)
	assert.False(t, presented[2].Accessible)
}

func TestPresentFreeTierSeesUpgradeForPremium(t *testing.T) {
	presented := Present(sampleOfferings(), entity.TierFree)

	for _, p := range presented {
		if p.Offering.RequiredTier == entity.TierFree {
			assert.Equal(t, CTAUseNow, p.CTA)
		} else {
			assert.Equal(t, CTAUpgrade, p.CTA, "feature %s", p.Offering.FeatureID)
		}
	}
}

func TestPresentFallsBackForUnknownFeature(t *testing.T) {
	presented := Present([]entity.FeatureOffering{
		{FeatureID: "brand_new_feature", Name: "New", RequiredTier: entity.TierFree},
	}, entity.TierFree)

	require.Len(t, presented, 1)
	assert.Equal(t, "brand_new_feature", presented[0].Meta.ID)
	assert.NotEmpty(t, presented[0].Meta.Name)
	// CTA follows the offering's tier, not the fallback metadata's.
	assert.Equal(t, CTAUseNow, presented[0].CTA)
}

func TestGateRefusesTierViolation(t *testing.T) {
	_, err := Gate(sampleOfferings(), "contract_drafting", entity.TierFree)
	assert.ErrorIs(t, err, entity.ErrTierForbidden)
}

func TestGateRefusesUnofferedFeature(t *testing.T) {
	_, err := Gate(sampleOfferings(), "risk_assessment", entity.TierPremium)
	assert.ErrorIs(t, err, entity.ErrFeatureNotOffered)
}

func TestGateAllowsSatisfiedTier(t *testing.T) {
	off, err := Gate(sampleOfferings(), "legal_research", entity.TierPremium)
	require.NoError(t, err)
	assert.Equal(t, "legal_research", off.FeatureID)
}
