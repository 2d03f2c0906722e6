package tier

import (
	"testing"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestHasAccess(t *testing.T) {
	tests := []struct {
		name        string
		userTier    entity.UserTier
		featureTier entity.UserTier
		want        bool
	}{
		{"free can use free", entity.TierFree, entity.TierFree, true},
		{"free cannot use professional", entity.TierFree, entity.TierProfessional, false},
		{"free cannot use premium", entity.TierFree, entity.TierPremium, false},
		{"professional can use free", entity.TierProfessional, entity.TierFree, true},
		{"professional can use professional", entity.TierProfessional, entity.TierProfessional, true},
		{"professional cannot use premium", entity.TierProfessional, entity.TierPremium, false},
		{"premium can use everything", entity.TierPremium, entity.TierPremium, true},
		{"premium can use free", entity.TierPremium, entity.TierFree, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAccess(tt.userTier, tt.featureTier))
		})
	}
}

func TestHasAccessUnknownTierRanksAsFree(t *testing.T) {
	for _, featureTier := range []entity.UserTier{entity.TierFree, entity.TierProfessional, entity.TierPremium} {
		assert.Equal(t,
			HasAccess(entity.TierFree, featureTier),
			HasAccess(entity.UserTier("enterprise"), featureTier),
			"unknown user tier must behave exactly like free for feature tier %s", featureTier,
		)
	}

	// An unknown feature tier ranks as free too, so everyone may use it.
	assert.True(t, HasAccess(entity.TierFree, entity.UserTier("beta")))
}

func TestHasAccessMonotonic(t *testing.T) {
	ordered := []entity.UserTier{entity.TierFree, entity.TierProfessional, entity.TierPremium}

	for _, featureTier := range ordered {
		for i, userTier := range ordered {
			if !HasAccess(userTier, featureTier) {
				continue
			}
			// Every tier ranked at or above a granted tier must also be granted.
			for _, higher := range ordered[i:] {
				assert.True(t, HasAccess(higher, featureTier),
					"access for %s implies access for %s (feature %s)", userTier, higher, featureTier)
			}
		}
	}
}
