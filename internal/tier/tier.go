// Package tier decides whether a subscription tier may invoke a feature.
package tier

import "github.com/hukumku/consult-gateway/internal/entity"

// tierRanks fixes the order free < professional < premium.
var tierRanks = map[entity.UserTier]int{
	entity.TierFree:         0,
	entity.TierProfessional: 1,
	entity.TierPremium:      2,
}

// Rank maps a tier name to its rank. Unknown tiers rank as free so that a
// malformed tier string never grants elevated access.
func Rank(t entity.UserTier) int {
	if r, ok := tierRanks[t]; ok {
		return r
	}
	return tierRanks[entity.TierFree]
}

// HasAccess reports whether a user of tier userTier may invoke a feature
// requiring featureTier. Pure and total over any pair of strings.
func HasAccess(userTier, featureTier entity.UserTier) bool {
	return Rank(userTier) >= Rank(featureTier)
}
