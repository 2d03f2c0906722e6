// Package offering decides how a feature offering is presented to a user and
// gates feature selection on the user's subscription tier.
package offering

import (
	"fmt"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/feature"
	"github.com/hukumku/consult-gateway/internal/tier"
)

// CTA is the call-to-action state of one presented offering.
type CTA string

const (
	CTAUseNow  CTA = "use_now"
	CTAUpgrade CTA = "upgrade"
)

// Presented is a feature offering enriched with registry metadata and the
// CTA decision for the viewing user.
type Presented struct {
	Offering   entity.FeatureOffering `json:"offering"`
	Meta       feature.Metadata       `json:"metadata"`
	CTA        CTA                    `json:"cta"`
	Accessible bool                   `json:"accessible"`
}

// Present decorates each offering with registry metadata and decides its CTA
// from the tier policy. Offerings the tier does not satisfy get an upgrade
// CTA; select must never be reachable for them.
func Present(offerings []entity.FeatureOffering, userTier entity.UserTier) []Presented {
	out := make([]Presented, 0, len(offerings))
	for _, off := range offerings {
		meta, ok := feature.Lookup(off.FeatureID)
		if !ok {
			meta = feature.Fallback(off.FeatureID)
		}

		p := Presented{Offering: off, Meta: meta, CTA: CTAUpgrade}
		if tier.HasAccess(userTier, off.RequiredTier) {
			p.CTA = CTAUseNow
			p.Accessible = true
		}
		out = append(out, p)
	}
	return out
}

// Gate authorizes selecting featureID from the currently pending offerings.
// It refuses locally, before any network call, when the feature is not
// offered or the tier does not satisfy it. This duplicates the backend's
// access control on purpose: until the backend responds, it is the only
// barrier.
func Gate(offerings []entity.FeatureOffering, featureID string, userTier entity.UserTier) (entity.FeatureOffering, error) {
	for _, off := range offerings {
		if off.FeatureID != featureID {
			continue
		}
		if !tier.HasAccess(userTier, off.RequiredTier) {
			return entity.FeatureOffering{}, fmt.Errorf("%w: %s requires %s tier",
				entity.ErrTierForbidden, off.FeatureID, off.RequiredTier)
		}
		return off, nil
	}
	return entity.FeatureOffering{}, fmt.Errorf("%w: %s", entity.ErrFeatureNotOffered, featureID)
}
