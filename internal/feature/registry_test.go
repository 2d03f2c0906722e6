package feature

import (
	"testing"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownFeature(t *testing.T) {
	meta, ok := Lookup("document_analysis")
	require.True(t, ok)
	assert.Equal(t, "Document Analysis", meta.Name)
	assert.Equal(t, entity.TierProfessional, meta.RequiredTier)
	assert.True(t, meta.RequiresDocument)
}

func TestLookupUnknownFeature(t *testing.T) {
	_, ok := Lookup("quantum_litigation")
	assert.False(t, ok)

	fallback := Fallback("quantum_litigation")
	assert.Equal(t, "quantum_litigation", fallback.ID)
	assert.NotEmpty(t, fallback.Name)
	// Unknown features must not default to an accessible tier.
	assert.Equal(t, entity.TierPremium, fallback.RequiredTier)
}

func TestAllEntriesAreWellFormed(t *testing.T) {
	all := All()
	require.NotEmpty(t, all)

	for _, meta := range all {
		assert.NotEmpty(t, meta.ID)
		assert.NotEmpty(t, meta.Name)
		assert.NotEmpty(t, meta.Description)

		byID, ok := Lookup(meta.ID)
		require.True(t, ok, "All() entry %s must be reachable via Lookup", meta.ID)
		assert.Equal(t, meta, byID)
	}
}
