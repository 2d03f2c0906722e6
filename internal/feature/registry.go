// Package feature holds static display metadata for the premium features the
// consultation backend may offer. The registry is read-only at runtime; new
// features are added here, never registered dynamically.
package feature

import "github.com/hukumku/consult-gateway/internal/entity"

// Metadata supplements the wire payload of a FeatureOffering with display
// information that is stable across conversations.
type Metadata struct {
	ID               string          `json:"feature_id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	UseCases         []string        `json:"use_cases,omitempty"`
	TypicalOutput    string          `json:"typical_output,omitempty"`
	TimeEstimate     string          `json:"time_estimate,omitempty"`
	RequiresDocument bool            `json:"requires_document"`
	RequiredTier     entity.UserTier `json:"required_tier"`
}

var registry = map[string]Metadata{
	"document_analysis": {
		ID:          "document_analysis",
		Name:        "Document Analysis",
		Description: "Clause-by-clause review of an uploaded legal document with risk annotations.",
		UseCases: []string{
			"Reviewing an employment contract before signing",
			"Checking a lease agreement for unusual clauses",
		},
		TypicalOutput:    "Annotated summary with flagged clauses and plain-language explanations",
		TimeEstimate:     "2-3 minutes",
		RequiresDocument: true,
		RequiredTier:     entity.TierProfessional,
	},
	"contract_drafting": {
		ID:          "contract_drafting",
		Name:        "Contract Drafting",
		Description: "Generates a draft agreement tailored to the facts collected in this consultation.",
		UseCases: []string{
			"Drafting a freelance service agreement",
			"Preparing a simple loan agreement between parties",
		},
		TypicalOutput:    "Complete draft contract ready for review",
		TimeEstimate:     "3-5 minutes",
		RequiresDocument: false,
		RequiredTier:     entity.TierPremium,
	},
	"legal_research": {
		ID:          "legal_research",
		Name:        "Legal Research",
		Description: "Finds the statutes, regulations and precedents relevant to the consultation topic.",
		UseCases: []string{
			"Locating the articles governing employment termination",
			"Finding precedents for consumer protection disputes",
		},
		TypicalOutput:    "Cited list of applicable provisions with short commentary",
		TimeEstimate:     "1-2 minutes",
		RequiresDocument: false,
		RequiredTier:     entity.TierProfessional,
	},
	"risk_assessment": {
		ID:          "risk_assessment",
		Name:        "Risk Assessment",
		Description: "Scores the legal exposure of the situation described and suggests mitigations.",
		UseCases: []string{
			"Estimating exposure before terminating a contract early",
		},
		TypicalOutput:    "Risk matrix with likelihood, impact and recommended next steps",
		TimeEstimate:     "2-4 minutes",
		RequiresDocument: false,
		RequiredTier:     entity.TierPremium,
	},
	"document_summary": {
		ID:          "document_summary",
		Name:        "Document Summary",
		Description: "Condenses a legal document into its key obligations, rights and deadlines.",
		UseCases: []string{
			"Getting the gist of a long terms-of-service document",
		},
		TypicalOutput:    "One-page summary grouped by obligation holder",
		TimeEstimate:     "About a minute",
		RequiresDocument: true,
		RequiredTier:     entity.TierFree,
	},
}

// Lookup returns metadata for a feature identifier. A missing identifier is
// not an error; callers render fallback metadata instead.
func Lookup(featureID string) (Metadata, bool) {
	meta, ok := registry[featureID]
	return meta, ok
}

// Fallback builds generic metadata for an identifier the registry does not
// know, so an offering from a newer backend still renders.
func Fallback(featureID string) Metadata {
	return Metadata{
		ID:           featureID,
		Name:         "Premium Feature",
		Description:  "Additional analysis offered for this consultation.",
		RequiredTier: entity.TierPremium,
	}
}

// All returns every registered feature. Order is not specified.
func All() []Metadata {
	out := make([]Metadata, 0, len(registry))
	for _, meta := range registry {
		out = append(out, meta)
	}
	return out
}
