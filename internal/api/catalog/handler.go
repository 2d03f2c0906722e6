// Package catalog exposes the static feature registry over HTTP so front
// ends can render feature descriptions outside a conversation.
package catalog

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/feature"
	"github.com/hukumku/consult-gateway/internal/pkg/response"
	"github.com/hukumku/consult-gateway/internal/tier"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// featureView is one catalog entry, optionally annotated with whether the
// requesting tier can use it.
type featureView struct {
	feature.Metadata
	Accessible *bool `json:"accessible,omitempty"`
}

// ListFeatures handles GET /features - Feature catalog with tier requirements.
// With ?tier= each entry is annotated with accessibility for that tier.
func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	features := feature.All()
	sort.Slice(features, func(i, j int) bool { return features[i].ID < features[j].ID })

	userTier := entity.UserTier(r.URL.Query().Get("tier"))

	views := make([]featureView, 0, len(features))
	for _, meta := range features {
		v := featureView{Metadata: meta}
		if userTier != "" {
			accessible := tier.HasAccess(userTier, meta.RequiredTier)
			v.Accessible = &accessible
		}
		views = append(views, v)
	}

	response.Success(w, map[string]any{
		"features": views,
	})
}

// GetFeature handles GET /features/{feature_id} - Single feature metadata
func (h *Handler) GetFeature(w http.ResponseWriter, r *http.Request) {
	featureID := chi.URLParam(r, "feature_id")

	meta, ok := feature.Lookup(featureID)
	if !ok {
		response.Error(w, http.StatusNotFound, "unknown feature")
		return
	}

	response.Success(w, meta)
}

// RegisterRoutes registers catalog routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/features", func(r chi.Router) {
		r.Get("/", h.ListFeatures)
		r.Get("/{feature_id}", h.GetFeature)
	})
}
