package consultation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers consultation routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/consultation", func(r chi.Router) {
		r.Post("/message", h.SendMessage)
		r.Get("/{user_id}", h.GetConsultation)
		r.Post("/{user_id}/clarifications", h.SubmitClarifications)
		r.Post("/{user_id}/feature/{feature_id}", h.ExecuteFeature)
		r.Get("/{user_id}/export", h.ExportConsultation)
	})
}
