// Package docs serves the OpenAPI specification and the Swagger UI.
package docs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const specPath = "docs/swagger.yaml"

// Handler returns a handler that serves the Swagger UI.
func Handler() http.HandlerFunc {
	return httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yaml"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	)
}

// specHandler serves the OpenAPI YAML file.
func specHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, specPath)
}

// RegisterRoutes registers the documentation routes on the router.
func RegisterRoutes(r chi.Router) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusFound)
	})

	r.Get("/docs/*", Handler())
	r.Get("/docs/swagger.yaml", specHandler)
}
