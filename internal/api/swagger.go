package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "arbscan/internal/api/docs" // generated OpenAPI document
)

// MountSwagger registers the Swagger UI under /swagger/* and a stable
// /openapi.json alias pointing at the generated document.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/openapi.json", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/doc.json", http.StatusTemporaryRedirect)
	})
}
