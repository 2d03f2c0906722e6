package response

import (
	"encoding/json"
	"net/http"

	"github.com/hukumku/consult-gateway/internal/entity"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Can't change the response at this point
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// Error writes an error response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, entity.ErrorResponse{Error: message})
}

// ValidationError writes a 422 with per-question field errors.
func ValidationError(w http.ResponseWriter, fields []entity.FieldError) {
	JSON(w, http.StatusUnprocessableEntity, entity.ValidationErrorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

// Success writes a success response
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Document writes a downloadable document with the given content type.
func Document(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
