// internal/controller/response.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	appErrors "github.com/unclebandit/mailchimp-backend/internal/errors"
	"github.com/unclebandit/mailchimp-backend/internal/upload"
)

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // campaign bodies are HTML
	enc.Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case appErrors.IsValidation(err):
		return http.StatusBadRequest
	case appErrors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	respondWithError(w, statusFor(err), err.Error())
}

// writeUploadError reports a failed multipart upload.
func writeUploadError(w http.ResponseWriter, err error) {
	var uerr *upload.Error
	switch {
	case errors.Is(err, upload.ErrNoFile):
		respondWithError(w, http.StatusBadRequest, "No file uploaded")
	case errors.As(err, &uerr):
		respondWithJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "File upload error",
			"details": uerr.Error(),
		})
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
