// internal/controller/audience_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/mailchimp-backend/internal/mailchimp"
	"github.com/unclebandit/mailchimp-backend/internal/service"
	"github.com/unclebandit/mailchimp-backend/internal/upload"
)

type AudienceController struct {
	AudienceService *service.AudienceService
	Uploads         *upload.Store
	Logger          *zap.Logger
}

func (c *AudienceController) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// TestConnection pings the remote API.
func (c *AudienceController) TestConnection(w http.ResponseWriter, r *http.Request) {
	if err := c.AudienceService.Ping(r.Context()); err != nil {
		c.log().Error("mailchimp ping failed", zap.Error(err))
		respondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Mailchimp connection successful",
	})
}

func (c *AudienceController) GetLists(w http.ResponseWriter, r *http.Request) {
	lists, err := c.AudienceService.GetAllLists(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lists)
}

func (c *AudienceController) AddMember(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	var body struct {
		Email  string            `json:"email"`
		Fields map[string]string `json:"fields"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid body")
		return
	}

	member, err := c.AudienceService.AddMember(r.Context(), listID, body.Email, body.Fields)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, member)
}

// BulkImport saves the uploaded CSV and imports every row into the list.
func (c *AudienceController) BulkImport(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	path, err := c.Uploads.SaveFromRequest(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	results, err := c.AudienceService.BulkImportFile(r.Context(), listID, path)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Import completed",
		"results": results,
	})
}

// Upload parses a CSV and echoes its rows without importing them.
func (c *AudienceController) Upload(w http.ResponseWriter, r *http.Request) {
	path, err := c.Uploads.SaveFromRequest(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	rows, err := c.AudienceService.ParseUpload(path)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "File processed successfully",
		"data":    rows,
	})
}

func (c *AudienceController) CreateSegment(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")

	var body struct {
		Name       string                       `json:"name"`
		Conditions []mailchimp.SegmentCondition `json:"conditions"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid body")
		return
	}

	segment, err := c.AudienceService.CreateSegment(r.Context(), listID, body.Name, body.Conditions)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, segment)
}

func (c *AudienceController) AddSegmentMembers(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listId")
	segmentID := chi.URLParam(r, "segmentId")

	var body struct {
		Emails []string `json:"emails"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid body")
		return
	}

	results, err := c.AudienceService.AddMembersToSegment(r.Context(), listID, segmentID, body.Emails)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}
