// internal/controller/campaign_controller.go
package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/mailchimp-backend/internal/model"
	"github.com/unclebandit/mailchimp-backend/internal/service"
)

type CampaignController struct {
	CampaignService *service.CampaignService
}

// CreateCampaign stores a local campaign record.
func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject  string `json:"subject"`
		Content  string `json:"content"`
		ListID   string `json:"listId"`
		ListName string `json:"listName"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid body")
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), &model.Campaign{
		Subject:  body.Subject,
		Content:  body.Content,
		ListID:   body.ListID,
		ListName: body.ListName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) SetContent(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignId")

	var body struct {
		HTML string `json:"html"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid body")
		return
	}

	content, err := c.CampaignService.SetContent(r.Context(), campaignID, body.HTML)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, content)
}

func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignId")

	if err := c.CampaignService.Send(r.Context(), campaignID); err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":     "sent",
		"campaignId": campaignID,
	})
}

// BulkSend creates, fills and sends a campaign in one call.
func (c *CampaignController) BulkSend(w http.ResponseWriter, r *http.Request) {
	var req service.BulkSendRequest
	if err := decodeBody(r, &req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid body",
		})
		return
	}

	result, err := c.CampaignService.BulkSend(r.Context(), req)
	if err != nil {
		respondWithJSON(w, statusFor(err), map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	campaign, err := c.CampaignService.GetCampaign(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, campaign)
}
