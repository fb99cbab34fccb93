// internal/handler/router.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/unclebandit/mailchimp-backend/internal/controller"
)

// Router holds everything the HTTP surface needs.
type Router struct {
	Audience       *controller.AudienceController
	Campaigns      *controller.CampaignController
	AllowedOrigins []string
	Production     bool
	Logger         *zap.Logger
}

// NewRouter mounts every route under /api.
func NewRouter(rt Router) http.Handler {
	log := rt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(Recoverer(log, rt.Production))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/test-mailchimp", rt.Audience.TestConnection)

		r.Route("/audience", func(r chi.Router) {
			r.Get("/lists", rt.Audience.GetLists)
			r.Post("/lists/{listId}/members", rt.Audience.AddMember)
			r.Post("/lists/{listId}/bulk-import", rt.Audience.BulkImport)
			r.Post("/lists/{listId}/segments", rt.Audience.CreateSegment)
			r.Post("/lists/{listId}/segments/{segmentId}/members", rt.Audience.AddSegmentMembers)
			r.Post("/upload", rt.Audience.Upload)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", rt.Campaigns.CreateCampaign)
			r.Get("/", rt.Campaigns.ListCampaigns)
			r.Post("/bulk-send", rt.Campaigns.BulkSend)
			r.Get("/{id}", rt.Campaigns.GetCampaign)
			r.Put("/{campaignId}/content", rt.Campaigns.SetContent)
			r.Post("/{campaignId}/send", rt.Campaigns.SendCampaign)
		})
	})

	return r
}
