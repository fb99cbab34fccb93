// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/mailchimp-backend/internal/config"
	"github.com/unclebandit/mailchimp-backend/internal/controller"
	"github.com/unclebandit/mailchimp-backend/internal/db"
	"github.com/unclebandit/mailchimp-backend/internal/handler"
	"github.com/unclebandit/mailchimp-backend/internal/logger"
	"github.com/unclebandit/mailchimp-backend/internal/mailchimp"
	"github.com/unclebandit/mailchimp-backend/internal/queue"
	"github.com/unclebandit/mailchimp-backend/internal/repository"
	"github.com/unclebandit/mailchimp-backend/internal/service"
	"github.com/unclebandit/mailchimp-backend/internal/upload"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg := logger.New(cfg.LogLevel, cfg.IsProduction())
	defer lg.Sync()

	ctx := context.Background()

	// Init DB
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, lg)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Disconnect(context.Background(), database)

	if err := repository.EnsureIndexes(ctx, database, cfg.SubscriberUniqueScope); err != nil {
		lg.Fatal("failed to ensure indexes", zap.Error(err))
	}

	mc, err := mailchimp.NewClient(mailchimp.Config{
		APIKey:  cfg.MailchimpAPIKey,
		Server:  cfg.MailchimpServer,
		Timeout: cfg.MailchimpTimeout,
	})
	if err != nil {
		lg.Fatal("failed to configure mailchimp client", zap.Error(err))
	}

	events, closeEvents := newPublisher(cfg, lg)
	defer closeEvents()

	subscriberRepo := repository.NewSubscriberRepository(database)
	campaignRepo := repository.NewCampaignRepository(database)

	audienceService := &service.AudienceService{
		Mailchimp:      mc,
		SubscriberRepo: subscriberRepo,
		Events:         events,
		Logger:         lg.Named("audience"),
	}
	campaignService := &service.CampaignService{
		Mailchimp:      mc,
		CampaignRepo:   campaignRepo,
		SubscriberRepo: subscriberRepo,
		Events:         events,
		Validate:       service.NewValidator(),
		Logger:         lg.Named("campaigns"),
	}

	// Connectivity check only; the server starts either way.
	go func() {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.MailchimpTimeout)
		defer cancel()
		if err := audienceService.Ping(pingCtx); err != nil {
			lg.Warn("⚠️ Mailchimp connection test failed", zap.Error(err))
			return
		}
		lg.Info("✅ Mailchimp connection successful")
	}()

	router := handler.NewRouter(handler.Router{
		Audience: &controller.AudienceController{
			AudienceService: audienceService,
			Uploads:         &upload.Store{Dir: cfg.UploadDir, MaxBytes: cfg.MaxUploadBytes},
			Logger:          lg,
		},
		Campaigns:      &controller.CampaignController{CampaignService: campaignService},
		AllowedOrigins: cfg.AllowedOrigins,
		Production:     cfg.IsProduction(),
		Logger:         lg.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lg.Info("🚀 Server running", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	lg.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newPublisher uses the broker when AMQP_URL is set, the in-process queue otherwise.
func newPublisher(cfg *config.Config, lg *zap.Logger) (queue.Publisher, func()) {
	if cfg.AMQPURL != "" {
		p, err := queue.DialAMQP(cfg.AMQPURL, cfg.EventsQueue)
		if err != nil {
			lg.Fatal("failed to connect to event queue", zap.Error(err))
		}
		lg.Info("✅ Publishing events to queue", zap.String("queue", cfg.EventsQueue))
		return p, func() {
			if err := p.Close(); err != nil {
				lg.Warn("failed to close event queue", zap.Error(err))
			}
		}
	}

	q := queue.NewInMemoryQueue(lg.Named("events"))
	q.Subscribe(queue.LogHandler(lg.Named("events")))
	return q, q.Wait
}
