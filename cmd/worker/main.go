// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/unclebandit/mailchimp-backend/internal/config"
	"github.com/unclebandit/mailchimp-backend/internal/db"
	"github.com/unclebandit/mailchimp-backend/internal/logger"
	"github.com/unclebandit/mailchimp-backend/internal/model"
	"github.com/unclebandit/mailchimp-backend/internal/queue"
	"github.com/unclebandit/mailchimp-backend/internal/repository"
	"github.com/unclebandit/mailchimp-backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg := logger.New(cfg.LogLevel, cfg.IsProduction()).Named("worker")
	defer lg.Sync()

	if cfg.AMQPURL == "" {
		lg.Fatal("AMQP_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to DB
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, lg)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Disconnect(context.Background(), database)

	// Connect to RabbitMQ
	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		lg.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		lg.Fatal("Failed to open a channel", zap.Error(err))
	}
	defer ch.Close()

	q, err := queue.DeclareQueue(ch, cfg.EventsQueue)
	if err != nil {
		lg.Fatal("Failed to declare queue", zap.Error(err))
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // autoAck = false, the worker acks after recording
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		lg.Fatal("Failed to register consumer", zap.Error(err))
	}

	jobs := make(chan service.Job)
	go feed(ctx, msgs, jobs, lg)

	worker := service.NewEventWorker(repository.NewEventRepository(database), jobs, lg)
	lg.Info("Worker running, waiting for events...", zap.String("queue", q.Name))
	worker.Start(ctx)
	lg.Info("worker stopped")
}

// feed converts deliveries into jobs until msgs closes or ctx is done.
func feed(ctx context.Context, msgs <-chan amqp.Delivery, jobs chan<- service.Job, lg *zap.Logger) {
	defer close(jobs)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				return
			}
			select {
			case jobs <- toJob(d, lg):
			case <-ctx.Done():
				return
			}
		}
	}
}

// toJob decodes a delivery. Undecodable bodies become a job with no event,
// which the worker acks and discards. Failed inserts are nacked without requeue.
func toJob(d amqp.Delivery, lg *zap.Logger) service.Job {
	job := service.Job{
		Ack: func() {
			if err := d.Ack(false); err != nil {
				lg.Warn("ack failed", zap.Error(err))
			}
		},
		Drop: func() {
			if err := d.Nack(false, false); err != nil {
				lg.Warn("nack failed", zap.Error(err))
			}
		},
	}

	var e model.Event
	if err := json.Unmarshal(d.Body, &e); err != nil {
		lg.Warn("⚠️ invalid event message", zap.String("message_id", d.MessageId), zap.Error(err))
		return job
	}
	if e.EventID == "" {
		e.EventID = d.MessageId
	}
	job.Event = &e
	return job
}
