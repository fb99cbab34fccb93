// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/mailchimp-backend/internal/config"
	"github.com/unclebandit/mailchimp-backend/internal/db"
	"github.com/unclebandit/mailchimp-backend/internal/logger"
	"github.com/unclebandit/mailchimp-backend/internal/model"
	"github.com/unclebandit/mailchimp-backend/internal/repository"
	"github.com/unclebandit/mailchimp-backend/internal/service"
)

func main() {
	listID := flag.String("list", "", "list id the subscribers belong to")
	file := flag.String("file", "", "CSV file with email, first_name, last_name columns")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg := logger.New(cfg.LogLevel, cfg.IsProduction()).Named("seeder")
	defer lg.Sync()

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, lg)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Disconnect(ctx, database)

	if err := repository.EnsureIndexes(ctx, database, cfg.SubscriberUniqueScope); err != nil {
		lg.Fatal("failed to ensure indexes", zap.Error(err))
	}
	fmt.Println("Indexes ensured")

	if *file == "" {
		return
	}
	if *listID == "" {
		lg.Fatal("-list is required with -file")
	}

	records, err := service.ParseCSVFile(*file)
	if err != nil {
		lg.Fatal("failed to read seed file", zap.String("file", *file), zap.Error(err))
	}

	res := seed(ctx, repository.NewSubscriberRepository(database), *listID, records, time.Now())
	fmt.Printf("Seeded %s: %d upserted, %d skipped\n", *file, res.Success, res.Failed)
	for _, msg := range res.Errors {
		fmt.Println("  " + msg)
	}
}

// seed upserts rows into the local store only. The remote API is never called.
func seed(ctx context.Context, repo repository.SubscriberRepositoryInterface, listID string, records []map[string]string, now time.Time) *model.ImportResult {
	res := model.NewImportResult()
	for i, rec := range records {
		email := strings.TrimSpace(rec[service.ColumnEmail])
		if email == "" {
			res.AddFailure(fmt.Sprintf("row %d: missing email address", i+1))
			continue
		}
		err := repo.Upsert(ctx, &model.Subscriber{
			Email:            email,
			FirstName:        rec[service.ColumnFirstName],
			LastName:         rec[service.ColumnLastName],
			ListID:           listID,
			Status:           model.StatusSubscribed,
			SubscriptionDate: now,
		})
		if err != nil {
			res.AddFailure(fmt.Sprintf("error adding %s: %v", email, err))
			continue
		}
		res.AddSuccess()
	}
	return res
}
