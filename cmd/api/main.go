package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"internApply/internal/api"
	"internApply/internal/application"
	"internApply/internal/config"
	"internApply/internal/coverletter"
	"internApply/internal/database"
	"internApply/internal/scan"
	"internApply/internal/storage"
	"internApply/internal/submission"
	"internApply/internal/tasks"
)

// orphanCheckDelay 给数据库短暂故障留出恢复时间再核对。
const orphanCheckDelay = 5 * time.Minute

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var scanner application.Scanner
	if s := scan.NewClamdScanner(cfg.Intake.ClamdAddr); s != nil {
		scanner = s
		log.Printf("clamd scanning enabled, addr=%s", cfg.Intake.ClamdAddr)
	}
	guard := application.NewGuard(
		cfg.Intake.MaxResumeBytes,
		cfg.Intake.AllowedExtensions,
		cfg.Intake.StrictContentCheck,
		scanner,
	)

	deps := api.Deps{
		MaxResumeBytes: guard.MaxBytes(),
		Accept:         guard.Accept(),
		InternalSecret: cfg.API.InternalSecret,
	}

	var submitter submission.Submitter
	if cfg.Live() {
		log.Printf("api bootstrapped with db host=%s port=%d db=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.Name,
			cfg.Database.SSLMode,
		)

		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("init database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
		log.Printf("database connection ready")

		storageClient, err := storage.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("init storage client: %v", err)
		}
		log.Printf("storage client ready, bucket=%s", storageClient.Bucket())

		records := database.NewApplicationStore(db)
		var opts []submission.LiveOption
		if cfg.Reconcile.Enabled {
			redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Error("close redis client failed", slog.Any("error", err))
				}
			}()
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				log.Fatalf("ping redis: %v", err)
			}

			asynqClient := asynq.NewClientFromRedisClient(redisClient)
			reporter := tasks.NewOrphanReporter(asynqClient, orphanCheckDelay, logger)
			opts = append(opts, submission.WithOrphanReporter(reporter))
			log.Printf("orphan reconciliation enabled, redis=%s", cfg.Redis.Addr())
		}

		submitter = submission.NewLiveSubmitter(storageClient, records, storageClient.Bucket(), logger, opts...)
		deps.Records = records
		deps.Links = storageClient
	} else {
		logger.Warn("storage credentials not set, running in degraded mode: submissions are simulated",
			slog.Duration("delay", cfg.Intake.MockDelay))
		submitter = submission.NewDegradedSubmitter(cfg.Intake.MockDelay, logger)
	}

	newDraft := func() *submission.Orchestrator {
		return submission.NewOrchestrator(guard, submitter)
	}
	drafts := submission.NewRegistry(cfg.Intake.DraftTTL, newDraft)
	go drafts.Run(context.Background(), time.Minute)
	deps.Drafts = drafts
	deps.NewDraft = newDraft

	if cfg.Gemini.Enabled() {
		model, err := coverletter.NewGeminiModel(context.Background(), cfg.Gemini.ProjectID, cfg.Gemini.Location, cfg.Gemini.Model)
		if err != nil {
			log.Fatalf("init gemini: %v", err)
		}
		defer model.Close()
		deps.Drafter = coverletter.NewDrafter(model, logger)
		log.Printf("cover letter drafting enabled, model=%s", cfg.Gemini.Model)
	}

	address := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("api listening on %s, mode=%s", address, submitter.Mode())

	router := api.NewRouter(logger, submitter.Mode())
	api.RegisterRoutes(router, deps)

	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
