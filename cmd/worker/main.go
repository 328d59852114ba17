package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"internApply/internal/config"
	"internApply/internal/database"
	"internApply/internal/metrics"
	"internApply/internal/storage"
	"internApply/internal/tasks"
	"internApply/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if !cfg.Live() {
		log.Fatalf("worker requires storage credentials (MINIO_ACCESS_KEY_ID / MINIO_SECRET_ACCESS_KEY)")
	}
	if !cfg.Reconcile.Enabled {
		log.Fatalf("reconciliation is disabled (RECONCILE_ENABLED=false), nothing to run")
	}

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Println("database connection ready for worker")

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", storageClient.Bucket())

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		Queues:      map[string]int{tasks.QueueReconcile: 1},
		Logger:      newAsynqLogger(logger),
	})

	handler := worker.NewReconcileHandler(
		storageClient,
		database.NewApplicationStore(db),
		logger,
		cfg.Reconcile.GracePeriod,
		cfg.Reconcile.DeleteOrphans,
	)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	handler.Register(mux)

	sweep, err := tasks.NewOrphanSweepTask("", 0)
	if err != nil {
		log.Fatalf("build sweep task: %v", err)
	}
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: newAsynqLogger(logger)})
	entryID, err := scheduler.Register(cfg.Reconcile.Cron, sweep)
	if err != nil {
		log.Fatalf("register sweep schedule %q: %v", cfg.Reconcile.Cron, err)
	}
	if err := scheduler.Start(); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}
	defer scheduler.Shutdown()

	if cfg.Reconcile.MetricsPort > 0 {
		metricsAddr := fmt.Sprintf(":%d", cfg.Reconcile.MetricsPort)
		go func() {
			if err := http.ListenAndServe(metricsAddr, metrics.Handler()); err != nil {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
		log.Printf("worker metrics listening on %s", metricsAddr)
	}

	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.String("sweep_cron", cfg.Reconcile.Cron),
		slog.String("sweep_entry", entryID),
		slog.Bool("delete_orphans", cfg.Reconcile.DeleteOrphans),
	)
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
