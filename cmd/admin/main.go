package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hibiken/asynq"

	"internApply/internal/config"
	"internApply/internal/database"
	"internApply/internal/storage"
	"internApply/internal/tasks"
)

func main() {
	var (
		command = flag.String("cmd", "", "要执行的操作：provision-bucket | migrate | sweep | list | gen-secret")
		limit   = flag.Int("limit", 20, "list 输出条数 / sweep 扫描上限（0 表示不限）")
		prefix  = flag.String("prefix", "", "sweep 只扫描该前缀下的对象")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch strings.TrimSpace(*command) {
	case "gen-secret":
		secret, err := generateSecret(32)
		if err != nil {
			log.Fatalf("generate secret: %v", err)
		}
		fmt.Printf("INTERNAL_API_SECRET=%s\n", secret)
	case "provision-bucket":
		provisionBucket(ctx, mustLoadLive())
	case "migrate":
		cfg := mustLoadLive()
		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("init database: %v", err)
		}
		if err := database.Migrate(db); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
		fmt.Println("applications 表已迁移")
	case "sweep":
		enqueueSweep(ctx, mustLoadLive(), *prefix, *limit)
	case "list":
		listApplications(ctx, mustLoadLive(), *limit)
	case "":
		flag.Usage()
		os.Exit(2)
	default:
		log.Fatalf("unknown command %q", *command)
	}
}

func mustLoadLive() *config.Config {
	cfg := config.MustLoad()
	if !cfg.Live() {
		log.Fatal("MINIO_ACCESS_KEY_ID / MINIO_SECRET_ACCESS_KEY are not set")
	}
	return cfg
}

// provisionBucket 创建公开读的简历 Bucket，已存在时不做任何修改。
func provisionBucket(ctx context.Context, cfg *config.Config) {
	client, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	if err := client.MakeBucket(ctx, true); err != nil {
		log.Fatalf("provision bucket %q: %v", client.Bucket(), err)
	}
	fmt.Printf("Bucket %q 已就绪（public read）\n", client.Bucket())
}

func enqueueSweep(ctx context.Context, cfg *config.Config, prefix string, limit int) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer client.Close()

	task, err := tasks.NewOrphanSweepTask(prefix, limit)
	if err != nil {
		log.Fatalf("build sweep task: %v", err)
	}
	info, err := client.EnqueueContext(ctx, task)
	if err != nil {
		log.Fatalf("enqueue sweep: %v", err)
	}
	fmt.Printf("已入队 %s，任务 ID: %s\n", info.Type, info.ID)
}

func listApplications(ctx context.Context, cfg *config.Config, limit int) {
	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	apps, err := database.NewApplicationStore(db).ListRecent(ctx, limit)
	if err != nil {
		log.Fatalf("list applications: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tNAME\tEMAIL\tROLE\tSTATUS\tRESUME")
	for _, app := range apps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			app.ID,
			app.CreatedAt.Format(time.RFC3339),
			app.FullName,
			app.Email,
			app.Role,
			app.Status,
			app.ResumePath,
		)
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("write output: %v", err)
	}
}

func generateSecret(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 32
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
