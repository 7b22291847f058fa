// Package app はプロセスの起動、依存関係の組み立て、シャットダウンを行う。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/dayline/internal/archive"
	"github.com/hitoshi/dayline/internal/cache"
	"github.com/hitoshi/dayline/internal/config"
	"github.com/hitoshi/dayline/internal/country"
	"github.com/hitoshi/dayline/internal/database"
	"github.com/hitoshi/dayline/internal/handler"
	"github.com/hitoshi/dayline/internal/logger"
	"github.com/hitoshi/dayline/internal/metrics"
	"github.com/hitoshi/dayline/internal/middleware"
	"github.com/hitoshi/dayline/internal/repository"
	"github.com/hitoshi/dayline/internal/security"
	"github.com/hitoshi/dayline/internal/seo"
	"github.com/hitoshi/dayline/internal/window"
	"github.com/hitoshi/dayline/internal/worker/cleanup"
	"github.com/hitoshi/dayline/internal/worker/snapshot"
)

// shutdownTimeout はHTTPサーバーのグレースフルシャットダウンの猶予。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// .envと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
func Init(w io.Writer) (*config.Config, error) {
	// 設定読み込み前のエラーもJSONで出せるよう、先に仮のロガーを設定する
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	if err := config.LoadDotEnv(os.Getenv("DOTENV_PATH")); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetupDefault(w, cfg.LogLevel)
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, known := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if !cmd.UsesDatabase() {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	if !known {
		slog.Warn("unknown command, falling back to serve", slog.String("arg", args[0]))
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("wall_clock", cfg.WallClock.String()),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)
	return db, nil
}

// newMetricsRegistry はプロセス用のレジストリとアプリケーションのメトリクスを生成する。
func newMetricsRegistry() (*prometheus.Registry, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

// newAssembler はリポジトリを組み立ててウィンドウのAssemblerを返す。
func newAssembler(db *sql.DB, bucketCache cache.BucketCache, m metrics.MetricsCollector) *window.Assembler {
	return window.NewAssembler(
		repository.NewPostgresHeadlineRepo(db),
		repository.NewPostgresSummaryRepo(db),
		repository.NewPostgresDailySummaryRepo(db),
		repository.NewPostgresSnapshotRepo(db),
		bucketCache,
		m,
		slog.Default(),
	)
}

// openBucketCache はREDIS_URLが設定されていればRedisキャッシュを返す。
// 未設定の場合はnilを返し、キャッシュなしで動作する。
// 起動時に疎通できなくてもキャッシュ障害はライブクエリに退避するため、警告のみとする。
func openBucketCache(cfg *config.Config) (*cache.RedisCache, error) {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL is not set, bucket cache disabled")
		return nil, nil
	}

	rc, err := cache.NewRedisCacheFromURL(cfg.RedisURL, cfg.CacheTTLOpen, cfg.CacheTTLClosed)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		slog.Warn("redis is not reachable, continuing with degraded cache",
			slog.String("error", err.Error()),
		)
	} else {
		slog.Info("bucket cache connected",
			slog.Duration("ttl_open", cfg.CacheTTLOpen),
			slog.Duration("ttl_closed", cfg.CacheTTLClosed),
		)
	}
	return rc, nil
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	// 2. 対応国
	registry, err := country.LoadFile(cfg.CountriesFile)
	if err != nil {
		return fmt.Errorf("failed to load countries: %w", err)
	}
	slog.Info("country registry loaded", slog.Int("count", len(registry.Keys())))

	// 3. メトリクスとキャッシュ
	reg, collector := newMetricsRegistry()

	var bucketCache cache.BucketCache
	rc, err := openBucketCache(cfg)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
		bucketCache = rc
	}

	// 4. ドメインサービス
	assembler := newAssembler(db, bucketCache, collector)
	service := archive.NewService(
		registry, assembler, repository.NewPostgresDailySummaryRepo(db), collector, cfg.WallClock,
	)

	// 5. ルーター
	rateLimiter := middleware.NewRateLimiter(middleware.PerMinuteConfig(cfg.RateLimitGeneral))
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Metrics:           collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		HealthChecker:     db,
		MetricsHandler:    metrics.Handler(reg),
		ArchiveService:    service,
		JSONLD:            seo.NewJSONLDBuilder(cfg.BaseURL, security.NewTextSanitizer()),
		BaseURL:           cfg.BaseURL,
	})

	// 6. HTTPサーバー
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serveUntilSignal(server, "API server")
}

// runWorker はワーカーモードで起動する。
// スナップショットスケジューラとクリーンアップジョブを動かし、
// /health と /metrics だけを公開する運用用サーバーを立てる。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry, err := country.LoadFile(cfg.CountriesFile)
	if err != nil {
		return fmt.Errorf("failed to load countries: %w", err)
	}

	// 2. 依存関係
	reg, collector := newMetricsRegistry()
	snapshotRepo := repository.NewPostgresSnapshotRepo(db)

	// ワーカーはテーブルから直接組み立てるのでキャッシュを使わない
	assembler := newAssembler(db, nil, collector)

	scheduler := snapshot.NewScheduler(registry, assembler, snapshotRepo, collector, slog.Default(), snapshot.Config{
		MaxConcurrency: cfg.SnapshotMaxConcurrent,
		LookbackDays:   cfg.SnapshotLookbackDays,
	})
	cleanupJob := cleanup.NewCleanupJob(snapshotRepo, slog.Default())

	opsServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           newOpsRouter(db, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 3. シグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	go func() {
		select {
		case <-stop:
			slog.Info("shutting down worker...")
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ops server listen error", slog.String("error", err.Error()))
		}
	}()

	slog.Info("worker starting",
		slog.Duration("snapshot_interval", cfg.SnapshotInterval),
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
		slog.Int("max_concurrent", cfg.SnapshotMaxConcurrent),
	)

	// 4. クリーンアップをバックグラウンドで、スケジューラをメインgoroutineで実行
	go cleanupJob.Start(ctx, cfg.CleanupInterval)
	scheduler.Start(ctx, cfg.SnapshotInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ops server shutdown failed: %w", err)
	}

	slog.Info("worker stopped gracefully")
	return nil
}

// newOpsRouter はワーカー用の /health と /metrics だけを持つルーターを返す。
func newOpsRouter(checker handler.HealthChecker, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", handler.NewHealthHandler(checker))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	return r
}

// serveUntilSignal はサーバーを起動し、SIGINTまたはSIGTERMで停止する。
// 起動に失敗した場合はそのエラーを返す。
func serveUntilSignal(server *http.Server, name string) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info(name+" starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
		close(listenErr)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("%s listen failed: %w", name, err)
		}
		return nil
	case <-stop:
	}

	slog.Info("shutting down " + name + "...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s shutdown failed: %w", name, err)
	}

	slog.Info(name + " stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("schema_version", uint64(version)))
	return nil
}

// runHealthcheck は localhost の /health にリクエストを送り、200以外ならエラーを返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードを伏せる。
// 解析できない場合は全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
