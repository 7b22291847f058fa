package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/dayline/internal/metrics"
	"github.com/hitoshi/dayline/internal/middleware"
	"github.com/hitoshi/dayline/internal/model"
	"github.com/hitoshi/dayline/internal/seo"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ヘルスチェックとメトリクス公開
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// アーカイブ
	ArchiveService ArchiveServiceInterface
	JSONLD         *seo.JSONLDBuilder
	BaseURL        string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RealIP → SecurityHeaders → CORS → Logging → RateLimit
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(chimw.RealIP)
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))

	r.NotFound(middleware.WriteNotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusMethodNotAllowed, &model.APIError{
			Code:     "METHOD_NOT_ALLOWED",
			Message:  "このメソッドには対応していません: " + r.Method,
			Category: "validation",
			Action:   "GETでリクエストしてください。",
		})
	})

	// --- レート制限なし ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	archiveHandler := NewArchiveHandler(deps.ArchiveService, deps.BaseURL, deps.JSONLD)

	// --- API ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Get("/api/countries", archiveHandler.ListCountries)

		r.Route("/api/{locale}/{country}", func(r chi.Router) {
			r.Use(RequireLocale)

			r.Get("/live", archiveHandler.Live)

			r.Route("/history", func(r chi.Router) {
				r.Get("/", archiveHandler.History)
				r.Get("/{year}/{month}", archiveHandler.Month)
			})

			r.Route("/{date}/feed", func(r chi.Router) {
				r.Get("/", archiveHandler.Feed)
				r.Get("/meta", archiveHandler.FeedMeta)
				r.Get("/jsonld", archiveHandler.FeedJSONLD)
			})
		})
	})

	return r
}
