package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/dayline/internal/archive"
	"github.com/hitoshi/dayline/internal/country"
	"github.com/hitoshi/dayline/internal/middleware"
	"github.com/hitoshi/dayline/internal/model"
	"github.com/hitoshi/dayline/internal/seo"
)

// ArchiveServiceInterface はアーカイブハンドラーが必要とするサービスインターフェース。
type ArchiveServiceInterface interface {
	// Countries は対応国の一覧を返す。
	Countries() []*country.Country
	// Feed は厳密モードで過去1日分のページを返す。
	Feed(ctx context.Context, countryKey, date string) (*archive.Page, error)
	// Live は継続モードで1日分のページを返す。dateが空の場合は今日。
	Live(ctx context.Context, countryKey, date string) (*archive.Page, error)
	// Month は指定月の日次総括一覧を返す。
	Month(ctx context.Context, countryKey, year, month string) (*archive.MonthPage, error)
	// Days はアーカイブ済みの日付一覧を返す。
	Days(countryKey string) (*archive.DaysPage, error)
}

// ArchiveHandler はアーカイブ閲覧のHTTPハンドラー。
type ArchiveHandler struct {
	service ArchiveServiceInterface
	jsonld  *seo.JSONLDBuilder
	baseURL string
}

// NewArchiveHandler はArchiveHandlerを生成する。
// baseURLは正規URLと構造化データの組み立てに使う。
func NewArchiveHandler(service ArchiveServiceInterface, baseURL string, jsonld *seo.JSONLDBuilder) *ArchiveHandler {
	if jsonld == nil {
		jsonld = seo.NewJSONLDBuilder(baseURL, nil)
	}
	return &ArchiveHandler{
		service: service,
		jsonld:  jsonld,
		baseURL: baseURL,
	}
}

// countryResponse は国情報のAPIレスポンス。
type countryResponse struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name"`
	HebrewName  string `json:"hebrew_name,omitempty"`
	Flag        string `json:"flag,omitempty"`
	Timezone    string `json:"timezone"`
	LaunchDate  string `json:"launch_date"` // dd-MM-yyyy
}

type countriesResponse struct {
	Locale    string            `json:"locale"`
	Countries []countryResponse `json:"countries"`
}

// pageResponse は日付ページのAPIレスポンス。
type pageResponse struct {
	Locale string `json:"locale"`
	Title  string `json:"title"`
	*archive.Page
}

type monthResponse struct {
	Locale string `json:"locale"`
	*archive.MonthPage
}

type daysResponse struct {
	Locale string `json:"locale"`
	*archive.DaysPage
}

// ListCountries は対応国の一覧を返す。
// 国名はAccept-Languageヘッダーから決めたロケールで返す。
// GET /api/countries
func (h *ArchiveHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	locale := seo.NegotiateLocale(r.Header.Get("Accept-Language"))

	all := h.service.Countries()
	resp := countriesResponse{
		Locale:    locale,
		Countries: make([]countryResponse, 0, len(all)),
	}
	for _, c := range all {
		resp.Countries = append(resp.Countries, countryResponse{
			Key:         c.Key,
			Name:        c.Name(locale),
			EnglishName: c.English,
			HebrewName:  c.Hebrew,
			Flag:        c.Flag,
			Timezone:    c.Zone(),
			LaunchDate:  c.LaunchDay().String(),
		})
	}

	w.Header().Set("Content-Language", seo.HreflangCode(locale))
	w.Header().Add("Vary", "Accept-Language")
	middleware.WriteJSON(w, http.StatusOK, "", resp)
}

// Feed は過去1日分のフィードページを返す。
// 当日以降や公開開始前の日付はライブページへリダイレクトする。
// GET /api/{locale}/{country}/{date}/feed
func (h *ArchiveHandler) Feed(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	countryKey := chi.URLParam(r, "country")

	page, err := h.service.Feed(r.Context(), countryKey, chi.URLParam(r, "date"))
	if err != nil {
		if redirectsToLive(err) {
			http.Redirect(w, r, liveURL(locale, countryKey), http.StatusFound)
			return
		}
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	middleware.WriteJSON(w, http.StatusOK, "", pageResponse{
		Locale: locale,
		Title:  seo.FeedTitle(page, locale),
		Page:   page,
	})
}

// FeedMeta はフィードページのSEOメタデータを返す。
// GET /api/{locale}/{country}/{date}/feed/meta
func (h *ArchiveHandler) FeedMeta(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")

	page, err := h.service.Feed(r.Context(), chi.URLParam(r, "country"), chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, "", seo.FeedMetadata(page, locale, h.baseURL))
}

// FeedJSONLD はフィードページの構造化データを返す。
// GET /api/{locale}/{country}/{date}/feed/jsonld
func (h *ArchiveHandler) FeedJSONLD(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")

	page, err := h.service.Feed(r.Context(), chi.URLParam(r, "country"), chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, "application/ld+json", h.jsonld.FeedJSONLD(page, locale))
}

// Live は継続モードで解決したページを返す。
// GET /api/{locale}/{country}/live?date=dd-MM-yyyy
func (h *ArchiveHandler) Live(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")

	page, err := h.service.Live(r.Context(), chi.URLParam(r, "country"), r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	middleware.WriteJSON(w, http.StatusOK, "", pageResponse{
		Locale: locale,
		Title:  seo.FeedTitle(page, locale),
		Page:   page,
	})
}

// History はアーカイブ済みの日付一覧を返す。
// GET /api/{locale}/{country}/history
func (h *ArchiveHandler) History(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Days(chi.URLParam(r, "country"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, "", daysResponse{
		Locale:   chi.URLParam(r, "locale"),
		DaysPage: page,
	})
}

// Month は月次アーカイブを返す。
// ヘブライ語で要求され、その月の総括にヘブライ語が1件もない場合は英語版へリダイレクトする。
// GET /api/{locale}/{country}/history/{year}/{month}
func (h *ArchiveHandler) Month(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	countryKey := chi.URLParam(r, "country")
	year := chi.URLParam(r, "year")
	month := chi.URLParam(r, "month")

	page, err := h.service.Month(r.Context(), countryKey, year, month)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if locale == model.LocaleHebrew && len(page.Days) > 0 && !page.HasHebrew {
		target := fmt.Sprintf("/api/%s/%s/history/%s/%s", seo.LocaleEnglish, countryKey, year, month)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, "", monthResponse{
		Locale:    locale,
		MonthPage: page,
	})
}

// RequireLocale はURLのロケールが対応しているかを検証するミドルウェア。
func RequireLocale(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := chi.URLParam(r, "locale")
		if !seo.IsSupportedLocale(locale) {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidLocaleError(locale))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func liveURL(locale, countryKey string) string {
	return fmt.Sprintf("/api/%s/%s/live", locale, countryKey)
}
