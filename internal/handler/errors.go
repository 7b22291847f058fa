package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/dayline/internal/middleware"
	"github.com/hitoshi/dayline/internal/model"
)

// handleServiceError はサービス層から返されたエラーをHTTPレスポンスに変換する。
// APIError以外は内部エラーとしてログに記録し、詳細は返さない。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidDate, model.ErrCodeInvalidMonth, model.ErrCodeInvalidLocale:
		return http.StatusBadRequest
	case model.ErrCodeCountryNotFound, model.ErrCodeDayNotArchived, model.ErrCodeBeforeLaunch:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// redirectsToLive はフィードページの代わりにライブページへ誘導すべきエラーかを返す。
func redirectsToLive(err error) bool {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == model.ErrCodeDayNotArchived || apiErr.Code == model.ErrCodeBeforeLaunch
}
