// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, archive, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeCountryNotFound = "COUNTRY_NOT_FOUND"
	ErrCodeInvalidDate     = "INVALID_DATE"
	ErrCodeInvalidMonth    = "INVALID_MONTH"
	ErrCodeInvalidLocale   = "INVALID_LOCALE"
	ErrCodeDayNotArchived  = "DAY_NOT_ARCHIVED"
	ErrCodeBeforeLaunch    = "BEFORE_LAUNCH"
)

// NewCountryNotFoundError は未対応の国が指定された場合のエラーを生成する。
func NewCountryNotFoundError(country string) *APIError {
	return &APIError{
		Code:     ErrCodeCountryNotFound,
		Message:  fmt.Sprintf("指定された国は対応していません: %s", country),
		Category: "validation",
		Action:   "/api/countries で対応国の一覧を確認してください。",
	}
}

// NewInvalidDateError は日付の形式が不正な場合のエラーを生成する。
func NewInvalidDateError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付です: %s", date),
		Category: "validation",
		Action:   "日付は dd-MM-yyyy 形式の実在する日付で指定してください。",
	}
}

// NewInvalidMonthError は年月が不正またはアーカイブ範囲外の場合のエラーを生成する。
func NewInvalidMonthError(year, month string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidMonth,
		Message:  fmt.Sprintf("無効な年月です: %s/%s", year, month),
		Category: "validation",
		Action:   "公開開始月から今月までの範囲で、月は01から12で指定してください。",
	}
}

// NewInvalidLocaleError は未対応のロケールが指定された場合のエラーを生成する。
func NewInvalidLocaleError(locale string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLocale,
		Message:  fmt.Sprintf("未対応のロケールです: %s", locale),
		Category: "validation",
		Action:   "ロケールには en または heb を指定してください。",
	}
}

// NewDayNotArchivedError は当日以降の日付がアーカイブとして要求された場合のエラーを生成する。
func NewDayNotArchivedError(date string) *APIError {
	return &APIError{
		Code:     ErrCodeDayNotArchived,
		Message:  fmt.Sprintf("この日付はまだアーカイブされていません: %s", date),
		Category: "archive",
		Action:   "当日の見出しはライブページで確認してください。",
	}
}

// NewBeforeLaunchError は国の公開開始日より前の日付が要求された場合のエラーを生成する。
func NewBeforeLaunchError(country, date string) *APIError {
	return &APIError{
		Code:     ErrCodeBeforeLaunch,
		Message:  fmt.Sprintf("%s のデータは %s 時点では存在しません。", country, date),
		Category: "archive",
		Action:   "公開開始日以降の日付を指定してください。",
	}
}
