package model

import (
	"strings"
	"time"
)

// LocaleHebrew はヘブライ語ロケールを表すパスパラメータ値。
const LocaleHebrew = "heb"

// SummaryText は要約レコードが持つロケール別テキスト群。
// 中身は生成パイプラインが書き込むもので、日付ウィンドウの処理では参照しない。
type SummaryText struct {
	Summary            string `json:"summary,omitempty"`
	TranslatedSummary  string `json:"translated_summary,omitempty"`
	HebrewSummary      string `json:"hebrew_summary,omitempty"`
	Headline           string `json:"headline,omitempty"`
	EnglishHeadline    string `json:"english_headline,omitempty"`
	HebrewHeadline     string `json:"hebrew_headline,omitempty"`
	TranslatedHeadline string `json:"translated_headline,omitempty"`
}

// HeadlineFor はロケールに応じた要約見出しを返す。
// 対象言語が空の場合は英語、元の見出しの順にフォールバックする。
func (t SummaryText) HeadlineFor(locale string) string {
	if locale == LocaleHebrew {
		return firstNonEmpty(t.HebrewHeadline, t.Headline, t.EnglishHeadline)
	}
	return firstNonEmpty(t.EnglishHeadline, t.Headline, t.TranslatedHeadline)
}

// BodyFor はロケールに応じた要約本文を返す。
func (t SummaryText) BodyFor(locale string) string {
	if locale == LocaleHebrew {
		return firstNonEmpty(t.HebrewSummary, t.Summary, t.TranslatedSummary)
	}
	return firstNonEmpty(t.Summary, t.TranslatedSummary, t.HebrewSummary)
}

// HasHebrew はヘブライ語の見出しまたは本文が存在するかを返す。
func (t SummaryText) HasHebrew() bool {
	return strings.TrimSpace(t.HebrewHeadline) != "" || strings.TrimSpace(t.HebrewSummary) != ""
}

// Summary は一定間隔で生成される国ごとのAI要約。
type Summary struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SummaryText
}

// DailySummary は国ごと・日ごとの総括要約。
type DailySummary struct {
	Country string `json:"country"`
	Day     string `json:"day"` // yyyy-mm-dd（国のローカル日付）
	SummaryText
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
