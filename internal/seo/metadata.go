package seo

import (
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/dayline/internal/archive"
	"github.com/hitoshi/dayline/internal/dayview"
)

// SiteName はOpenGraphのサイト名。
const SiteName = "The Hear"

// Metadata はフィードページのメタデータ。
type Metadata struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Canonical     string            `json:"canonical"`
	Alternates    map[string]string `json:"alternates"`
	OGLocale      string            `json:"og_locale"`
	SiteName      string            `json:"site_name"`
	PublishedTime string            `json:"published_time"`
	Tags          []string          `json:"tags"`
}

// FeedURL はフィードページの正規URLを返す。
func FeedURL(baseURL, locale, countryKey string, date dayview.CalendarDate) string {
	return fmt.Sprintf("%s/%s/%s/%s/feed", strings.TrimRight(baseURL, "/"), locale, countryKey, date.String())
}

// FeedTitle はページと日次総括の見出しからタイトルを組み立てる。
func FeedTitle(page *archive.Page, locale string) string {
	c := page.Country
	date := page.CalendarDate()
	name := c.Name(locale)
	headline := ""
	if page.DailySummary != nil {
		headline = page.DailySummary.HeadlineFor(locale)
	}

	if locale == LocaleHebrew {
		return HebrewTitle(name, HebrewDate(date), headline)
	}
	return Title(c.Flag, fmt.Sprintf("%s headlines, %s", name, EnglishDate(date)), headline)
}

// FeedMetadata はフィードページのタイトル、説明文、正規URL、言語別URLを返す。
func FeedMetadata(page *archive.Page, locale, baseURL string) *Metadata {
	c := page.Country
	date := page.CalendarDate()
	name := c.Name(locale)
	dotted := DottedDate(date)

	headline := ""
	if page.DailySummary != nil {
		headline = normalizeSpace(page.DailySummary.HeadlineFor(locale))
	}

	var description string
	if locale == LocaleHebrew {
		lead := ""
		if headline != "" {
			lead = headline + ". "
		}
		description = fmt.Sprintf("%sארכיון מלא של כותרות חדשות מ-%s ל-%s - כל הכותרות כפי שהתפתחו במהלך היום עם סיכומי בינה מלאכותית בזמן אמת",
			lead, name, dotted)
	} else {
		inText := name
		if c.Key == "us" || c.Key == "uk" {
			inText = "the " + name
		}
		lead := ""
		if headline != "" {
			lead = headline + ". "
		}
		description = fmt.Sprintf("An archive of news headlines from %s for %s; %sAll headlines as they unfolded throughout the day, with real-time AI overviews",
			inText, dotted, lead)
	}

	return &Metadata{
		Title:       FeedTitle(page, locale),
		Description: description,
		Canonical:   FeedURL(baseURL, locale, c.Key, date),
		Alternates: map[string]string{
			"en":        FeedURL(baseURL, LocaleEnglish, c.Key, date),
			"he":        FeedURL(baseURL, LocaleHebrew, c.Key, date),
			"x-default": FeedURL(baseURL, LocaleEnglish, c.Key, date),
		},
		OGLocale:      OpenGraphLocale(locale),
		SiteName:      SiteName,
		PublishedTime: noonUTC(date).Format(isoMillis),
		Tags:          []string{name, "news", "headlines", dotted, "archive", "chronological"},
	}
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func noonUTC(d dayview.CalendarDate) time.Time {
	return d.MidnightUTC().Add(12 * time.Hour)
}
