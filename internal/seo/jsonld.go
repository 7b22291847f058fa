package seo

import (
	"fmt"
	"strings"

	"github.com/hitoshi/dayline/internal/archive"
	"github.com/hitoshi/dayline/internal/dayview"
	"github.com/hitoshi/dayline/internal/model"
	"github.com/hitoshi/dayline/internal/security"
)

// minArticleBody はJSON-LDに含める要約本文の最小長（これを超える必要がある）。
const minArticleBody = 20

// summaryMarkers は生成パイプラインが本文に残す区切り。最初に見つかった区切りより後ろは捨てる。
var summaryMarkers = []string{"HEBREWSUMMARY:", "LOCALSUMMARY:", "SUMMARY:"}

// JSONLD はschema.orgの@graph形式の構造化データ。
type JSONLD struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

type imageObject struct {
	Type   string `json:"@type"`
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type thing struct {
	Type        string `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

type organization struct {
	Type                 string       `json:"@type"`
	Name                 string       `json:"name"`
	URL                  string       `json:"url"`
	Logo                 *imageObject `json:"logo,omitempty"`
	PublishingPrinciples string       `json:"publishingPrinciples,omitempty"`
	Masthead             string       `json:"masthead,omitempty"`
}

type article struct {
	Type          string       `json:"@type"`
	Headline      string       `json:"headline"`
	ArticleBody   string       `json:"articleBody"`
	DatePublished string       `json:"datePublished"`
	Image         imageObject  `json:"image"`
	Author        organization `json:"author"`
	Publisher     organization `json:"publisher"`
	About         thing        `json:"about"`
	InLanguage    string       `json:"inLanguage"`
}

type reference struct {
	ID string `json:"@id"`
}

type collectionPage struct {
	Type          string       `json:"@type"`
	ID            string       `json:"@id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	URL           string       `json:"url"`
	InLanguage    string       `json:"inLanguage"`
	DatePublished string       `json:"datePublished"`
	DateModified  string       `json:"dateModified"`
	About         thing        `json:"about"`
	MainEntity    *article     `json:"mainEntity,omitempty"`
	HasPart       []article    `json:"hasPart,omitempty"`
	IsPartOf      thing        `json:"isPartOf"`
	Publisher     organization `json:"publisher"`
	Breadcrumb    reference    `json:"breadcrumb"`
}

type listItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type breadcrumbList struct {
	Type            string     `json:"@type"`
	ID              string     `json:"@id"`
	ItemListElement []listItem `json:"itemListElement"`
}

// JSONLDBuilder はフィードページのJSON-LDを組み立てる。
type JSONLDBuilder struct {
	baseURL   string
	sanitizer security.TextSanitizer
}

// NewJSONLDBuilder はJSONLDBuilderを生成する。
func NewJSONLDBuilder(baseURL string, sanitizer security.TextSanitizer) *JSONLDBuilder {
	if sanitizer == nil {
		sanitizer = security.NewTextSanitizer()
	}
	return &JSONLDBuilder{baseURL: strings.TrimRight(baseURL, "/"), sanitizer: sanitizer}
}

// CleanSummaryText は本文から最初に見つかった区切り以降を取り除き、タグを除去する。
func (b *JSONLDBuilder) CleanSummaryText(text string) string {
	for _, marker := range summaryMarkers {
		if i := strings.Index(text, marker); i >= 0 {
			text = text[:i]
			break
		}
	}
	return b.sanitizer.Sanitize(text)
}

// FeedJSONLD はフィードページのCollectionPageとパンくずリストを返す。
// 本文が十分な長さの時間ごとの要約は、現地時刻付きのAnalysisNewsArticleとして含める。
func (b *JSONLDBuilder) FeedJSONLD(page *archive.Page, locale string) *JSONLD {
	c := page.Country
	date := page.CalendarDate()
	name := c.Name(locale)
	dotted := DottedDate(date)
	lang := HreflangCode(locale)
	url := FeedURL(b.baseURL, locale, c.Key, date)
	published := noonUTC(date).Format(isoMillis)
	loc := dayview.LoadZone(c.Zone())

	var description string
	if locale == LocaleHebrew {
		description = fmt.Sprintf("ארכיון מלא של כותרות חדשות מ-%s ל-%s - כל הכותרות בסדר כרונולוגי", name, dotted)
	} else {
		description = fmt.Sprintf("Complete chronological archive of news headlines from %s for %s - All %d headlines as they appeared throughout the day",
			name, dotted, len(page.Headlines))
	}

	cp := collectionPage{
		Type:          "CollectionPage",
		ID:            url,
		Name:          FeedTitle(page, locale),
		Description:   description,
		URL:           url,
		InLanguage:    lang,
		DatePublished: published,
		DateModified:  published,
		About: thing{
			Type:        "Thing",
			Name:        name + " News",
			Description: fmt.Sprintf("Historical news archive from %s for %s", name, dotted),
		},
		IsPartOf: thing{
			Type: "CreativeWorkSeries",
			Name: name + " News Archive",
			URL:  fmt.Sprintf("%s/%s/%s/history", b.baseURL, locale, c.Key),
		},
		Publisher:  b.publisher(),
		Breadcrumb: reference{ID: url + "#breadcrumb"},
	}

	if ds := page.DailySummary; ds != nil {
		headline := b.sanitizer.Sanitize(ds.HeadlineFor(locale))
		body := b.sanitizer.Sanitize(ds.BodyFor(locale))
		if headline != "" && body != "" {
			entity := b.article(
				fmt.Sprintf("%s %d %d - %s", date.Month.String()[:3], date.Day, date.Year, headline),
				body, published, "Daily news summary for "+name, lang,
			)
			cp.MainEntity = &entity
		}
	}

	for i, s := range page.Summaries {
		body := b.CleanSummaryText(s.BodyFor(locale))
		if titleLength(body) <= minArticleBody {
			continue
		}
		headline := b.CleanSummaryText(summaryHeadline(s, locale))
		if headline == "" {
			headline = fmt.Sprintf("News analysis %d", i+1)
		}
		prefix := s.Timestamp.In(loc).Format("Jan 2 2006, 15:04") + " - "
		cp.HasPart = append(cp.HasPart, b.article(
			prefix+headline, body, s.Timestamp.UTC().Format(isoMillis),
			"Overview of Headlines from "+name, lang,
		))
	}

	crumbs := breadcrumbList{
		Type: "BreadcrumbList",
		ID:   url + "#breadcrumb",
		ItemListElement: []listItem{
			{Type: "ListItem", Position: 1, Name: "Home", Item: b.baseURL + "/"},
			{Type: "ListItem", Position: 2, Name: name, Item: fmt.Sprintf("%s/%s/%s", b.baseURL, locale, c.Key)},
			{Type: "ListItem", Position: 3, Name: dotted, Item: fmt.Sprintf("%s/%s/%s/%s", b.baseURL, locale, c.Key, date.String())},
			{Type: "ListItem", Position: 4, Name: "Feed View", Item: url},
		},
	}

	return &JSONLD{
		Context: "https://schema.org",
		Graph:   []any{cp, crumbs},
	}
}

// summaryHeadline は要約見出しを返す。翻訳見出しにはフォールバックしない。
func summaryHeadline(s model.Summary, locale string) string {
	if locale == LocaleHebrew {
		if strings.TrimSpace(s.HebrewHeadline) != "" {
			return s.HebrewHeadline
		}
		return s.Headline
	}
	if strings.TrimSpace(s.EnglishHeadline) != "" {
		return s.EnglishHeadline
	}
	return s.Headline
}

func (b *JSONLDBuilder) article(headline, body, published, about, lang string) article {
	return article{
		Type:          "AnalysisNewsArticle",
		Headline:      headline,
		ArticleBody:   body,
		DatePublished: published,
		Image:         imageObject{Type: "ImageObject", URL: b.baseURL + "/logo512.png", Width: 512, Height: 512},
		Author:        organization{Type: "Organization", Name: SiteName + " AI Analysis", URL: b.baseURL},
		Publisher:     b.publisher(),
		About:         thing{Type: "Thing", Name: about},
		InLanguage:    lang,
	}
}

func (b *JSONLDBuilder) publisher() organization {
	return organization{
		Type:                 "NewsMediaOrganization",
		Name:                 SiteName,
		URL:                  b.baseURL,
		Logo:                 &imageObject{Type: "ImageObject", URL: b.baseURL + "/logo192.png"},
		PublishingPrinciples: b.baseURL + "/methodology",
		Masthead:             b.baseURL + "/about",
	}
}
