package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/dayline/internal/model"
)

func TestCleanSummaryText(t *testing.T) {
	b := NewJSONLDBuilder(testBaseURL, nil)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"区切りなし", "Plain overview", "Plain overview"},
		{"HEBREWSUMMARY以降を除去", "English body HEBREWSUMMARY: גוף", "English body"},
		{"LOCALSUMMARY以降を除去", "Body LOCALSUMMARY: local SUMMARY: x", "Body"},
		{"SUMMARY以降を除去", "Body SUMMARY: rest", "Body"},
		{"タグを除去", "<p>Body</p> SUMMARY: rest", "Body"},
		{"空文字列", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.CleanSummaryText(tt.input); got != tt.want {
				t.Errorf("CleanSummaryText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFeedJSONLD_Structure(t *testing.T) {
	page := israelPage()
	page.Summaries = []model.Summary{
		{
			ID:        "s1",
			Timestamp: time.Date(2024, 9, 5, 11, 0, 0, 0, time.UTC),
			SummaryText: model.SummaryText{
				Summary:         "<p>Negotiators met in Cairo today.</p>HEBREWSUMMARY: שלום",
				EnglishHeadline: "Cairo talks",
			},
		},
		{
			ID:          "s2",
			Timestamp:   time.Date(2024, 9, 5, 10, 0, 0, 0, time.UTC),
			SummaryText: model.SummaryText{Summary: "Too short", EnglishHeadline: "Skipped"},
		},
		{
			ID:          "s3",
			Timestamp:   time.Date(2024, 9, 5, 9, 30, 0, 0, time.UTC),
			SummaryText: model.SummaryText{Summary: "A long enough overview without a headline."},
		},
	}

	ld := NewJSONLDBuilder(testBaseURL, nil).FeedJSONLD(page, "en")
	raw, err := json.Marshal(ld)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var doc struct {
		Context string `json:"@context"`
		Graph   []struct {
			Type       string `json:"@type"`
			ID         string `json:"@id"`
			Name       string `json:"name"`
			InLanguage string `json:"inLanguage"`
			MainEntity *struct {
				Headline string `json:"headline"`
			} `json:"mainEntity"`
			HasPart []struct {
				Headline      string `json:"headline"`
				ArticleBody   string `json:"articleBody"`
				DatePublished string `json:"datePublished"`
			} `json:"hasPart"`
			ItemListElement []struct {
				Position int    `json:"position"`
				Item     string `json:"item"`
			} `json:"itemListElement"`
		} `json:"@graph"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if doc.Context != "https://schema.org" || len(doc.Graph) != 2 {
		t.Fatalf("unexpected document: %s", raw)
	}

	cp := doc.Graph[0]
	if cp.Type != "CollectionPage" || cp.ID != "https://thehear.example/en/israel/05-09-2024/feed" {
		t.Errorf("collection page = %+v", cp)
	}
	if cp.InLanguage != "en" {
		t.Errorf("inLanguage = %q", cp.InLanguage)
	}
	if cp.MainEntity == nil || cp.MainEntity.Headline != "Sep 5 2024 - Talks resume" {
		t.Errorf("mainEntity = %+v", cp.MainEntity)
	}

	if len(cp.HasPart) != 2 {
		t.Fatalf("hasPart = %d items, want 2: %s", len(cp.HasPart), raw)
	}
	// エルサレムは夏時間でUTC+3
	if cp.HasPart[0].Headline != "Sep 5 2024, 14:00 - Cairo talks" {
		t.Errorf("hasPart[0].headline = %q", cp.HasPart[0].Headline)
	}
	if cp.HasPart[0].ArticleBody != "Negotiators met in Cairo today." {
		t.Errorf("hasPart[0].articleBody = %q", cp.HasPart[0].ArticleBody)
	}
	if cp.HasPart[0].DatePublished != "2024-09-05T11:00:00.000Z" {
		t.Errorf("hasPart[0].datePublished = %q", cp.HasPart[0].DatePublished)
	}
	if cp.HasPart[1].Headline != "Sep 5 2024, 12:30 - News analysis 3" {
		t.Errorf("hasPart[1].headline = %q", cp.HasPart[1].Headline)
	}

	crumbs := doc.Graph[1]
	if crumbs.Type != "BreadcrumbList" || len(crumbs.ItemListElement) != 4 {
		t.Fatalf("breadcrumb = %+v", crumbs)
	}
	if crumbs.ItemListElement[3].Item != cp.ID {
		t.Errorf("last breadcrumb = %q, want %q", crumbs.ItemListElement[3].Item, cp.ID)
	}
}

func TestFeedJSONLD_HebrewWithoutDailySummary(t *testing.T) {
	page := israelPage()
	page.DailySummary = nil

	ld := NewJSONLDBuilder(testBaseURL, nil).FeedJSONLD(page, "heb")
	raw, err := json.Marshal(ld)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	s := string(raw)
	if strings.Contains(s, "mainEntity") || strings.Contains(s, "hasPart") {
		t.Errorf("empty sections should be omitted: %s", s)
	}
	if !strings.Contains(s, `"inLanguage":"he"`) {
		t.Errorf("inLanguage should be he: %s", s)
	}
	if !strings.Contains(s, "כל הכותרות בסדר כרונולוגי") {
		t.Errorf("Hebrew description missing: %s", s)
	}
}
