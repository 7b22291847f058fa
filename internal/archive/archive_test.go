package archive

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/dayline/internal/country"
	"github.com/hitoshi/dayline/internal/dayview"
	"github.com/hitoshi/dayline/internal/model"
	"github.com/hitoshi/dayline/internal/window"
)

// --- モック定義 ---

type mockWindowSource struct {
	windowFn func(ctx context.Context, c *country.Country, date dayview.CalendarDate) (*window.Assembled, error)
}

func (m *mockWindowSource) Window(ctx context.Context, c *country.Country, date dayview.CalendarDate) (*window.Assembled, error) {
	return m.windowFn(ctx, c, date)
}

type mockDailyRepo struct {
	listByMonthFn func(ctx context.Context, country string, year int, month time.Month) ([]model.DailySummary, error)
}

func (m *mockDailyRepo) FindByDay(context.Context, string, string) (*model.DailySummary, error) {
	return nil, nil
}

func (m *mockDailyRepo) ListByMonth(ctx context.Context, country string, year int, month time.Month) ([]model.DailySummary, error) {
	return m.listByMonthFn(ctx, country, year, month)
}

type mockMetrics struct {
	views map[string]int
}

func (m *mockMetrics) RecordDayView(mode string)       { m.views[mode]++ }
func (m *mockMetrics) RecordWindowTier(string)         {}
func (m *mockMetrics) RecordWindowFetch(time.Duration) {}
func (m *mockMetrics) RecordCacheRequest(string)       {}
func (m *mockMetrics) RecordSnapshotBuilt(string)      {}
func (m *mockMetrics) RecordSnapshotFailure(string)    {}
func (m *mockMetrics) RecordHTTPStatus(int)            {}

// --- ヘルパー ---

const testCountries = `countries:
  - key: israel
    english: Israel
    hebrew: ישראל
    timezone: Asia/Jerusalem
    launch: 2024-07-04
  - key: germany
    english: Germany
    timezone: Europe/Berlin
    launch: 2024-09-01
`

// testNow は壁時計の「今日」を2024年9月10日に固定する。
var testNow = time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)

func ts(day, hour int) time.Time {
	return time.Date(2024, 9, day, hour, 0, 0, 0, time.UTC)
}

// fixedWindow は前日夜から翌日までの見出しを含むウィンドウを返す。
func fixedWindow(date dayview.CalendarDate) *window.Assembled {
	d := date.Day
	return &window.Assembled{
		Window: dayview.Window{
			Timezone: "UTC",
			Headlines: []model.Headline{
				{ID: "next", SourceID: "a", Text: "n", Link: "l-next", Timestamp: ts(d+1, 1)},
				{ID: "b-mid", SourceID: "b", Text: "x", Link: "l-b", Timestamp: ts(d, 14)},
				{ID: "a-mid", SourceID: "a", Text: "y", Link: "l-a", Timestamp: ts(d, 10)},
				{ID: "c-prev", SourceID: "c", Text: "z", Link: "l-c", Timestamp: ts(d-1, 23)},
			},
			Summaries: []model.Summary{
				{ID: "s-prev", Timestamp: ts(d-1, 22)},
				{ID: "s-mid", Timestamp: ts(d, 12)},
			},
		},
		DailySummary:     &model.DailySummary{Day: date.ISO()},
		YesterdaySummary: &model.DailySummary{Day: date.AddDays(-1).ISO()},
	}
}

func newTestService(t *testing.T, windows WindowSource, daily *mockDailyRepo) (*Service, *mockMetrics) {
	t.Helper()

	reg, err := country.Load(strings.NewReader(testCountries))
	if err != nil {
		t.Fatalf("failed to load countries: %v", err)
	}
	if windows == nil {
		windows = &mockWindowSource{windowFn: func(_ context.Context, _ *country.Country, date dayview.CalendarDate) (*window.Assembled, error) {
			return fixedWindow(date), nil
		}}
	}
	if daily == nil {
		daily = &mockDailyRepo{listByMonthFn: func(context.Context, string, int, time.Month) ([]model.DailySummary, error) {
			return nil, nil
		}}
	}
	m := &mockMetrics{views: map[string]int{}}
	svc := NewService(reg, windows, daily, m, time.UTC)
	svc.now = func() time.Time { return testNow }
	return svc, m
}

func assertAPIError(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError with code %s, got %v", code, err)
	}
	if apiErr.Code != code {
		t.Errorf("code = %s, want %s", apiErr.Code, code)
	}
}

func headlineIDs(hs []model.Headline) []string {
	ids := make([]string, 0, len(hs))
	for _, h := range hs {
		ids = append(ids, h.ID)
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Feed ---

func TestFeed_ValidationOrder(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	tests := []struct {
		name    string
		country string
		date    string
		code    string
	}{
		{"未対応の国は日付より先に検証", "atlantis", "31-02-2024", model.ErrCodeCountryNotFound},
		{"実在しない日付", "israel", "31-02-2024", model.ErrCodeInvalidDate},
		{"形式違い", "israel", "2024-09-05", model.ErrCodeInvalidDate},
		{"今日", "israel", "10-09-2024", model.ErrCodeDayNotArchived},
		{"未来", "israel", "11-09-2024", model.ErrCodeDayNotArchived},
		{"公開開始前", "germany", "31-08-2024", model.ErrCodeBeforeLaunch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Feed(context.Background(), tt.country, tt.date)
			assertAPIError(t, err, tt.code)
		})
	}
}

func TestFeed_ResolvesStrictDay(t *testing.T) {
	svc, m := newTestService(t, nil, nil)

	page, err := svc.Feed(context.Background(), "israel", "05-09-2024")
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}

	if page.Mode != ModeStrict || page.IsToday {
		t.Errorf("mode = %s, isToday = %v", page.Mode, page.IsToday)
	}
	if got := headlineIDs(page.Headlines); !equalStrings(got, []string{"b-mid", "a-mid"}) {
		t.Errorf("headlines = %v, want [b-mid a-mid]", got)
	}
	if len(page.Summaries) != 1 || page.Summaries[0].ID != "s-mid" {
		t.Errorf("summaries = %+v, want [s-mid]", page.Summaries)
	}
	if len(page.Sources) != 2 || page.Sources[0].SourceID != "b" {
		t.Errorf("sources = %+v", page.Sources)
	}
	if page.DailySummary == nil || page.DailySummary.Day != "2024-09-05" {
		t.Errorf("daily summary = %+v", page.DailySummary)
	}
	if page.YesterdaySummary == nil || page.YesterdaySummary.Day != "2024-09-04" {
		t.Errorf("yesterday summary = %+v", page.YesterdaySummary)
	}
	if page.PrevDate != "04-09-2024" || page.NextDate != "06-09-2024" {
		t.Errorf("prev/next = %s/%s", page.PrevDate, page.NextDate)
	}
	if m.views[ModeStrict] != 1 {
		t.Errorf("strict views = %d, want 1", m.views[ModeStrict])
	}
}

// TestFeed_NavigationStopsAtArchiveEdges は公開開始日と昨日で前後リンクが止まることを検証する。
func TestFeed_NavigationStopsAtArchiveEdges(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	yesterday, err := svc.Feed(context.Background(), "israel", "09-09-2024")
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if yesterday.NextDate != "" {
		t.Errorf("NextDate = %q, want empty for yesterday", yesterday.NextDate)
	}

	launch, err := svc.Feed(context.Background(), "germany", "01-09-2024")
	if err != nil {
		t.Fatalf("Feed returned error: %v", err)
	}
	if launch.PrevDate != "" {
		t.Errorf("PrevDate = %q, want empty on launch day", launch.PrevDate)
	}
}

func TestFeed_WindowErrorIsReturned(t *testing.T) {
	windows := &mockWindowSource{windowFn: func(context.Context, *country.Country, dayview.CalendarDate) (*window.Assembled, error) {
		return nil, errors.New("database unavailable")
	}}
	svc, m := newTestService(t, windows, nil)

	if _, err := svc.Feed(context.Background(), "israel", "05-09-2024"); err == nil {
		t.Fatal("expected error")
	}
	if m.views[ModeStrict] != 0 {
		t.Error("failed views should not be counted")
	}
}

// TestFeed_TodayUsesWallClockZone は「今日」の判定に壁時計タイムゾーンを使うことを検証する。
func TestFeed_TodayUsesWallClockZone(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	jerusalem, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	svc.wallClock = jerusalem
	// UTCでは9月9日22時だが、エルサレムでは9月10日1時
	svc.now = func() time.Time { return time.Date(2024, 9, 9, 22, 0, 0, 0, time.UTC) }

	_, err = svc.Feed(context.Background(), "israel", "10-09-2024")
	assertAPIError(t, err, model.ErrCodeDayNotArchived)

	if _, err := svc.Feed(context.Background(), "israel", "09-09-2024"); err != nil {
		t.Errorf("09-09-2024 should be archived in Jerusalem wall clock, got %v", err)
	}
}

// --- Live ---

func TestLive_EmptyDateMeansToday(t *testing.T) {
	svc, m := newTestService(t, nil, nil)

	page, err := svc.Live(context.Background(), "israel", "")
	if err != nil {
		t.Fatalf("Live returned error: %v", err)
	}

	if page.Date != "10-09-2024" || !page.IsToday || page.Mode != ModeContinuity {
		t.Errorf("date = %s, isToday = %v, mode = %s", page.Date, page.IsToday, page.Mode)
	}
	if page.NextDate != "" {
		t.Errorf("NextDate = %q, want empty for today", page.NextDate)
	}
	if m.views[ModeContinuity] != 1 {
		t.Errorf("continuity views = %d, want 1", m.views[ModeContinuity])
	}
}

// TestLive_BackfillsPreviousDayPerSource は継続モードで前日の最終見出しと最終要約が補われることを検証する。
func TestLive_BackfillsPreviousDayPerSource(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	page, err := svc.Live(context.Background(), "israel", "05-09-2024")
	if err != nil {
		t.Fatalf("Live returned error: %v", err)
	}

	if got := headlineIDs(page.Headlines); !equalStrings(got, []string{"b-mid", "a-mid", "c-prev"}) {
		t.Errorf("headlines = %v, want [b-mid a-mid c-prev]", got)
	}
	if len(page.Summaries) != 2 || page.Summaries[0].ID != "s-mid" || page.Summaries[1].ID != "s-prev" {
		t.Errorf("summaries = %+v", page.Summaries)
	}
	if page.IsToday {
		t.Error("05-09-2024 is not today")
	}
	if page.NextDate != "06-09-2024" {
		t.Errorf("NextDate = %q", page.NextDate)
	}
}

func TestLive_Validation(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	tests := []struct {
		name    string
		country string
		date    string
		code    string
	}{
		{"未対応の国", "atlantis", "", model.ErrCodeCountryNotFound},
		{"不正な日付", "israel", "5-9-2024", model.ErrCodeInvalidDate},
		{"未来の日付", "israel", "11-09-2024", model.ErrCodeInvalidDate},
		{"公開開始前", "germany", "15-08-2024", model.ErrCodeBeforeLaunch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Live(context.Background(), tt.country, tt.date)
			assertAPIError(t, err, tt.code)
		})
	}
}

// --- Month ---

func TestMonth_ReturnsDailySummaries(t *testing.T) {
	var gotYear int
	var gotMonth time.Month
	daily := &mockDailyRepo{listByMonthFn: func(_ context.Context, _ string, year int, month time.Month) ([]model.DailySummary, error) {
		gotYear, gotMonth = year, month
		return []model.DailySummary{
			{Day: "2024-08-01"},
			{Day: "2024-08-02", SummaryText: model.SummaryText{HebrewHeadline: "כותרת"}},
		}, nil
	}}
	svc, _ := newTestService(t, nil, daily)

	page, err := svc.Month(context.Background(), "israel", "2024", "08")
	if err != nil {
		t.Fatalf("Month returned error: %v", err)
	}

	if gotYear != 2024 || gotMonth != time.August {
		t.Errorf("queried %d/%d, want 2024/8", gotYear, gotMonth)
	}
	if len(page.Days) != 2 || !page.HasHebrew {
		t.Errorf("days = %d, hasHebrew = %v", len(page.Days), page.HasHebrew)
	}
	if page.PrevMonth != "2024/07" || page.NextMonth != "2024/09" {
		t.Errorf("prev/next = %s/%s", page.PrevMonth, page.NextMonth)
	}
}

func TestMonth_EdgesOfRange(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	launch, err := svc.Month(context.Background(), "israel", "2024", "07")
	if err != nil {
		t.Fatalf("launch month returned error: %v", err)
	}
	if launch.PrevMonth != "" {
		t.Errorf("PrevMonth = %q, want empty on launch month", launch.PrevMonth)
	}
	if launch.Days == nil {
		t.Error("Days should be non-nil")
	}

	current, err := svc.Month(context.Background(), "israel", "2024", "9")
	if err != nil {
		t.Fatalf("current month returned error: %v", err)
	}
	if current.NextMonth != "" {
		t.Errorf("NextMonth = %q, want empty on current month", current.NextMonth)
	}
}

func TestMonth_InvalidMonths(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	tests := []struct {
		name  string
		year  string
		month string
	}{
		{"公開開始前の月", "2024", "06"},
		{"未来の月", "2024", "10"},
		{"13月", "2024", "13"},
		{"0月", "2024", "00"},
		{"2桁の年", "24", "08"},
		{"数値でない", "2024", "aug"},
		{"符号付きの月", "2024", "+9"},
		{"負の月", "2024", "-9"},
		{"符号付きの年", "+024", "09"},
		{"3桁の月", "2024", "009"},
		{"空の月", "2024", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Month(context.Background(), "israel", tt.year, tt.month)
			assertAPIError(t, err, model.ErrCodeInvalidMonth)
		})
	}
}

// --- Days ---

func TestDays_ListsLaunchToYesterdayNewestFirst(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	page, err := svc.Days("germany")
	if err != nil {
		t.Fatalf("Days returned error: %v", err)
	}

	if len(page.Days) != 9 {
		t.Fatalf("len = %d, want 9: %v", len(page.Days), page.Days)
	}
	if page.Days[0] != "09-09-2024" || page.Days[8] != "01-09-2024" {
		t.Errorf("first/last = %s/%s", page.Days[0], page.Days[8])
	}

	_, err = svc.Days("atlantis")
	assertAPIError(t, err, model.ErrCodeCountryNotFound)
}
