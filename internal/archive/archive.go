// Package archive は国ごとのアーカイブページ（日付フィード、ライブ、月次一覧）のデータを組み立てる。
package archive

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/hitoshi/dayline/internal/country"
	"github.com/hitoshi/dayline/internal/dayview"
	"github.com/hitoshi/dayline/internal/metrics"
	"github.com/hitoshi/dayline/internal/model"
	"github.com/hitoshi/dayline/internal/repository"
	"github.com/hitoshi/dayline/internal/window"
)

// ビューの解決モード。
const (
	ModeStrict     = "strict"
	ModeContinuity = "continuity"
)

// WindowSource は3日分のウィンドウを提供するインターフェース。
type WindowSource interface {
	Window(ctx context.Context, c *country.Country, date dayview.CalendarDate) (*window.Assembled, error)
}

// Page は1日分に解決されたページデータ。
type Page struct {
	Country          *country.Country          `json:"country"`
	Date             string                    `json:"date"` // dd-MM-yyyy
	Mode             string                    `json:"mode"`
	IsToday          bool                      `json:"is_today"`
	Headlines        []model.Headline          `json:"headlines"`
	Summaries        []model.Summary           `json:"summaries"`
	Sources          []dayview.SourceHeadlines `json:"sources"`
	DailySummary     *model.DailySummary       `json:"daily_summary,omitempty"`
	YesterdaySummary *model.DailySummary       `json:"yesterday_summary,omitempty"`
	PrevDate         string                    `json:"prev_date,omitempty"`
	NextDate         string                    `json:"next_date,omitempty"`
}

// CalendarDate はページの対象日を返す。Dateが不正な場合はゼロ値。
func (p *Page) CalendarDate() dayview.CalendarDate {
	d, err := dayview.ParseCalendarDate(p.Date)
	if err != nil {
		return dayview.CalendarDate{}
	}
	return d
}

// MonthPage は月次アーカイブのデータ。
type MonthPage struct {
	Country   *country.Country     `json:"country"`
	Year      int                  `json:"year"`
	Month     int                  `json:"month"`
	Days      []model.DailySummary `json:"days"`
	HasHebrew bool                 `json:"has_hebrew"`
	PrevMonth string               `json:"prev_month,omitempty"` // yyyy/mm
	NextMonth string               `json:"next_month,omitempty"`
}

// DaysPage はアーカイブ済みの日付一覧。新しい順に並ぶ。
type DaysPage struct {
	Country *country.Country `json:"country"`
	Days    []string         `json:"days"` // dd-MM-yyyy
}

// Service はアーカイブページのデータを組み立てるサービス。
type Service struct {
	registry  *country.Registry
	windows   WindowSource
	daily     repository.DailySummaryRepository
	metrics   metrics.MetricsCollector
	wallClock *time.Location
	now       func() time.Time
}

// NewService はServiceを生成する。
// wallClockは「今日」の判定と継続モードの日付境界に使うタイムゾーン。nilの場合はUTC。
func NewService(
	registry *country.Registry,
	windows WindowSource,
	daily repository.DailySummaryRepository,
	m metrics.MetricsCollector,
	wallClock *time.Location,
) *Service {
	if wallClock == nil {
		wallClock = time.UTC
	}
	return &Service{
		registry:  registry,
		windows:   windows,
		daily:     daily,
		metrics:   m,
		wallClock: wallClock,
		now:       time.Now,
	}
}

// Countries は対応国の一覧を返す。
func (s *Service) Countries() []*country.Country {
	return s.registry.All()
}

// Today は壁時計タイムゾーンにおける今日の日付を返す。
func (s *Service) Today() dayview.CalendarDate {
	return dayview.DateOf(s.now().In(s.wallClock))
}

// Feed は厳密モードで解決した過去1日分のページを返す。
// 未対応の国、不正な日付、今日以降の日付、公開開始前の日付の順に検証する。
func (s *Service) Feed(ctx context.Context, countryKey, dateStr string) (*Page, error) {
	c, ok := s.registry.Lookup(countryKey)
	if !ok {
		return nil, model.NewCountryNotFoundError(countryKey)
	}
	date, err := dayview.ParseCalendarDate(dateStr)
	if err != nil {
		return nil, model.NewInvalidDateError(dateStr)
	}
	today := s.Today()
	if !date.Before(today) {
		return nil, model.NewDayNotArchivedError(dateStr)
	}
	if date.Before(c.LaunchDay()) {
		return nil, model.NewBeforeLaunchError(countryKey, dateStr)
	}

	assembled, err := s.windows.Window(ctx, c, date)
	if err != nil {
		return nil, err
	}

	view := dayview.ResolveStrictDayView(assembled.Window, date)
	s.recordView(ModeStrict)

	return s.newPage(c, date, today, ModeStrict, view, assembled), nil
}

// Live は継続モードで解決したページを返す。dateStrが空の場合は今日を対象にする。
// 未来の日付は不正な日付として扱う。
func (s *Service) Live(ctx context.Context, countryKey, dateStr string) (*Page, error) {
	c, ok := s.registry.Lookup(countryKey)
	if !ok {
		return nil, model.NewCountryNotFoundError(countryKey)
	}
	today := s.Today()
	date := today
	if dateStr != "" {
		d, err := dayview.ParseCalendarDate(dateStr)
		if err != nil || today.Before(d) {
			return nil, model.NewInvalidDateError(dateStr)
		}
		date = d
	}
	if date.Before(c.LaunchDay()) {
		return nil, model.NewBeforeLaunchError(countryKey, date.String())
	}

	assembled, err := s.windows.Window(ctx, c, date)
	if err != nil {
		return nil, err
	}

	view := dayview.ResolveContinuityDayViewIn(assembled.Window, date, s.wallClock)
	s.recordView(ModeContinuity)

	return s.newPage(c, date, today, ModeContinuity, view, assembled), nil
}

func (s *Service) newPage(c *country.Country, date, today dayview.CalendarDate, mode string, view dayview.View, a *window.Assembled) *Page {
	p := &Page{
		Country:          c,
		Date:             date.String(),
		Mode:             mode,
		IsToday:          date == today,
		Headlines:        view.Headlines,
		Summaries:        view.Summaries,
		Sources:          dayview.GroupBySource(view.Headlines),
		DailySummary:     a.DailySummary,
		YesterdaySummary: a.YesterdaySummary,
	}
	if prev := date.AddDays(-1); !prev.Before(c.LaunchDay()) {
		p.PrevDate = prev.String()
	}
	// 厳密モードの翌日リンクはアーカイブ済みの日付まで、継続モードは今日まで
	next := date.AddDays(1)
	if next.Before(today) || (mode == ModeContinuity && next == today) {
		p.NextDate = next.String()
	}
	return p
}

// Month は指定月の日次総括一覧を返す。
// 月は公開開始月から今月までの範囲でなければならない。
func (s *Service) Month(ctx context.Context, countryKey, yearStr, monthStr string) (*MonthPage, error) {
	c, ok := s.registry.Lookup(countryKey)
	if !ok {
		return nil, model.NewCountryNotFoundError(countryKey)
	}

	// Atoiは符号を受け付けるので、先に数字だけで構成されていることを確かめる
	if len(yearStr) != 4 || !isDigits(yearStr) || len(monthStr) > 2 || !isDigits(monthStr) {
		return nil, model.NewInvalidMonthError(yearStr, monthStr)
	}
	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	if month < 1 || month > 12 {
		return nil, model.NewInvalidMonthError(yearStr, monthStr)
	}

	launch := c.LaunchDay()
	today := s.Today()
	requested := monthIndex(year, time.Month(month))
	first := monthIndex(launch.Year, launch.Month)
	last := monthIndex(today.Year, today.Month)
	if requested < first || requested > last {
		return nil, model.NewInvalidMonthError(yearStr, monthStr)
	}

	days, err := s.daily.ListByMonth(ctx, c.Key, year, time.Month(month))
	if err != nil {
		return nil, fmt.Errorf("failed to list daily summaries: %w", err)
	}
	if days == nil {
		days = []model.DailySummary{}
	}

	p := &MonthPage{
		Country: c,
		Year:    year,
		Month:   month,
		Days:    days,
	}
	for _, d := range days {
		if d.HasHebrew() {
			p.HasHebrew = true
			break
		}
	}
	if requested > first {
		p.PrevMonth = formatMonthIndex(requested - 1)
	}
	if requested < last {
		p.NextMonth = formatMonthIndex(requested + 1)
	}
	return p, nil
}

// isDigits はsが1文字以上のASCII数字だけからなるかを返す。
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Days は公開開始日から昨日までのアーカイブ日付を新しい順で返す。
func (s *Service) Days(countryKey string) (*DaysPage, error) {
	c, ok := s.registry.Lookup(countryKey)
	if !ok {
		return nil, model.NewCountryNotFoundError(countryKey)
	}

	launch := c.LaunchDay()
	days := make([]string, 0)
	for d := s.Today().AddDays(-1); !d.Before(launch); d = d.AddDays(-1) {
		days = append(days, d.String())
	}
	return &DaysPage{Country: c, Days: days}, nil
}

func (s *Service) recordView(mode string) {
	if s.metrics != nil {
		s.metrics.RecordDayView(mode)
	}
}

func monthIndex(year int, month time.Month) int {
	return year*12 + int(month) - 1
}

func formatMonthIndex(i int) string {
	return fmt.Sprintf("%04d/%02d", i/12, i%12+1)
}
