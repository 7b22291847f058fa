// Package dayview は国ごとの見出しと要約を、指定した1日分のビューに整える。
//
// 呼び出し側は前日・当日・翌日の3日分の生データをWindowにまとめて渡し、
// 厳密モード（アーカイブ用、その日の項目のみ）または継続モード
// （ライブ／タイムマシン用、ソースごとに前日最後の項目を補う）で結果を受け取る。
//
// このパッケージはI/Oを行わず、入力スライスを変更しない。どの関数も並行に呼び出してよい。
package dayview

import (
	"slices"
	"time"

	"github.com/hitoshi/dayline/internal/model"
)

// Window は対象日とその前後を含む生データの集合。
// nilのスライスは空として扱う。
type Window struct {
	Headlines []model.Headline
	Summaries []model.Summary
	// Timezone は国の日付境界を解釈するIANAタイムゾーン名。不明な場合はUTCになる。
	Timezone string
}

// View は1日分に解決された見出しと要約。いずれも新しい順に並ぶ。
type View struct {
	Headlines []model.Headline `json:"headlines"`
	Summaries []model.Summary  `json:"summaries"`
}

// ResolveStrictDayView はウィンドウのタイムゾーンにおける対象日の項目だけを返す。
// 日付をまたいだ項目は含めない。見出しはリンクと文言の組で重複除去する。
func ResolveStrictDayView(w Window, date CalendarDate) View {
	b := ResolveBounds(date, w.Timezone)

	headlines := headlinesWithin(w.Headlines, b)
	sortHeadlines(headlines)

	summaries := summariesWithin(w.Summaries, b)
	sortSummaries(summaries)

	return View{
		Headlines: Dedupe(headlines),
		Summaries: summaries,
	}
}

// ResolveContinuityDayView はプロセスのローカルタイムゾーンを壁時計として
// ResolveContinuityDayViewIn を呼び出す。
func ResolveContinuityDayView(w Window, date CalendarDate) View {
	return ResolveContinuityDayViewIn(w, date, time.Local)
}

// ResolveContinuityDayViewIn は対象日の項目に加えて、ウィンドウ内に現れる各ソースについて
// 対象日の開始より前の最新見出しを1件ずつ補ったビューを返す。
// 要約も同様に、開始より前の最新要約を1件補う。
//
// 日付境界はlocにおける壁時計の 00:00:00.000〜23:59:59.999 で、w.Timezone は参照しない。
// 開始時刻ちょうどの項目は当日分に含まれ、前日分としては数えない。
func ResolveContinuityDayViewIn(w Window, date CalendarDate, loc *time.Location) View {
	b := WallClockBounds(date, loc)

	headlines := headlinesWithin(w.Headlines, b)
	headlines = append(headlines, latestPerSourceBefore(w.Headlines, b.Start)...)
	sortHeadlines(headlines)

	summaries := summariesWithin(w.Summaries, b)
	if prior, ok := latestSummaryBefore(w.Summaries, b.Start); ok {
		summaries = append([]model.Summary{prior}, summaries...)
	}
	// 前日分の要約が無くても入力順は保たず、常に新しい順に並べ直す
	sortSummaries(summaries)

	return View{
		Headlines: Dedupe(headlines),
		Summaries: summaries,
	}
}

// headlinesWithin は範囲内の見出しを新しいスライスにコピーして返す。
func headlinesWithin(src []model.Headline, b Bounds) []model.Headline {
	out := make([]model.Headline, 0, len(src))
	for _, h := range src {
		if b.Contains(h.Timestamp) {
			out = append(out, h)
		}
	}
	return out
}

func summariesWithin(src []model.Summary, b Bounds) []model.Summary {
	out := make([]model.Summary, 0, len(src))
	for _, s := range src {
		if b.Contains(s.Timestamp) {
			out = append(out, s)
		}
	}
	return out
}

// latestPerSourceBefore はソースごとにstartより前で最も新しい見出しを返す。
// ソースはウィンドウ全体で最初に現れた順に並ぶ。同時刻の見出しは先に現れた方を採る。
func latestPerSourceBefore(src []model.Headline, start time.Time) []model.Headline {
	var order []string
	latest := make(map[string]model.Headline)
	seen := make(map[string]bool)

	for _, h := range src {
		if !seen[h.SourceID] {
			seen[h.SourceID] = true
			order = append(order, h.SourceID)
		}
		if !h.Timestamp.Before(start) {
			continue
		}
		if cur, ok := latest[h.SourceID]; !ok || h.Timestamp.After(cur.Timestamp) {
			latest[h.SourceID] = h
		}
	}

	out := make([]model.Headline, 0, len(latest))
	for _, sourceID := range order {
		if h, ok := latest[sourceID]; ok {
			out = append(out, h)
		}
	}
	return out
}

func latestSummaryBefore(src []model.Summary, start time.Time) (model.Summary, bool) {
	var latest model.Summary
	found := false
	for _, s := range src {
		if !s.Timestamp.Before(start) {
			continue
		}
		if !found || s.Timestamp.After(latest.Timestamp) {
			latest = s
			found = true
		}
	}
	return latest, found
}

// sortHeadlines は新しい順に安定ソートする。同時刻の項目は元の順序を保つ。
func sortHeadlines(hs []model.Headline) {
	slices.SortStableFunc(hs, func(a, b model.Headline) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

func sortSummaries(ss []model.Summary) {
	slices.SortStableFunc(ss, func(a, b model.Summary) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
