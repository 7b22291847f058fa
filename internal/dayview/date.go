package dayview

import (
	"fmt"
	"time"
)

// dateLayout はURLで使われる日付形式（dd-MM-yyyy）。
const dateLayout = "02-01-2006"

// isoLayout はバケットやDBのday列で使う日付形式（yyyy-mm-dd）。
const isoLayout = "2006-01-02"

// CalendarDate はタイムゾーンを持たない暦日を表す。
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate は年月日からCalendarDateを生成する。
// 範囲外の値はtime.Dateと同様に正規化される。
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return DateOf(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// DateOf は時刻tのロケーションにおける暦日を返す。
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseCalendarDate は dd-MM-yyyy 形式の文字列を厳密に解析する。
// 31-02-2026 のような実在しない日付や、ゼロ埋めされていない表記はエラーになる。
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid calendar date %q: %w", s, err)
	}
	d := DateOf(t)
	if d.String() != s {
		return CalendarDate{}, fmt.Errorf("invalid calendar date %q: does not round-trip", s)
	}
	return d, nil
}

// ParseISODate は yyyy-mm-dd 形式の文字列を解析する。
func ParseISODate(s string) (CalendarDate, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid iso date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String は dd-MM-yyyy 形式の文字列を返す。
func (d CalendarDate) String() string {
	return fmt.Sprintf("%02d-%02d-%04d", d.Day, int(d.Month), d.Year)
}

// ISO は yyyy-mm-dd 形式の文字列を返す。
func (d CalendarDate) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero はゼロ値かどうかを返す。
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// AddDays はn日後（負なら前）の暦日を返す。
func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewCalendarDate(d.Year, d.Month, d.Day+n)
}

// Compare はdがoより前なら-1、同じなら0、後なら+1を返す。
func (d CalendarDate) Compare(o CalendarDate) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before はdがoより前の日付かどうかを返す。
func (d CalendarDate) Before(o CalendarDate) bool {
	return d.Compare(o) < 0
}

// MidnightUTC はその日のUTC 00:00を返す。UTC日付バケットの境界に使う。
func (d CalendarDate) MidnightUTC() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
