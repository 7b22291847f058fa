package dayview

import (
	"time"
	_ "time/tzdata" // ホストにzoneinfoが無い環境でもIANA名を解決する
)

// endOfDayFraction は 23:59:59 に加えるミリ秒部分。
const endOfDayFraction = 999 * time.Millisecond

// Bounds はローカル1日分の時刻範囲。StartとEndの両端を含む。
type Bounds struct {
	Start time.Time
	End   time.Time
}

// Contains はtが範囲内（両端含む）にあるかを返す。
func (b Bounds) Contains(t time.Time) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

// LoadZone はIANAタイムゾーン名をロケーションに解決する。
// 空文字列、"Local"、解決できない名前はUTCとして扱う。
func LoadZone(tz string) *time.Location {
	if tz == "" || tz == "Local" || tz == "UTC" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolveBounds は暦日dateのタイムゾーンtzにおける 00:00:00.000 と 23:59:59.999 を
// UTCの時刻として返す。
//
// 各境界はオフセットを個別に推定する。DST切り替え日は開始と終了でオフセットが異なりうるため、
// 1日を通して同じオフセットを仮定してはならない。
func ResolveBounds(date CalendarDate, tz string) Bounds {
	loc := LoadZone(tz)
	return Bounds{
		Start: probeWallClock(date, 0, 0, 0, 0, loc),
		End:   probeWallClock(date, 23, 59, 59, endOfDayFraction, loc),
	}
}

// probeWallClock はローカル壁時計時刻に対応するUTC時刻をオフセット推定で求める。
//
//  1. 壁時計の各成分をそのままUTCとみなした時刻 naive を作る
//  2. naive を対象タイムゾーンで表示したときの各成分を得る
//  3. その成分を再びUTCとみなして rendered を作る
//  4. naive - rendered がその瞬間のオフセット
//  5. naive にオフセットを足したものが求める時刻
//
// オフセットは秒単位で求め、ミリ秒部分は最後に加える。
func probeWallClock(date CalendarDate, hour, min, sec int, frac time.Duration, loc *time.Location) time.Time {
	naive := time.Date(date.Year, date.Month, date.Day, hour, min, sec, 0, time.UTC)

	r := naive.In(loc)
	rendered := time.Date(r.Year(), r.Month(), r.Day(), r.Hour(), r.Minute(), r.Second(), 0, time.UTC)

	offset := naive.Sub(rendered)
	return naive.Add(offset).Add(frac)
}

// WallClockBounds は暦日dateのlocにおける壁時計上の 00:00:00.000 と 23:59:59.999 を返す。
// 継続表示モードで使う。locのDST処理はtime.Dateの正規化に従う。
func WallClockBounds(date CalendarDate, loc *time.Location) Bounds {
	if loc == nil {
		loc = time.Local
	}
	return Bounds{
		Start: time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, loc),
		End:   time.Date(date.Year, date.Month, date.Day, 23, 59, 59, int(endOfDayFraction), loc),
	}
}
