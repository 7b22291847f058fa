// Package seo はアーカイブページのタイトル、説明文、構造化データ（JSON-LD）を生成する。
package seo

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/hitoshi/dayline/internal/dayview"
)

// TitleMaxChars は検索結果に表示されるタイトルの目安の長さ（UTF-16単位）。
const TitleMaxChars = 72

const (
	titleSuffix         = " | The Hear"
	hebrewArchiveSuffix = " | ארכיון כותרות"
	titleSeparator      = ": "
)

var hebrewMonths = [...]string{
	"בינואר", "בפברואר", "במרץ", "באפריל", "במאי", "ביוני",
	"ביולי", "באוגוסט", "בספטמבר", "באוקטובר", "בנובמבר", "בדצמבר",
}

// titleLength はブラウザと同じくUTF-16のコード単位で長さを数える。
// 国旗の絵文字は4単位になる。
func titleLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Title は英語ページのタイトルを組み立てる。
// 長さの上限を超える場合は末尾のサイト名、国旗の順に外し、見出しは切り詰めない。
func Title(flag, prefix, headline string) string {
	flag = strings.TrimSpace(flag)
	prefix = normalizeSpace(prefix)
	headline = normalizeSpace(headline)

	compose := func(useFlag, useSuffix bool) string {
		var b strings.Builder
		if useFlag {
			b.WriteString(flag + " ")
		}
		b.WriteString(prefix)
		if headline != "" {
			b.WriteString(titleSeparator + headline)
		}
		if useSuffix {
			b.WriteString(titleSuffix)
		}
		return strings.TrimSpace(b.String())
	}

	useFlag := flag != ""
	if c := compose(useFlag, true); titleLength(c) <= TitleMaxChars {
		return c
	}
	if c := compose(useFlag, false); titleLength(c) <= TitleMaxChars {
		return c
	}
	return compose(false, false)
}

// HebrewTitle はヘブライ語ページのタイトルを組み立てる。
// 長さの上限を超える場合はアーカイブの接尾辞だけを外す。
func HebrewTitle(countryName, hebrewDate, headline string) string {
	prefix := normalizeSpace(countryName) + ", " + normalizeSpace(hebrewDate)
	headline = normalizeSpace(headline)

	compose := func(useSuffix bool) string {
		s := prefix
		if headline != "" {
			s += titleSeparator + headline
		}
		if useSuffix {
			s += hebrewArchiveSuffix
		}
		return strings.TrimSpace(s)
	}

	if c := compose(true); titleLength(c) <= TitleMaxChars {
		return c
	}
	return compose(false)
}

// EnglishDate は "5 Sep 2024" 形式の日付を返す。
func EnglishDate(d dayview.CalendarDate) string {
	return fmt.Sprintf("%d %s %d", d.Day, d.Month.String()[:3], d.Year)
}

// HebrewDate は "5 בספטמבר 2024" 形式の日付を返す。
func HebrewDate(d dayview.CalendarDate) string {
	return fmt.Sprintf("%d %s %d", d.Day, hebrewMonths[d.Month-1], d.Year)
}

// DottedDate は "05.09.2024" 形式の日付を返す。
func DottedDate(d dayview.CalendarDate) string {
	return strings.ReplaceAll(d.String(), "-", ".")
}
