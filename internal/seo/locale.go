package seo

import (
	"golang.org/x/text/language"

	"github.com/hitoshi/dayline/internal/model"
)

// 対応ロケール（URLのパス値）。
const (
	LocaleEnglish = "en"
	LocaleHebrew  = model.LocaleHebrew
)

var supportedTags = []language.Tag{language.English, language.Hebrew}

var localeMatcher = language.NewMatcher(supportedTags)

// IsSupportedLocale はURLのロケール値が対応しているかを返す。
func IsSupportedLocale(locale string) bool {
	return locale == LocaleEnglish || locale == LocaleHebrew
}

// LanguageTag はURLのロケール値に対応する言語タグを返す。
func LanguageTag(locale string) language.Tag {
	if locale == LocaleHebrew {
		return language.Hebrew
	}
	return language.English
}

// HreflangCode はhreflangやinLanguageに使う言語コード（"en" / "he"）を返す。
func HreflangCode(locale string) string {
	base, _ := LanguageTag(locale).Base()
	return base.String()
}

// OpenGraphLocale はOpenGraphのlocale値（"en_US" / "he_IL"）を返す。
// 地域は言語タグから推定する。
func OpenGraphLocale(locale string) string {
	tag := LanguageTag(locale)
	base, _ := tag.Base()
	region, _ := tag.Region()
	return base.String() + "_" + region.String()
}

// NegotiateLocale はAccept-Languageヘッダーから最も合うURLロケール値を返す。
// 解釈できない場合や一致しない場合は英語になる。
func NegotiateLocale(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LocaleEnglish
	}
	_, index, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return LocaleEnglish
	}
	if supportedTags[index] == language.Hebrew {
		return LocaleHebrew
	}
	return LocaleEnglish
}
