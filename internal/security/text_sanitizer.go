// Package security は外部から取り込んだテキストを公開用に無害化する機能を提供する。
//
// 見出しや要約は取り込みパイプラインが書き込むため、HTML断片や制御文字を含みうる。
// TextSanitizer はbluemondayのStrictPolicyで全てのタグを除去し、プレーンテキストに戻す。
package security

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はテキスト無害化のインターフェース。
type TextSanitizer interface {
	// Sanitize はタグを除去し、空白を1つにまとめたプレーンテキストを返す。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(raw string) string
}

// textSanitizer はTextSanitizerの実装。bluemondayのポリシーはスレッドセーフ。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はStrictPolicyを使うTextSanitizerを生成する。
func NewTextSanitizer() TextSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去してプレーンテキストを返す。
// StrictPolicyがエスケープした文字実体は元の文字に戻す。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := html.UnescapeString(s.policy.Sanitize(raw))
	return collapseSpace(stripped)
}

// collapseSpace は連続する空白と制御文字を1つの空白にまとめ、前後の空白を除く。
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
