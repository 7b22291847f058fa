package dayview

import "github.com/hitoshi/dayline/internal/model"

// dedupSeparator はリンクと見出し文言を連結する区切り文字列。
const dedupSeparator = "|||"

// Dedupe は新しい順に並んだ見出しから、リンクと文言の両方が一致する重複を取り除く。
// 最初に現れたもの（最も新しいもの）を残す。
//
// 文言だけが変わった見出しは別の項目として残る。リンクを持たない見出しは同一性を
// 判定できないため、常に残す。キーはソースをまたいで共有される。
func Dedupe(sorted []model.Headline) []model.Headline {
	out := make([]model.Headline, 0, len(sorted))
	seen := make(map[string]struct{}, len(sorted))

	for _, h := range sorted {
		if !h.HasLink() {
			out = append(out, h)
			continue
		}
		key := h.Link + dedupSeparator + h.Text
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}

	return out
}
