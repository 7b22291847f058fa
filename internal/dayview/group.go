package dayview

import "github.com/hitoshi/dayline/internal/model"

// SourceHeadlines はひとつのソースに属する見出しの列。
type SourceHeadlines struct {
	SourceID  string           `json:"source_id"`
	Headlines []model.Headline `json:"headlines"`
}

// GroupBySource は見出しをソースごとにまとめる。
// 入力が新しい順であれば、各グループ内も新しい順になり、
// グループ自体は最新見出しが新しい順に並ぶ。
func GroupBySource(headlines []model.Headline) []SourceHeadlines {
	index := make(map[string]int)
	groups := make([]SourceHeadlines, 0)

	for _, h := range headlines {
		i, ok := index[h.SourceID]
		if !ok {
			i = len(groups)
			index[h.SourceID] = i
			groups = append(groups, SourceHeadlines{SourceID: h.SourceID})
		}
		groups[i].Headlines = append(groups[i].Headlines, h)
	}

	return groups
}
