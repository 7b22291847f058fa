package model

import "time"

// Headline はニュースサイトのトップ見出しを取得時点でスナップショットしたもの。
// 同じLinkを持つ複数のHeadlineは、同一記事枠の見出し文言の変遷を表す。
type Headline struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	Text     string `json:"headline"`
	Subtitle string `json:"subtitle,omitempty"`
	Link     string `json:"link,omitempty"` // 空文字列はリンクなし
	Image    string `json:"image,omitempty"`
	// Timestamp は見出しを観測したUTC時刻。
	Timestamp time.Time `json:"timestamp"`
}

// HasLink はHeadlineが記事URLを持つかどうかを返す。
func (h Headline) HasLink() bool {
	return h.Link != ""
}

// Bucket はあるUTC日付に属する生データのまとまり。
// スナップショット、キャッシュ、ライブクエリのいずれの層も同じ形で返す。
// 日次総括は現地日付の終了後に書き込まれるため、固定化するBucketには含めない。
type Bucket struct {
	Country   string     `json:"country"`
	Day       string     `json:"day"` // yyyy-mm-dd (UTC)
	Headlines []Headline `json:"headlines"`
	Summaries []Summary  `json:"summaries"`
}

// IsEmpty はBucketに見出しも要約も含まれないかどうかを返す。
func (b *Bucket) IsEmpty() bool {
	return b == nil || (len(b.Headlines) == 0 && len(b.Summaries) == 0)
}
