package model

import "time"

// Snapshot は締め切られたUTC日付のBucketを事前計算して保存したもの。
type Snapshot struct {
	ID          string
	Country     string
	Day         string // yyyy-mm-dd (UTC)
	Bucket      Bucket
	GeneratedAt time.Time
}

// IsComplete はバケットの締め切り後に生成されたスナップショットかどうかを返す。
// 締め切り前に生成されたものはその後の見出しを含まない可能性がある。
func (s *Snapshot) IsComplete() bool {
	day, err := time.Parse(time.DateOnly, s.Day)
	if err != nil {
		return false
	}
	return !s.GeneratedAt.Before(day.AddDate(0, 0, 1))
}
