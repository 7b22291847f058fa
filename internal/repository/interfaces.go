// Package repository はデータ永続化のインターフェースとPostgreSQL実装を提供する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/dayline/internal/model"
)

// HeadlineRepository は見出しデータの読み取りインターフェース。
// 見出しの書き込みは取り込みパイプラインが行う。
type HeadlineRepository interface {
	// ListBetween は国の見出しのうちTimestampが[from, to)に入るものを新しい順で返す。
	ListBetween(ctx context.Context, country string, from, to time.Time) ([]model.Headline, error)
}

// SummaryRepository は時間ごとの要約の読み取りインターフェース。
type SummaryRepository interface {
	// ListBetween は国の要約のうちTimestampが[from, to)に入るものを新しい順で返す。
	ListBetween(ctx context.Context, country string, from, to time.Time) ([]model.Summary, error)
}

// DailySummaryRepository は日次総括の読み取りインターフェース。
type DailySummaryRepository interface {
	// FindByDay は指定日（yyyy-mm-dd）の日次総括を返す。見つからない場合はnilを返す。
	FindByDay(ctx context.Context, country, day string) (*model.DailySummary, error)

	// ListByMonth は指定月の日次総括を日付の昇順で返す。
	ListByMonth(ctx context.Context, country string, year int, month time.Month) ([]model.DailySummary, error)
}

// SnapshotRepository は日付バケットのスナップショットの永続化インターフェース。
type SnapshotRepository interface {
	// Find は指定日（yyyy-mm-dd）のスナップショットを返す。見つからない場合はnilを返す。
	Find(ctx context.Context, country, day string) (*model.Snapshot, error)

	// Upsert はスナップショットを作成または置き換える。
	Upsert(ctx context.Context, snapshot *model.Snapshot) error

	// ListMissing はdaysのうちスナップショットが存在しない日付を昇順で返す。
	ListMissing(ctx context.Context, country string, days []string) ([]string, error)

	// DeleteIncomplete はバケットの締め切り前に生成されたスナップショットを削除し、削除件数を返す。
	DeleteIncomplete(ctx context.Context) (int64, error)
}
