package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/dayline/internal/model"
)

const summaryTextColumns = `summary, translated_summary, hebrew_summary,
		        headline, english_headline, hebrew_headline, translated_headline`

// summaryTextDest はSummaryTextの各フィールドをScan先として返す。
// 並び順はsummaryTextColumnsと一致させる。
func summaryTextDest(t *model.SummaryText) []any {
	return []any{
		&t.Summary, &t.TranslatedSummary, &t.HebrewSummary,
		&t.Headline, &t.EnglishHeadline, &t.HebrewHeadline, &t.TranslatedHeadline,
	}
}

// PostgresSummaryRepo はPostgreSQLを使用した要約リポジトリ。
type PostgresSummaryRepo struct {
	db *sql.DB
}

// NewPostgresSummaryRepo はPostgresSummaryRepoを生成する。
func NewPostgresSummaryRepo(db *sql.DB) *PostgresSummaryRepo {
	return &PostgresSummaryRepo{db: db}
}

// ListBetween は国の要約のうちTimestampが[from, to)に入るものを新しい順で返す。
func (r *PostgresSummaryRepo) ListBetween(ctx context.Context, country string, from, to time.Time) ([]model.Summary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, published_at, `+summaryTextColumns+`
		 FROM summaries
		 WHERE country = $1 AND published_at >= $2 AND published_at < $3
		 ORDER BY published_at DESC, id`,
		country, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("要約の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	summaries := make([]model.Summary, 0)
	for rows.Next() {
		var s model.Summary
		dest := append([]any{&s.ID, &s.Timestamp}, summaryTextDest(&s.SummaryText)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("要約のスキャンに失敗しました: %w", err)
		}
		s.Timestamp = s.Timestamp.UTC()
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("要約の取得中にエラーが発生しました: %w", err)
	}

	return summaries, nil
}

// PostgresDailySummaryRepo はPostgreSQLを使用した日次総括リポジトリ。
type PostgresDailySummaryRepo struct {
	db *sql.DB
}

// NewPostgresDailySummaryRepo はPostgresDailySummaryRepoを生成する。
func NewPostgresDailySummaryRepo(db *sql.DB) *PostgresDailySummaryRepo {
	return &PostgresDailySummaryRepo{db: db}
}

// FindByDay は指定日の日次総括を返す。見つからない場合はnilを返す。
func (r *PostgresDailySummaryRepo) FindByDay(ctx context.Context, country, day string) (*model.DailySummary, error) {
	ds := &model.DailySummary{}
	dest := append([]any{&ds.Country, &ds.Day}, summaryTextDest(&ds.SummaryText)...)

	err := r.db.QueryRowContext(ctx,
		`SELECT country, to_char(day, 'YYYY-MM-DD'), `+summaryTextColumns+`
		 FROM daily_summaries
		 WHERE country = $1 AND day = $2::date`,
		country, day,
	).Scan(dest...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("日次総括の取得に失敗しました: %w", err)
	}

	return ds, nil
}

// ListByMonth は指定月の日次総括を日付の昇順で返す。
func (r *PostgresDailySummaryRepo) ListByMonth(ctx context.Context, country string, year int, month time.Month) ([]model.DailySummary, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	rows, err := r.db.QueryContext(ctx,
		`SELECT country, to_char(day, 'YYYY-MM-DD'), `+summaryTextColumns+`
		 FROM daily_summaries
		 WHERE country = $1 AND day >= $2::date AND day < $3::date
		 ORDER BY day`,
		country, first.Format(time.DateOnly), next.Format(time.DateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("月次の日次総括の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	result := make([]model.DailySummary, 0)
	for rows.Next() {
		var ds model.DailySummary
		dest := append([]any{&ds.Country, &ds.Day}, summaryTextDest(&ds.SummaryText)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("日次総括のスキャンに失敗しました: %w", err)
		}
		result = append(result, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("日次総括の取得中にエラーが発生しました: %w", err)
	}

	return result, nil
}
