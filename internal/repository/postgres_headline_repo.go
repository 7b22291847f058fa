package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/dayline/internal/model"
)

// PostgresHeadlineRepo はPostgreSQLを使用した見出しリポジトリ。
type PostgresHeadlineRepo struct {
	db *sql.DB
}

// NewPostgresHeadlineRepo はPostgresHeadlineRepoを生成する。
func NewPostgresHeadlineRepo(db *sql.DB) *PostgresHeadlineRepo {
	return &PostgresHeadlineRepo{db: db}
}

// ListBetween は国の見出しのうちTimestampが[from, to)に入るものを新しい順で返す。
func (r *PostgresHeadlineRepo) ListBetween(ctx context.Context, country string, from, to time.Time) ([]model.Headline, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source_id, headline, subtitle, link, image, published_at
		 FROM headlines
		 WHERE country = $1 AND published_at >= $2 AND published_at < $3
		 ORDER BY published_at DESC, id`,
		country, from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("見出しの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	headlines := make([]model.Headline, 0)
	for rows.Next() {
		var h model.Headline
		if err := rows.Scan(&h.ID, &h.SourceID, &h.Text, &h.Subtitle, &h.Link, &h.Image, &h.Timestamp); err != nil {
			return nil, fmt.Errorf("見出しのスキャンに失敗しました: %w", err)
		}
		h.Timestamp = h.Timestamp.UTC()
		headlines = append(headlines, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("見出しの取得中にエラーが発生しました: %w", err)
	}

	return headlines, nil
}
