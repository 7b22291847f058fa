package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/dayline/internal/model"
)

// PostgresSnapshotRepo はPostgreSQLを使用したスナップショットリポジトリ。
// バケット本体はJSONBのpayload列に保存する。
type PostgresSnapshotRepo struct {
	db *sql.DB
}

// NewPostgresSnapshotRepo はPostgresSnapshotRepoを生成する。
func NewPostgresSnapshotRepo(db *sql.DB) *PostgresSnapshotRepo {
	return &PostgresSnapshotRepo{db: db}
}

// Find は指定日のスナップショットを返す。見つからない場合はnilを返す。
func (r *PostgresSnapshotRepo) Find(ctx context.Context, country, day string) (*model.Snapshot, error) {
	s := &model.Snapshot{}
	var payload []byte

	err := r.db.QueryRowContext(ctx,
		`SELECT id, country, to_char(day, 'YYYY-MM-DD'), payload, generated_at
		 FROM day_snapshots
		 WHERE country = $1 AND day = $2::date`,
		country, day,
	).Scan(&s.ID, &s.Country, &s.Day, &payload, &s.GeneratedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("スナップショットの取得に失敗しました: %w", err)
	}

	bucket, err := decodeBucket(payload)
	if err != nil {
		return nil, err
	}
	s.Bucket = *bucket
	s.GeneratedAt = s.GeneratedAt.UTC()

	return s, nil
}

// Upsert はスナップショットを作成し、同じ国と日付の行があれば置き換える。
// IDとGeneratedAtが未設定の場合はここで設定する。
func (r *PostgresSnapshotRepo) Upsert(ctx context.Context, s *model.Snapshot) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.GeneratedAt.IsZero() {
		s.GeneratedAt = time.Now().UTC()
	}

	payload, err := encodeBucket(&s.Bucket)
	if err != nil {
		return err
	}

	err = r.db.QueryRowContext(ctx,
		`INSERT INTO day_snapshots (id, country, day, payload, headline_count, summary_count, generated_at)
		 VALUES ($1, $2, $3::date, $4, $5, $6, $7)
		 ON CONFLICT (country, day) DO UPDATE SET
		     payload = EXCLUDED.payload,
		     headline_count = EXCLUDED.headline_count,
		     summary_count = EXCLUDED.summary_count,
		     generated_at = EXCLUDED.generated_at
		 RETURNING id`,
		s.ID, s.Country, s.Day, payload, len(s.Bucket.Headlines), len(s.Bucket.Summaries), s.GeneratedAt,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("スナップショットの保存に失敗しました: %w", err)
	}

	return nil
}

// ListMissing はdaysのうちスナップショットが存在しない日付を昇順で返す。
func (r *PostgresSnapshotRepo) ListMissing(ctx context.Context, country string, days []string) ([]string, error) {
	if len(days) == 0 {
		return []string{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT to_char(t.d, 'YYYY-MM-DD')
		 FROM unnest($2::date[]) AS t(d)
		 WHERE NOT EXISTS (
		     SELECT 1 FROM day_snapshots s WHERE s.country = $1 AND s.day = t.d
		 )
		 ORDER BY t.d`,
		country, pq.Array(days),
	)
	if err != nil {
		return nil, fmt.Errorf("未作成スナップショットの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	missing := make([]string, 0, len(days))
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("日付のスキャンに失敗しました: %w", err)
		}
		missing = append(missing, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("未作成スナップショットの取得中にエラーが発生しました: %w", err)
	}

	return missing, nil
}

// DeleteIncomplete はバケットの締め切り（翌日0時UTC）より前に生成されたスナップショットを削除する。
func (r *PostgresSnapshotRepo) DeleteIncomplete(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM day_snapshots
		 WHERE generated_at < ((day + 1)::timestamp AT TIME ZONE 'UTC')`,
	)
	if err != nil {
		return 0, fmt.Errorf("不完全なスナップショットの削除に失敗しました: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	return n, nil
}

func encodeBucket(b *model.Bucket) ([]byte, error) {
	payload, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("スナップショットのエンコードに失敗しました: %w", err)
	}
	return payload, nil
}

// decodeBucket はpayloadをBucketに戻す。欠けたスライスは空スライスにそろえる。
func decodeBucket(payload []byte) (*model.Bucket, error) {
	var b model.Bucket
	if err := json.Unmarshal(payload, &b); err != nil {
		return nil, fmt.Errorf("スナップショットのデコードに失敗しました: %w", err)
	}
	if b.Headlines == nil {
		b.Headlines = []model.Headline{}
	}
	if b.Summaries == nil {
		b.Summaries = []model.Summary{}
	}
	return &b, nil
}
