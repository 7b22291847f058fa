// Package cleanup は不完全なスナップショットを削除するジョブを提供する。
// バケットの締め切り前に作られたスナップショットはその後の見出しを含まないため、
// 削除してスナップショットワーカーに作り直させる。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SnapshotPurger は不完全なスナップショットを削除するインターフェース。
type SnapshotPurger interface {
	DeleteIncomplete(ctx context.Context) (int64, error)
}

// CleanupJob は不完全なスナップショットの定期削除ジョブ。
// 削除は冪等で、対象がない場合もエラーにならない。
type CleanupJob struct {
	purger SnapshotPurger
	logger *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(purger SnapshotPurger, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		purger: purger,
		logger: logger,
	}
}

// Run は不完全なスナップショットを1回削除する。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deleted, err := j.purger.DeleteIncomplete(ctx)
	if err != nil {
		j.logger.Error("スナップショットクリーンアップの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("スナップショットクリーンアップの実行に失敗: %w", err)
	}

	j.logger.Info("スナップショットクリーンアップが完了しました",
		slog.Int64("deleted_count", deleted),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// Start は起動直後に1回実行し、その後interval間隔でRunを繰り返す。
// コンテキストがキャンセルされるまで戻らない。個々の失敗はRunがログに記録する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	_ = j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = j.Run(ctx)
		}
	}
}
