// Package window は日付ビューの入力となる3日分のウィンドウを組み立てる。
//
// ウィンドウは対象日の前日、当日、翌日の3つのUTC日付バケットからなる。
// どのタイムゾーンの1日も、このUTC3日間のどこかに必ず収まる。
// 各バケットはキャッシュ、スナップショット、ライブクエリの順に探す。
package window

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/dayline/internal/cache"
	"github.com/hitoshi/dayline/internal/country"
	"github.com/hitoshi/dayline/internal/dayview"
	"github.com/hitoshi/dayline/internal/metrics"
	"github.com/hitoshi/dayline/internal/model"
	"github.com/hitoshi/dayline/internal/repository"
)

// Assembled は組み立て済みのウィンドウと、対象日・前日の日次総括。
type Assembled struct {
	Window           dayview.Window
	DailySummary     *model.DailySummary
	YesterdaySummary *model.DailySummary
}

// Assembler はバケットを取得してウィンドウを組み立てる。
type Assembler struct {
	headlines repository.HeadlineRepository
	summaries repository.SummaryRepository
	daily     repository.DailySummaryRepository
	snapshots repository.SnapshotRepository
	cache     cache.BucketCache
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
}

// NewAssembler はAssemblerを生成する。cacheがnilの場合はキャッシュを使わない。
func NewAssembler(
	headlines repository.HeadlineRepository,
	summaries repository.SummaryRepository,
	daily repository.DailySummaryRepository,
	snapshots repository.SnapshotRepository,
	bucketCache cache.BucketCache,
	m metrics.MetricsCollector,
	logger *slog.Logger,
) *Assembler {
	if bucketCache == nil {
		bucketCache = cache.NopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		headlines: headlines,
		summaries: summaries,
		daily:     daily,
		snapshots: snapshots,
		cache:     bucketCache,
		metrics:   m,
		logger:    logger,
	}
}

// Window は対象日の前後を含む3つのバケットを並行に取得してウィンドウにまとめる。
// いずれかのバケットの取得に失敗した場合は全体を失敗とする。
func (a *Assembler) Window(ctx context.Context, c *country.Country, date dayview.CalendarDate) (*Assembled, error) {
	start := time.Now()

	days := []dayview.CalendarDate{date.AddDays(1), date, date.AddDays(-1)}
	buckets := make([]*model.Bucket, len(days))
	var today, yesterday *model.DailySummary

	g, gctx := errgroup.WithContext(ctx)
	for i, day := range days {
		g.Go(func() error {
			b, err := a.Bucket(gctx, c.Key, day)
			if err != nil {
				return err
			}
			buckets[i] = b
			return nil
		})
	}
	// 日次総括はバケットの層を通さず毎回テーブルから読む
	g.Go(func() (err error) {
		today, err = a.dailySummary(gctx, c.Key, date)
		return err
	})
	g.Go(func() (err error) {
		yesterday, err = a.dailySummary(gctx, c.Key, date.AddDays(-1))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to assemble window for %s %s: %w", c.Key, date.ISO(), err)
	}

	w := dayview.Window{Timezone: c.Zone()}
	for _, b := range buckets {
		w.Headlines = append(w.Headlines, b.Headlines...)
		w.Summaries = append(w.Summaries, b.Summaries...)
	}

	if a.metrics != nil {
		a.metrics.RecordWindowFetch(time.Since(start))
	}

	return &Assembled{
		Window:           w,
		DailySummary:     today,
		YesterdaySummary: yesterday,
	}, nil
}

// Bucket は1日分のバケットをキャッシュ、スナップショット、ライブクエリの順に探して返す。
// キャッシュやスナップショットの障害はログに記録して次の層に進む。
func (a *Assembler) Bucket(ctx context.Context, countryKey string, day dayview.CalendarDate) (*model.Bucket, error) {
	iso := day.ISO()

	b, ok, err := a.cache.Get(ctx, countryKey, iso)
	switch {
	case err != nil:
		a.recordCache(metrics.CacheError)
		a.logger.Warn("bucket cache get failed",
			slog.String("country", countryKey),
			slog.String("day", iso),
			slog.String("error", err.Error()),
		)
	case ok:
		a.recordCache(metrics.CacheHit)
		a.recordTier(metrics.TierCache)
		return b, nil
	default:
		a.recordCache(metrics.CacheMiss)
	}

	tier := metrics.TierSnapshot
	b, err = a.fromSnapshot(ctx, countryKey, iso)
	if err != nil {
		a.logger.Warn("snapshot lookup failed",
			slog.String("country", countryKey),
			slog.String("day", iso),
			slog.String("error", err.Error()),
		)
	}
	if b == nil {
		tier = metrics.TierLive
		b, err = a.LiveBucket(ctx, countryKey, day)
		if err != nil {
			return nil, err
		}
	}
	a.recordTier(tier)

	if err := a.cache.Set(ctx, b); err != nil {
		a.logger.Warn("bucket cache set failed",
			slog.String("country", countryKey),
			slog.String("day", iso),
			slog.String("error", err.Error()),
		)
	}

	return b, nil
}

// fromSnapshot は締め切り後に作られたスナップショットがあればそのバケットを返す。
func (a *Assembler) fromSnapshot(ctx context.Context, countryKey, iso string) (*model.Bucket, error) {
	if a.snapshots == nil {
		return nil, nil
	}
	s, err := a.snapshots.Find(ctx, countryKey, iso)
	if err != nil || s == nil || !s.IsComplete() {
		return nil, err
	}
	b := s.Bucket
	b.Country = countryKey
	b.Day = iso
	return &b, nil
}

// LiveBucket はテーブルを直接クエリしてUTC日付dayのバケットを組み立てる。
func (a *Assembler) LiveBucket(ctx context.Context, countryKey string, day dayview.CalendarDate) (*model.Bucket, error) {
	from := day.MidnightUTC()
	to := from.AddDate(0, 0, 1)
	iso := day.ISO()

	headlines, err := a.headlines.ListBetween(ctx, countryKey, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list headlines for %s: %w", iso, err)
	}
	summaries, err := a.summaries.ListBetween(ctx, countryKey, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries for %s: %w", iso, err)
	}
	if headlines == nil {
		headlines = []model.Headline{}
	}
	if summaries == nil {
		summaries = []model.Summary{}
	}

	return &model.Bucket{
		Country:   countryKey,
		Day:       iso,
		Headlines: headlines,
		Summaries: summaries,
	}, nil
}

// dailySummary は現地日付dayの日次総括を返す。未作成ならnil。
func (a *Assembler) dailySummary(ctx context.Context, countryKey string, day dayview.CalendarDate) (*model.DailySummary, error) {
	if a.daily == nil {
		return nil, nil
	}
	ds, err := a.daily.FindByDay(ctx, countryKey, day.ISO())
	if err != nil {
		return nil, fmt.Errorf("failed to find daily summary for %s: %w", day.ISO(), err)
	}
	return ds, nil
}

func (a *Assembler) recordCache(result string) {
	if a.metrics != nil {
		a.metrics.RecordCacheRequest(result)
	}
}

func (a *Assembler) recordTier(tier string) {
	if a.metrics != nil {
		a.metrics.RecordWindowTier(tier)
	}
}
