// Package snapshot は締め切られたUTC日付バケットのスナップショットを事前に作成するワーカーを提供する。
// 参照時のライブクエリを減らすため、直近の締め切り済みバケットを定期的に固定化する。
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/dayline/internal/dayview"
	"github.com/hitoshi/dayline/internal/metrics"
	"github.com/hitoshi/dayline/internal/model"
)

// CountryLister は対象国のキー一覧を提供するインターフェース。
type CountryLister interface {
	Keys() []string
}

// BucketBuilder はテーブルから直接バケットを組み立てるインターフェース。
type BucketBuilder interface {
	LiveBucket(ctx context.Context, countryKey string, day dayview.CalendarDate) (*model.Bucket, error)
}

// SnapshotStore はスナップショットの保存先インターフェース。
type SnapshotStore interface {
	ListMissing(ctx context.Context, country string, days []string) ([]string, error)
	Upsert(ctx context.Context, snapshot *model.Snapshot) error
}

// Config はスケジューラの設定。
type Config struct {
	MaxConcurrency int // 同時に作成するバケット数の上限
	LookbackDays   int // 昨日から遡って対象にする日数
	Attempts       int // 1バケットあたりの試行回数
}

// job は作成対象の1バケット。
type job struct {
	country string
	day     dayview.CalendarDate
}

// Scheduler はスナップショット作成のスケジューリングと並列制御を行う。
// ティッカーごとに未作成のバケットを探し、semaphoreで並列数を制御しながら作成する。
type Scheduler struct {
	countries CountryLister
	builder   BucketBuilder
	store     SnapshotStore
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
	config    Config

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewScheduler はSchedulerの新しいインスタンスを生成する。
// 設定値が0以下の場合は既定値（並列4、3日、3回）を使用する。
func NewScheduler(
	countries CountryLister,
	builder BucketBuilder,
	store SnapshotStore,
	m metrics.MetricsCollector,
	logger *slog.Logger,
	cfg Config,
) *Scheduler {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 3
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultAttempts
	}
	return &Scheduler{
		countries: countries,
		builder:   builder,
		store:     store,
		metrics:   m,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Start はinterval間隔でスケジューラを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("スナップショットスケジューラを開始しました",
		slog.Duration("interval", interval),
		slog.Int("max_concurrency", s.config.MaxConcurrency),
		slog.Int("lookback_days", s.config.LookbackDays),
	)

	// 起動直後に1回実行
	s.runLogged(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("スナップショットスケジューラを停止しました")
			return
		case <-ticker.C:
			s.runLogged(ctx)
		}
	}
}

func (s *Scheduler) runLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("スナップショットサイクルの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}
}

// ClosedDays は対象となる締め切り済みのUTC日付を新しい順で返す。
// 今日（UTC）はまだ締め切られていないので含めない。
func (s *Scheduler) ClosedDays() []dayview.CalendarDate {
	today := dayview.DateOf(s.now().UTC())
	days := make([]dayview.CalendarDate, 0, s.config.LookbackDays)
	for i := 1; i <= s.config.LookbackDays; i++ {
		days = append(days, today.AddDays(-i))
	}
	return days
}

// RunOnce は未作成のバケットを1回探し、並列でスナップショットを作成する。
// 作成に成功した件数を返す。個々のバケットの失敗はログに記録してサイクルを続ける。
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()

	jobs, err := s.pendingJobs(ctx)
	if err != nil {
		return 0, err
	}
	if len(jobs) == 0 {
		s.logger.Info("作成対象のスナップショットはありません")
		return 0, nil
	}

	s.logger.Info("スナップショットサイクルを開始します",
		slog.Int("bucket_count", len(jobs)),
	)

	sem := make(chan struct{}, s.config.MaxConcurrency)
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		built int
	)

	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}

		go func(j job) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.build(ctx, j); err != nil {
				s.recordFailure(j.country)
				s.logger.Error("スナップショットの作成に失敗しました",
					slog.String("country", j.country),
					slog.String("day", j.day.ISO()),
					slog.String("error", err.Error()),
				)
				return
			}
			s.recordBuilt(j.country)
			mu.Lock()
			built++
			mu.Unlock()
		}(j)
	}

	wg.Wait()

	s.logger.Info("スナップショットサイクルが完了しました",
		slog.Int("bucket_count", len(jobs)),
		slog.Int("built_count", built),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return built, ctx.Err()
}

// pendingJobs は国ごとにスナップショットのない締め切り済みバケットを集める。
func (s *Scheduler) pendingJobs(ctx context.Context) ([]job, error) {
	closed := s.ClosedDays()
	isoDays := make([]string, len(closed))
	for i, d := range closed {
		isoDays[i] = d.ISO()
	}

	var jobs []job
	for _, key := range s.countries.Keys() {
		missing, err := s.store.ListMissing(ctx, key, isoDays)
		if err != nil {
			return nil, fmt.Errorf("failed to list missing snapshots for %s: %w", key, err)
		}
		for _, iso := range missing {
			day, err := dayview.ParseISODate(iso)
			if err != nil {
				return nil, fmt.Errorf("invalid day %q from snapshot store: %w", iso, err)
			}
			jobs = append(jobs, job{country: key, day: day})
		}
	}
	return jobs, nil
}

// build はライブクエリでバケットを組み立てて保存する。失敗時は再試行する。
func (s *Scheduler) build(ctx context.Context, j job) error {
	return retry(ctx, s.config.Attempts, s.sleep, func() error {
		b, err := s.builder.LiveBucket(ctx, j.country, j.day)
		if err != nil {
			return err
		}
		return s.store.Upsert(ctx, &model.Snapshot{
			Country:     j.country,
			Day:         j.day.ISO(),
			Bucket:      *b,
			GeneratedAt: s.now().UTC(),
		})
	})
}

func (s *Scheduler) recordBuilt(country string) {
	if s.metrics != nil {
		s.metrics.RecordSnapshotBuilt(country)
	}
}

func (s *Scheduler) recordFailure(country string) {
	if s.metrics != nil {
		s.metrics.RecordSnapshotFailure(country)
	}
}
