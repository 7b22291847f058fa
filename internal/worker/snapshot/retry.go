package snapshot

import (
	"context"
	"time"
)

const (
	// initialBackoff は再試行の初回待ち時間。
	initialBackoff = 2 * time.Second
	// maxBackoff は再試行の最大待ち時間。
	maxBackoff = 30 * time.Second
	// defaultAttempts は1つのバケットに対する試行回数の既定値。
	defaultAttempts = 3
)

// CalculateBackoff は失敗回数に応じた指数バックオフの待ち時間を返す。
// 初回2秒、2倍ずつ増加、最大30秒。
func CalculateBackoff(failures int) time.Duration {
	delay := initialBackoff
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > maxBackoff {
			return maxBackoff
		}
	}
	return delay
}

// retry はfnが成功するまで最大attempts回実行する。
// 試行の間はCalculateBackoffの時間だけ待つ。待機中にctxが終了した場合はctxのエラーを返す。
func retry(ctx context.Context, attempts int, sleep func(context.Context, time.Duration) error, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if serr := sleep(ctx, CalculateBackoff(i)); serr != nil {
			return serr
		}
	}
	return err
}

// sleepContext はdだけ待つ。ctxが先に終了した場合はそのエラーを返す。
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
