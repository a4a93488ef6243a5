package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/aptpod/wsproto-go/errors"
)

var (
	randFloat64         = rand.Float64
	defaultBaseInterval = 100 * time.Millisecond
	defaultMaxInterval  = 5 * time.Second
)

// RetryはExponential Backoff and Jitter方式のリトライを行います。
//
// Jitterは 0.5 ~ 1.5のランダム値です。
type Retry struct {
	// 最大試行回数。0はリトライをし続けます。デフォルトは0です。
	MaxAttempt int

	// 基準リトライ間隔。デフォルトは100ミリ秒です。
	BaseInterval time.Duration

	// 最大基準リトライ間隔。デフォルトは5秒です。
	MaxBaseInterval time.Duration

	// OnRetryは、失敗した試行の後、次の試行までの待機前に呼び出されます。
	OnRetry func(attempt int, err error, sleep time.Duration)
}

// RetryFuncは、リトライを実施する関数です。nilを返すとリトライを終了します。
//
// attemptは1から始まる試行回数です。
type RetryFunc func(ctx context.Context, attempt int) error

// Doは、fが成功するか、最大試行回数に達するか、ctxが終了するまでfを呼び出します。
//
// 成功しなかった場合は最後にfが返したエラーを返します。
func (r Retry) Do(ctx context.Context, f RetryFunc) error {
	baseInterval := r.BaseInterval
	if baseInterval == 0 {
		baseInterval = defaultBaseInterval
	}
	maxBaseInterval := r.MaxBaseInterval
	if maxBaseInterval == 0 {
		maxBaseInterval = defaultMaxInterval
	}
	for attempt := 1; ; attempt++ {
		err := f(ctx, attempt)
		if err == nil {
			return nil
		}
		if r.MaxAttempt != 0 && attempt >= r.MaxAttempt {
			return errors.Errorf("gave up after %d attempts: %w", attempt, err)
		}
		sleep := nextSleep(attempt-1, baseInterval, maxBaseInterval)
		if r.OnRetry != nil {
			r.OnRetry(attempt, err, sleep)
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Errorf("%w: %w", ctx.Err(), err)
		case <-timer.C:
		}
	}
}

func nextSleep(count int, base, max time.Duration) time.Duration {
	baseInterval := float64(base) * math.Pow(2, float64(count))
	if baseInterval > float64(max) {
		baseInterval = float64(max)
	}

	jitter := 0.5 + randFloat64()
	return time.Duration(baseInterval * jitter)
}

// Doは、デフォルト設定でリトライを行います。
func Do(ctx context.Context, f RetryFunc) error {
	return Retry{}.Do(ctx, f)
}
