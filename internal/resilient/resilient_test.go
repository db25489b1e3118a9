package resilient

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/scheduler"
	"github.com/abhisek/conjuga/internal/verb"
)

var errFlaky = errors.New("flaky")

type flakyDue struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyDue) DueItems(ctx context.Context, userID string, now time.Time) ([]scheduler.DueItem, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, errFlaky
	}
	return []scheduler.DueItem{{Mood: verb.MoodIndicative, Tense: verb.TensePresent, Person: verb.FirstSingular}}, nil
}

type slowMastery struct{}

func (slowMastery) Mastery(ctx context.Context, userID string) ([]curriculum.MasteryRecord, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingAdaptive struct {
	calls atomic.Int32
}

func (f *failingAdaptive) Recommend(ctx context.Context, req curriculum.RecommendRequest) (*curriculum.Recommendation, error) {
	f.calls.Add(1)
	return nil, errFlaky
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

func TestWrapDue_RetriesTransientFailure(t *testing.T) {
	inner := &flakyDue{failures: 1}
	due := WrapDue(inner, fastConfig())

	items, err := due.DueItems(context.Background(), "u", time.Now())
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestWrapAdaptive_BreakerOpens(t *testing.T) {
	cfg := fastConfig()
	cfg.EnableRetry = false
	cfg.FailureThreshold = 2
	inner := &failingAdaptive{}
	src := WrapAdaptive(inner, cfg)

	for i := 0; i < 2; i++ {
		_, err := src.Recommend(context.Background(), curriculum.RecommendRequest{})
		require.Error(t, err)
	}
	require.Equal(t, int32(2), inner.calls.Load())

	_, err := src.Recommend(context.Background(), curriculum.RecommendRequest{})
	require.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load(), "open breaker fails fast")
}

func TestWrapMastery_CallTimeout(t *testing.T) {
	cfg := fastConfig()
	cfg.CallTimeout = 20 * time.Millisecond
	src := WrapMastery(slowMastery{}, cfg)

	start := time.Now()
	_, err := src.Mastery(context.Background(), "u")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWrappersSatisfySchedulerInterfaces(t *testing.T) {
	var _ scheduler.DueSource = WrapDue(&flakyDue{}, DefaultConfig())
	var _ scheduler.AdaptiveSource = WrapAdaptive(&failingAdaptive{}, DefaultConfig())
	var _ scheduler.MasterySource = WrapMastery(slowMastery{}, DefaultConfig())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(errFlaky))
	assert.False(t, isRetryable(context.Canceled))
	assert.False(t, isRetryable(context.DeadlineExceeded))
	assert.False(t, isRetryable(nil))
}
