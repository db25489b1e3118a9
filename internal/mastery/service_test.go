package mastery

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/store"
	"github.com/abhisek/conjuga/internal/verb"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "mastery.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(DefaultConfig(), st.MasteryRepo(), st.EventRepo(), nil), st
}

var (
	soy   = verb.Form{Lemma: "ser", Mood: verb.MoodIndicative, Tense: verb.TensePresent, Person: verb.FirstSingular, Value: "soy"}
	hablo = verb.Form{Lemma: "hablar", Mood: verb.MoodIndicative, Tense: verb.TensePresent, Person: verb.FirstSingular, Value: "hablo"}
	at    = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
)

func TestSpeedScore(t *testing.T) {
	tests := []struct {
		latency, target int64
		want            float64
	}{
		{1000, 8000, 1.0},
		{4000, 8000, 1.0},
		{8000, 8000, 0.5},
		{12000, 8000, 0.25},
		{30000, 8000, 0.0},
		{5000, 0, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, SpeedScore(tt.latency, tt.target), 1e-9, "latency %d", tt.latency)
	}
}

func TestAttemptQuality(t *testing.T) {
	assert.Equal(t, 0.0, AttemptQuality(false, 1000, 8000))
	assert.InDelta(t, 100.0, AttemptQuality(true, 1000, 8000), 1e-9)
	assert.InDelta(t, 90.0, AttemptQuality(true, 0, 8000), 1e-9)
}

func TestRecordAttempt_EMA(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tr, err := svc.RecordAttempt(ctx, Attempt{UserID: "u", Form: soy, Correct: true, Latency: time.Second, At: at})
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, StateNew, tr.From)
	assert.Equal(t, StateLearning, tr.To)
	assert.Equal(t, "first-attempt", tr.Trigger)

	_, err = svc.RecordAttempt(ctx, Attempt{UserID: "u", Form: soy, Correct: false, At: at})
	require.NoError(t, err)

	records, err := svc.Mastery(ctx, "u")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.InDelta(t, 70.0, r.Score, 1e-9, "100 then a miss at alpha 0.3")
	}
	assert.Equal(t, "", records[0].VerbID)
	assert.Equal(t, "ser", records[1].VerbID)
}

func TestRecordAttempt_MasteryTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var last *StateTransition
	for i := 0; i < 5; i++ {
		tr, err := svc.RecordAttempt(ctx, Attempt{UserID: "u", Form: hablo, Correct: true, Latency: time.Second, At: at})
		require.NoError(t, err)
		if tr != nil {
			last = tr
		}
	}
	require.NotNil(t, last)
	assert.Equal(t, StateMastered, last.To)
	assert.Equal(t, "threshold-reached", last.Trigger)

	tr, err := svc.RecordAttempt(ctx, Attempt{UserID: "u", Form: soy, Correct: false, At: at})
	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, StateMastered, tr.From)
	assert.Equal(t, "regressed", tr.Trigger)

	states, err := svc.SlotStates(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, StateLearning, states["indicative|pres"])
}

func TestRecordAttempt_AppendsEvent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordAttempt(ctx, Attempt{UserID: "u", SessionID: "s1", Form: soy, Correct: true, Latency: 2 * time.Second, Method: "due", At: at})
	require.NoError(t, err)

	evs, err := st.EventRepo().Attempts(ctx, "u", store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, "due", evs[0].Method)
	assert.Equal(t, int64(2000), evs[0].LatencyMs)
	assert.Equal(t, "1s", evs[0].Person)
}

func TestMasteryFeedsPlan(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.RecordAttempt(ctx, Attempt{UserID: "u", Form: hablo, Correct: false, At: at})
		require.NoError(t, err)
	}

	records, err := svc.Mastery(ctx, "u")
	require.NoError(t, err)
	plan := curriculum.Default().BuildPlan("B1", records)
	require.NotEmpty(t, plan.Review)
	assert.Equal(t, verb.K(verb.MoodIndicative, verb.TensePresent), plan.Review[0].Key)
	assert.Equal(t, 0.0, plan.Review[0].Mastery)
}
