package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

// session runs n calls, committing and chaining each result.
func session(t *testing.T, s *Scheduler, clock *fakeClock, req Request, n int) []*Result {
	t.Helper()
	var out []*Result
	for i := 0; i < n; i++ {
		res, err := s.Next(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, res)
		s.Commit(res)
		out = append(out, res)
		req.Previous = res
		clock.Advance(10 * time.Second)
	}
	return out
}

func TestNext_HablarB1Scenario(t *testing.T) {
	pool := verb.NewPool([]verb.Form{
		ind("hablar", verb.TensePresent, verb.FirstSingular, "hablo"),
		ind("hablar", verb.TensePresent, verb.SecondTu, "hablas"),
		ind("hablar", verb.TensePresent, verb.ThirdSingular, "habla"),
		ind("hablar", verb.TensePreterite, verb.FirstSingular, "hablé"),
		ind("hablar", verb.TensePreterite, verb.ThirdSingular, "habló"),
	})
	s, clock := newScheduler(t, Deps{})
	st := settings.Settings{Level: settings.LevelB1, Practice: settings.Mixed{}}

	tenses := map[verb.Tense]bool{}
	persons := map[verb.Person]bool{}
	for _, res := range session(t, s, clock, Request{Settings: st, Pool: pool}, 30) {
		tenses[res.Chosen.Tense] = true
		persons[res.Chosen.Person] = true
	}
	assert.Len(t, tenses, 2)
	assert.GreaterOrEqual(t, len(persons), 3)
}

func TestNext_PoolMembershipAndNoDuplicate(t *testing.T) {
	pool := mixedPool()
	for _, st := range []settings.Settings{
		settings.Default(),
		{Level: settings.LevelA2, VerbType: settings.VerbTypeIrregular},
		{Level: settings.LevelB1, Practice: settings.Specific{Target: verb.K(verb.MoodIndicative, verb.TensePreterite)}},
	} {
		s, clock := newScheduler(t, Deps{})
		results := session(t, s, clock, Request{Settings: st, Pool: pool}, 60)
		for i, res := range results {
			assert.False(t, res.IsSentinel)
			assert.True(t, pool.Contains(res.Chosen), "call %d returned %s outside the pool", i, res.Chosen.ID())
			if i > 0 {
				assert.NotEqual(t, results[i-1].Chosen.Combo(), res.Chosen.Combo(), "call %d repeats (verb, person)", i)
			}
		}
	}
}

func TestNext_Totality(t *testing.T) {
	pool := regularPool()
	tests := []struct {
		name     string
		settings settings.Settings
		pool     *verb.Pool
	}{
		{"empty pool", settings.Default(), verb.NewPool(nil)},
		{"nil pool no content", settings.Default(), nil},
		{"target above level", settings.Settings{Level: settings.LevelA1, Practice: settings.Specific{Target: verb.K(verb.MoodSubjunctive, verb.TenseSubjPluperfect)}}, pool},
		{"irregular only regular pool", settings.Settings{Level: settings.LevelB1, VerbType: settings.VerbTypeIrregular}, pool},
		{"voseo with tu-only pool", settings.Settings{Level: settings.LevelB1, Region: settings.RegionRioplatense, Practice: settings.Specific{Target: verb.K(verb.MoodIndicative, verb.TensePresent)}}, verb.NewPool([]verb.Form{ind("hablar", verb.TensePresent, verb.SecondTu, "hablas")})},
		{"review of missing mood", settings.Settings{Level: settings.LevelAll, Practice: settings.Review{Mood: verb.MoodImperative}}, pool},
		{"double on single verb slot", settings.Settings{Level: settings.LevelA1, Double: true}, pool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newScheduler(t, Deps{})
			res, err := s.Next(context.Background(), Request{Settings: tt.settings, Pool: tt.pool})
			require.NoError(t, err)
			require.NotNil(t, res)
			if res.IsSentinel {
				assert.Equal(t, MethodSentinel, res.Method)
				assert.True(t, res.Item.Sentinel)
				assert.True(t, res.IsFallback)
			} else {
				assert.NotEmpty(t, res.Item.Form.Value)
			}
		})
	}
}

func TestNext_EmptyPoolIsSentinel(t *testing.T) {
	s, _ := newScheduler(t, Deps{})
	res, err := s.Next(context.Background(), Request{Settings: settings.Default(), Pool: verb.NewPool(nil)})
	require.NoError(t, err)
	assert.True(t, res.IsSentinel)
	assert.False(t, res.Rejected)
	assert.Equal(t, ErrExhaustedFallbacks.Error(), res.Reason)
}

func TestNext_InvalidConfigurationRejected(t *testing.T) {
	s, _ := newScheduler(t, Deps{})
	res, err := s.Next(context.Background(), Request{
		Settings: settings.Settings{Level: settings.LevelB1, Practice: settings.Specific{}},
		Pool:     regularPool(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, settings.ErrInvalidConfiguration)
	require.NotNil(t, res)
	assert.True(t, res.Rejected)
	assert.True(t, res.IsSentinel)
	assert.Equal(t, MethodRejected, res.Method)
	assert.False(t, res.IsFallback, "rejections are distinct from exhausted fallbacks")
}

func TestNext_DoesNotRecord(t *testing.T) {
	s, _ := newScheduler(t, Deps{})
	req := Request{Settings: settings.Default(), Pool: regularPool()}
	res, err := s.Next(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, s.Memory().Picks())

	s.Commit(res)
	assert.Equal(t, 1, s.Memory().Picks())

	s.Commit(&Result{IsSentinel: true})
	s.Commit(nil)
	assert.Equal(t, 1, s.Memory().Picks())

	s.ResetSession()
	assert.Zero(t, s.Memory().Picks())
}

func TestNext_ContentSourcePool(t *testing.T) {
	content := &fakeContent{pool: regularPool()}
	s, _ := newScheduler(t, Deps{Content: content})
	res, err := s.Next(context.Background(), Request{Settings: settings.Default()})
	require.NoError(t, err)
	assert.Equal(t, MethodVariety, res.Method)
	assert.True(t, content.pool.Contains(res.Chosen))
}

func TestNext_ContentFailureFallsBack(t *testing.T) {
	content := &fakeContent{err: errors.New("disk on fire"), forms: regularPool().Forms()}
	s, _ := newScheduler(t, Deps{Content: content})
	res, err := s.Next(context.Background(), Request{Settings: settings.Default()})
	require.NoError(t, err)
	assert.Equal(t, MethodDirectScan, res.Method)
	assert.True(t, res.IsFallback)
}

func TestNext_Busy(t *testing.T) {
	due := &fakeDue{entered: make(chan struct{}), release: make(chan struct{})}
	s, _ := newScheduler(t, Deps{Due: due})
	req := Request{Settings: settings.Default(), Pool: regularPool()}

	done := make(chan *Result)
	go func() {
		res, _ := s.Next(context.Background(), req)
		done <- res
	}()
	<-due.entered

	res, err := s.Next(context.Background(), req)
	assert.ErrorIs(t, err, ErrBusy)
	require.NotNil(t, res)
	assert.Equal(t, MethodBusy, res.Method)
	assert.True(t, res.IsSentinel)
	assert.True(t, res.Item.Sentinel)
	assert.False(t, res.Rejected)
	assert.False(t, res.IsFallback)
	assert.Empty(t, res.Forms())

	close(due.release)
	first := <-done
	require.NotNil(t, first)

	_, err = s.Next(context.Background(), req)
	assert.NoError(t, err, "guard is released after the call")
}

func TestNext_CanceledContextSkipsExternalTiers(t *testing.T) {
	due := &fakeDue{items: []DueItem{{Mood: verb.MoodIndicative, Tense: verb.TensePresent, Person: verb.FirstSingular}}}
	adaptive := &fakeAdaptive{rec: &curriculum.Recommendation{Mood: verb.MoodIndicative, Tense: verb.TensePresent}}
	s, _ := newScheduler(t, Deps{Due: due, Adaptive: adaptive})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Next(ctx, Request{Settings: settings.Default(), Pool: regularPool()})
	require.NoError(t, err)
	assert.Equal(t, MethodVariety, res.Method)
	assert.Zero(t, due.calls)
	assert.Zero(t, adaptive.calls)
}

func TestNew_RequiresGraph(t *testing.T) {
	_, err := New(DefaultConfig(), Deps{})
	assert.Error(t, err)
}
