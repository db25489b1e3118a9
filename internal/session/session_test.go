package session

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/conjuga/internal/content"
	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/mastery"
	"github.com/abhisek/conjuga/internal/scheduler"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/spacedrep"
	"github.com/abhisek/conjuga/internal/verb"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) tick()          { c.t = c.t.Add(15 * time.Second) }

type reviews struct{ cells []spacedrep.Cell }

func (r *reviews) RecordReview(_ context.Context, _ string, cell spacedrep.Cell, _ bool, _ time.Time) (*spacedrep.ReviewState, error) {
	r.cells = append(r.cells, cell)
	return &spacedrep.ReviewState{Cell: cell}, nil
}

type attempts struct{ got []mastery.Attempt }

func (a *attempts) RecordAttempt(_ context.Context, at mastery.Attempt) (*mastery.StateTransition, error) {
	a.got = append(a.got, at)
	if len(a.got) == 1 {
		return &mastery.StateTransition{Key: at.Form.Key().String(), From: mastery.StateNew, To: mastery.StateLearning, Trigger: "first-attempt"}, nil
	}
	return nil, nil
}

type step struct {
	res *scheduler.Result
	err error
}

// scripted replays fixed results in order.
type scripted struct {
	steps     []step
	committed int
}

func (p *scripted) Next(context.Context, scheduler.Request) (*scheduler.Result, error) {
	st := p.steps[0]
	p.steps = p.steps[1:]
	return st.res, st.err
}

func (p *scripted) Commit(res *scheduler.Result) {
	p.committed += len(res.Forms())
}

var (
	hablo   = verb.Form{Lemma: "hablar", Mood: verb.MoodIndicative, Tense: verb.TensePresent, Person: verb.FirstSingular, Value: "hablo"}
	comiste = verb.Form{Lemma: "comer", Mood: verb.MoodIndicative, Tense: verb.TensePreterite, Person: verb.SecondTu, Value: "comiste"}
)

func newScheduler(t *testing.T, c *clock) *scheduler.Scheduler {
	t.Helper()
	packs, err := content.Embedded()
	require.NoError(t, err)
	src, err := content.NewSource(nil, packs...)
	require.NoError(t, err)
	s, err := scheduler.New(scheduler.DefaultConfig(), scheduler.Deps{
		Graph:   curriculum.Default(),
		Catalog: src.Catalog(),
		Content: src,
		Rand:    rand.New(rand.NewPCG(7, 11)),
		Now:     c.now,
	})
	require.NoError(t, err)
	return s
}

func TestSession_NextAndAnswer(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	rev, att := &reviews{}, &attempts{}

	s, err := New(Options{
		UserID:   "u1",
		Settings: settings.Default(),
		Picker:   newScheduler(t, c),
		Reviews:  rev,
		Mastery:  att,
		Now:      c.now,
	})
	require.NoError(t, err)

	_, err = s.Answer(ctx, true)
	assert.ErrorIs(t, err, ErrNoItem)

	res, err := s.Next(ctx)
	require.NoError(t, err)
	require.False(t, res.IsSentinel)
	assert.Same(t, res, s.Current())

	c.t = c.t.Add(3 * time.Second)
	transitions, err := s.Answer(ctx, true)
	require.NoError(t, err)
	require.Len(t, transitions, 1)

	require.Len(t, att.got, 1)
	assert.Equal(t, 3*time.Second, att.got[0].Latency)
	assert.Equal(t, s.ID(), att.got[0].SessionID)
	assert.Equal(t, string(res.Method), att.got[0].Method)
	assert.Equal(t, []spacedrep.Cell{spacedrep.CellOf(res.Chosen)}, rev.cells)
}

func TestSession_ChainsPrevious(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s, err := New(Options{UserID: "u1", Settings: settings.Default(), Picker: newScheduler(t, c), Now: c.now})
	require.NoError(t, err)

	var prev *scheduler.Result
	for i := 0; i < 40; i++ {
		res, err := s.Next(ctx)
		require.NoError(t, err)
		if prev != nil {
			assert.NotEqual(t, prev.Chosen.ID(), res.Chosen.ID(), "item repeated back to back")
		}
		prev = res
		c.tick()
	}
}

func TestRun_Summary(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s, err := New(Options{UserID: "u1", Settings: settings.Default(), Picker: newScheduler(t, c), Mastery: &attempts{}, Now: c.now})
	require.NoError(t, err)

	n := 0
	err = Run(ctx, s, 30, func(*scheduler.Result) bool {
		n++
		return n%2 == 0
	}, c.tick)
	require.NoError(t, err)

	sum := s.Summary()
	assert.Equal(t, 30, sum.TotalItems)
	assert.Equal(t, 30, sum.TotalAnswered)
	assert.Equal(t, 15, sum.TotalCorrect)
	assert.InDelta(t, 0.5, sum.Accuracy, 1e-9)
	assert.Equal(t, 30*15*time.Second, sum.Duration)
	assert.GreaterOrEqual(t, len(sum.Tenses), 2)
	assert.GreaterOrEqual(t, len(sum.Persons), 3)
	assert.Zero(t, sum.Sentinels)
	assert.GreaterOrEqual(t, sum.IrregularRatio(), 0.0)
	assert.LessOrEqual(t, sum.IrregularRatio(), 1.0)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &clock{t: time.Now()}
	s, err := New(Options{Settings: settings.Default(), Picker: newScheduler(t, c), Now: c.now})
	require.NoError(t, err)
	assert.ErrorIs(t, Run(ctx, s, 5, func(*scheduler.Result) bool { return true }, nil), context.Canceled)
}

func TestNew_RequiresPicker(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestSession_SentinelClearsCurrent(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	shown := &scheduler.Result{Chosen: hablo, Method: scheduler.MethodVariety}
	picker := &scripted{steps: []step{
		{res: shown},
		{res: &scheduler.Result{Method: scheduler.MethodBusy, IsSentinel: true}, err: scheduler.ErrBusy},
		{res: &scheduler.Result{Method: scheduler.MethodSentinel, IsSentinel: true, IsFallback: true}},
		{res: shown},
		{res: &scheduler.Result{Method: scheduler.MethodRejected, IsSentinel: true, Rejected: true}, err: settings.ErrInvalidConfiguration},
	}}
	s, err := New(Options{Settings: settings.Default(), Picker: picker, Now: c.now})
	require.NoError(t, err)

	_, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, shown, s.Current())

	_, err = s.Next(ctx)
	assert.ErrorIs(t, err, scheduler.ErrBusy)
	assert.Same(t, shown, s.Current(), "busy keeps the item on screen")

	res, err := s.Next(ctx)
	require.NoError(t, err)
	require.True(t, res.IsSentinel)
	assert.Nil(t, s.Current())
	_, err = s.Answer(ctx, true)
	assert.ErrorIs(t, err, ErrNoItem, "a sentinel cannot be answered as the earlier item")

	_, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, shown, s.Current())

	res, err = s.Next(ctx)
	assert.ErrorIs(t, err, settings.ErrInvalidConfiguration)
	require.NotNil(t, res)
	assert.Nil(t, s.Current())
	_, err = s.Answer(ctx, true)
	assert.ErrorIs(t, err, ErrNoItem)
}

func TestSession_AnswerPerForm(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	second := comiste
	double := &scheduler.Result{Chosen: hablo, Second: &second, Method: scheduler.MethodDouble}
	picker := &scripted{steps: []step{{res: double}, {res: double}}}
	rev, att := &reviews{}, &attempts{}
	s, err := New(Options{Settings: settings.Default(), Picker: picker, Reviews: rev, Mastery: att, Now: c.now})
	require.NoError(t, err)

	_, err = s.Next(ctx)
	require.NoError(t, err)

	_, err = s.Answer(ctx, true, false, true)
	assert.ErrorIs(t, err, ErrAnswerCount)
	assert.Empty(t, att.got)

	_, err = s.Answer(ctx, true, false)
	require.NoError(t, err)
	require.Len(t, att.got, 2)
	assert.Equal(t, hablo, att.got[0].Form)
	assert.True(t, att.got[0].Correct)
	assert.Equal(t, comiste, att.got[1].Form)
	assert.False(t, att.got[1].Correct)
	assert.Equal(t, []spacedrep.Cell{spacedrep.CellOf(hablo), spacedrep.CellOf(comiste)}, rev.cells)

	sum := s.Summary()
	assert.Equal(t, 2, sum.TotalAnswered)
	assert.Equal(t, 1, sum.TotalCorrect)

	_, err = s.Next(ctx)
	require.NoError(t, err)
	_, err = s.Answer(ctx, false)
	require.NoError(t, err)
	require.Len(t, att.got, 4)
	assert.False(t, att.got[2].Correct, "a single result grades both forms")
	assert.False(t, att.got[3].Correct)
}
