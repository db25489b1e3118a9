package scheduler

import (
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abhisek/conjuga/internal/curriculum"
	"github.com/abhisek/conjuga/internal/settings"
	"github.com/abhisek/conjuga/internal/verb"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeContent struct {
	pool  *verb.Pool
	forms []verb.Form
	err   error
	scans int
}

func (f *fakeContent) Pool(ctx context.Context, region settings.Region) (*verb.Pool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pool, nil
}

func (f *fakeContent) Scan(ctx context.Context, fn func(verb.Form) bool) error {
	f.scans++
	for _, form := range f.forms {
		if !fn(form) {
			return nil
		}
	}
	return nil
}

type fakeDue struct {
	items []DueItem
	err   error
	calls int
	// entered and release make DueItems block until the test lets it go.
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *fakeDue) DueItems(ctx context.Context, userID string, now time.Time) ([]DueItem, error) {
	f.calls++
	if f.entered != nil {
		f.once.Do(func() {
			close(f.entered)
			<-f.release
		})
	}
	return f.items, f.err
}

type fakeAdaptive struct {
	rec   *curriculum.Recommendation
	err   error
	calls int
}

func (f *fakeAdaptive) Recommend(ctx context.Context, req curriculum.RecommendRequest) (*curriculum.Recommendation, error) {
	f.calls++
	return f.rec, f.err
}

type fakeMastery struct {
	records []curriculum.MasteryRecord
	err     error
}

func (f *fakeMastery) Mastery(ctx context.Context, userID string) ([]curriculum.MasteryRecord, error) {
	return f.records, f.err
}

func form(lemma string, m verb.Mood, t verb.Tense, p verb.Person, v string) verb.Form {
	return verb.Form{Lemma: lemma, Mood: m, Tense: t, Person: p, Value: v}
}

func ind(lemma string, t verb.Tense, p verb.Person, v string) verb.Form {
	return form(lemma, verb.MoodIndicative, t, p, v)
}

func testCatalog() *verb.Catalog {
	return verb.NewCatalog([]verb.Info{
		{Lemma: "hablar", Category: "communication", Frequency: 4},
		{Lemma: "comer", Category: "daily", Frequency: 6},
		{Lemma: "vivir", Category: "state", Frequency: 5},
		{Lemma: "ser", IrregularTenses: []verb.Tense{verb.TensePresent, verb.TensePreterite, verb.TenseImperfect}, Category: "state", Frequency: 1},
		{Lemma: "ir", IrregularTenses: []verb.Tense{verb.TensePresent, verb.TensePreterite, verb.TenseImperfect}, Category: "motion", Frequency: 2},
		{Lemma: "tener", IrregularTenses: []verb.Tense{verb.TensePresent, verb.TensePreterite, verb.TenseFuture}, Category: "possession", Frequency: 3},
	})
}

// regularPool has three regular verbs in the present and preterite.
func regularPool() *verb.Pool {
	var forms []verb.Form
	for _, lemma := range []string{"hablar", "comer", "vivir"} {
		for _, p := range []verb.Person{verb.FirstSingular, verb.SecondTu, verb.ThirdSingular, verb.FirstPlural, verb.ThirdPlural} {
			forms = append(forms, ind(lemma, verb.TensePresent, p, lemma+"-pres-"+string(p)))
			forms = append(forms, ind(lemma, verb.TensePreterite, p, lemma+"-pret-"+string(p)))
		}
	}
	return verb.NewPool(forms)
}

// mixedPool adds irregular verbs to the regular pool.
func mixedPool() *verb.Pool {
	forms := append([]verb.Form(nil), regularPool().Forms()...)
	for _, lemma := range []string{"ser", "ir", "tener"} {
		for _, p := range []verb.Person{verb.FirstSingular, verb.SecondTu, verb.ThirdSingular, verb.FirstPlural, verb.ThirdPlural} {
			forms = append(forms, ind(lemma, verb.TensePresent, p, lemma+"-pres-"+string(p)))
			forms = append(forms, ind(lemma, verb.TensePreterite, p, lemma+"-pret-"+string(p)))
		}
	}
	return verb.NewPool(forms)
}

func newScheduler(t *testing.T, deps Deps) (*Scheduler, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: t0}
	if deps.Graph == nil {
		deps.Graph = curriculum.Default()
	}
	if deps.Catalog == nil {
		deps.Catalog = testCatalog()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(42, 7))
	}
	if deps.Now == nil {
		deps.Now = clock.Now
	}
	s, err := New(DefaultConfig(), deps)
	require.NoError(t, err)
	return s, clock
}
