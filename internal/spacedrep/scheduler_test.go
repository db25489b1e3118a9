package spacedrep

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/conjuga/internal/store"
	"github.com/abhisek/conjuga/internal/verb"
)

// memRepo is an in-memory ReviewRepo for tests.
type memRepo struct {
	rows map[string]store.ReviewRow
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[string]store.ReviewRow)}
}

func rowKey(user, mood, tense, person string) string {
	return user + "/" + mood + "|" + tense + "|" + person
}

func (m *memRepo) Get(_ context.Context, user, mood, tense, person string) (*store.ReviewRow, error) {
	row, ok := m.rows[rowKey(user, mood, tense, person)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (m *memRepo) Upsert(_ context.Context, row store.ReviewRow) error {
	m.rows[rowKey(row.UserID, row.Mood, row.Tense, row.Person)] = row
	return nil
}

func (m *memRepo) List(_ context.Context, user string) ([]store.ReviewRow, error) {
	var out []store.ReviewRow
	for _, row := range m.rows {
		if row.UserID == user {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memRepo) Due(ctx context.Context, user string, now time.Time) ([]store.ReviewRow, error) {
	all, _ := m.List(ctx, user)
	var out []store.ReviewRow
	for _, row := range all {
		if !row.NextReview.After(now) {
			out = append(out, row)
		}
	}
	return out, nil
}

var (
	day0    = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	presYo  = Cell{Mood: verb.MoodIndicative, Tense: verb.TensePresent, Person: verb.FirstSingular}
	pretEl  = Cell{Mood: verb.MoodIndicative, Tense: verb.TensePreterite, Person: verb.ThirdSingular}
	subjNos = Cell{Mood: verb.MoodSubjunctive, Tense: verb.TenseSubjPresent, Person: verb.FirstPlural}
)

func TestRecordReviewFirstSeen(t *testing.T) {
	s := NewScheduler(newMemRepo(), nil)
	ctx := context.Background()

	rs, err := s.RecordReview(ctx, "u", presYo, true, day0)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rs.Stage != 0 || rs.ConsecutiveHits != 1 {
		t.Errorf("stage=%d hits=%d, want 0/1", rs.Stage, rs.ConsecutiveHits)
	}
	if want := day0.AddDate(0, 0, 1); !rs.NextReviewDate.Equal(want) {
		t.Errorf("next = %v, want %v", rs.NextReviewDate, want)
	}

	miss, err := s.RecordReview(ctx, "u", pretEl, false, day0)
	if err != nil {
		t.Fatalf("record miss: %v", err)
	}
	if !miss.IsDue(day0) {
		t.Error("a first miss should be due immediately")
	}
}

func TestRecordReviewExpandsAndGraduates(t *testing.T) {
	s := NewScheduler(newMemRepo(), nil)
	ctx := context.Background()

	now := day0
	rs, _ := s.RecordReview(ctx, "u", presYo, true, now)
	wantIntervals := []int{3, 7, 14, 30, GraduatedIntervalDays}
	for i, want := range wantIntervals {
		now = rs.NextReviewDate
		var err error
		rs, err = s.RecordReview(ctx, "u", presYo, true, now)
		if err != nil {
			t.Fatalf("review %d: %v", i, err)
		}
		if got := int(rs.NextReviewDate.Sub(now).Hours() / 24); got != want {
			t.Errorf("review %d interval = %d days, want %d", i, got, want)
		}
	}
	if !rs.Graduated {
		t.Fatalf("expected graduation after %d consecutive hits, got %d", GraduationStage, rs.ConsecutiveHits)
	}
	if rs.CurrentIntervalDays() != GraduatedIntervalDays {
		t.Errorf("graduated interval = %d", rs.CurrentIntervalDays())
	}
}

func TestRecordReviewMissResetsStreak(t *testing.T) {
	s := NewScheduler(newMemRepo(), nil)
	ctx := context.Background()

	rs, _ := s.RecordReview(ctx, "u", presYo, true, day0)
	rs, _ = s.RecordReview(ctx, "u", presYo, true, rs.NextReviewDate)
	stage := rs.Stage
	later := rs.NextReviewDate
	rs, err := s.RecordReview(ctx, "u", presYo, false, later)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if rs.ConsecutiveHits != 0 {
		t.Errorf("hits = %d, want 0", rs.ConsecutiveHits)
	}
	if rs.Stage != stage {
		t.Errorf("stage = %d, want unchanged %d", rs.Stage, stage)
	}
	if !rs.IsDue(later) {
		t.Error("missed cell should stay due")
	}
}

func TestDueItemsMostOverdueFirst(t *testing.T) {
	repo := newMemRepo()
	s := NewScheduler(repo, nil)
	ctx := context.Background()

	s.RecordReview(ctx, "u", presYo, true, day0)                   // due day0+1
	s.RecordReview(ctx, "u", pretEl, true, day0.AddDate(0, 0, -5)) // due day0-4
	s.RecordReview(ctx, "u", subjNos, true, day0.AddDate(0, 0, 5)) // not due
	s.RecordReview(ctx, "other", presYo, false, day0)

	now := day0.AddDate(0, 0, 2)
	items, err := s.DueItems(ctx, "u", now)
	if err != nil {
		t.Fatalf("due items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("due = %d, want 2", len(items))
	}
	if items[0].ItemID != pretEl.ID() || items[1].ItemID != presYo.ID() {
		t.Errorf("order = %s, %s", items[0].ItemID, items[1].ItemID)
	}
	if items[0].Person != verb.ThirdSingular || items[0].Tense != verb.TensePreterite {
		t.Errorf("item = %+v", items[0])
	}
}

func TestReviewStatus(t *testing.T) {
	rs := &ReviewState{Stage: 2, NextReviewDate: day0}

	tests := []struct {
		name string
		now  time.Time
		want ReviewStatus
	}{
		{"before", day0.Add(-time.Hour), ReviewNotDue},
		{"on time", day0.Add(time.Hour), ReviewDue},
		{"past grace", day0.AddDate(0, 0, 4), ReviewOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rs.Status(tt.now); got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}

	grad := &ReviewState{Graduated: true, NextReviewDate: day0}
	if got := grad.Status(day0.Add(-time.Hour)); got != ReviewGraduated {
		t.Errorf("graduated status = %s", got)
	}
	if got := rs.DaysUntilReview(day0.Add(-36 * time.Hour)); got != 2 {
		t.Errorf("days until = %d, want 2", got)
	}
}

func TestSchedulerWithSQLiteStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "review.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	s := NewScheduler(st.ReviewRepo(), nil)
	ctx := context.Background()
	if _, err := s.RecordReview(ctx, "u", presYo, false, day0); err != nil {
		t.Fatalf("record: %v", err)
	}
	items, err := s.DueItems(ctx, "u", day0)
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(items) != 1 || items[0].ItemID != presYo.ID() {
		t.Fatalf("items = %+v", items)
	}
	states, err := s.States(ctx, "u")
	if err != nil || len(states) != 1 {
		t.Fatalf("states = %v, %v", states, err)
	}
}
