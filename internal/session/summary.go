package session

import (
	"sort"
	"time"

	"github.com/abhisek/conjuga/internal/scheduler"
	"github.com/abhisek/conjuga/internal/verb"
)

// Summary holds the figures shown at the end of a session.
type Summary struct {
	Duration       time.Duration
	TotalItems     int
	TotalAnswered  int
	TotalCorrect   int
	Accuracy       float64
	Sentinels      int
	Methods        map[scheduler.Method]int
	Tenses         map[verb.Key]int
	Persons        map[verb.Person]int
	Lemmas         map[string]int
	IrregularItems int
	SlotResults    []SlotProgress
}

// IrregularRatio is the share of served forms flagged irregular.
func (s *Summary) IrregularRatio() float64 {
	forms := 0
	for _, n := range s.Tenses {
		forms += n
	}
	if forms == 0 {
		return 0
	}
	return float64(s.IrregularItems) / float64(forms)
}

// Stats accumulates per-session counters.
type Stats struct {
	items     int
	sentinels int
	methods   map[scheduler.Method]int
	tenses    map[verb.Key]int
	persons   map[verb.Person]int
	lemmas    map[string]int
	irregular int
	slots     map[verb.Key]*SlotProgress
}

func newStats() *Stats {
	return &Stats{
		methods: make(map[scheduler.Method]int),
		tenses:  make(map[verb.Key]int),
		persons: make(map[verb.Person]int),
		lemmas:  make(map[string]int),
		slots:   make(map[verb.Key]*SlotProgress),
	}
}

func (st *Stats) served(res *scheduler.Result) {
	st.items++
	st.methods[res.Method]++
	if res.IsSentinel {
		st.sentinels++
		return
	}
	items := []bool{res.Item.Type == verb.Irregular}
	if res.SecondItem != nil {
		items = append(items, res.SecondItem.Type == verb.Irregular)
	}
	for i, f := range res.Forms() {
		st.tenses[f.Key()]++
		st.persons[f.Person]++
		st.lemmas[f.Lemma]++
		if i < len(items) && items[i] {
			st.irregular++
		}
	}
}

func (st *Stats) answered(f verb.Form, correct bool) {
	sp, ok := st.slots[f.Key()]
	if !ok {
		sp = &SlotProgress{Key: f.Key()}
		st.slots[f.Key()] = sp
	}
	sp.Record(correct)
}

func (st *Stats) summary(elapsed time.Duration) *Summary {
	sum := &Summary{
		Duration:       elapsed,
		TotalItems:     st.items,
		Sentinels:      st.sentinels,
		Methods:        st.methods,
		Tenses:         st.tenses,
		Persons:        st.persons,
		Lemmas:         st.lemmas,
		IrregularItems: st.irregular,
	}
	for _, sp := range st.slots {
		sum.TotalAnswered += sp.TotalAttempts
		sum.TotalCorrect += sp.CorrectCount
		sum.SlotResults = append(sum.SlotResults, *sp)
	}
	sort.Slice(sum.SlotResults, func(i, j int) bool {
		return sum.SlotResults[i].Key.String() < sum.SlotResults[j].Key.String()
	})
	if sum.TotalAnswered > 0 {
		sum.Accuracy = float64(sum.TotalCorrect) / float64(sum.TotalAnswered)
	}
	return sum
}
