package session

import "github.com/abhisek/conjuga/internal/verb"

// SlotProgress tracks answers given for one paradigm slot in a session.
type SlotProgress struct {
	Key           verb.Key
	TotalAttempts int
	CorrectCount  int
	Accuracy      float64 // CorrectCount / TotalAttempts (computed)
}

// Record adds a new answer result to the progress.
func (sp *SlotProgress) Record(correct bool) {
	sp.TotalAttempts++
	if correct {
		sp.CorrectCount++
	}
	if sp.TotalAttempts > 0 {
		sp.Accuracy = float64(sp.CorrectCount) / float64(sp.TotalAttempts)
	}
}

// IsSolid reports whether the slot met the accuracy bar over enough attempts.
func (sp *SlotProgress) IsSolid(minAttempts int, threshold float64) bool {
	return sp.TotalAttempts >= minAttempts && sp.Accuracy >= threshold
}
