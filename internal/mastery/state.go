package mastery

// MasteryState represents a slot's position in the mastery lifecycle.
type MasteryState string

const (
	StateNew      MasteryState = "new"
	StateLearning MasteryState = "learning"
	StateMastered MasteryState = "mastered"
)

// StateTransition records a mastery state change for display and logging.
type StateTransition struct {
	Key     string
	From    MasteryState
	To      MasteryState
	Trigger string // "first-attempt", "threshold-reached", "regressed"
}
