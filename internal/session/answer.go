package session

import (
	"strings"

	"github.com/abhisek/conjuga/internal/materialize"
)

// CheckAnswer compares the learner's answer to the item's accepted forms:
// the value, its alternates and any accepted variant. Case and repeated
// whitespace are ignored; accents are not.
func CheckAnswer(learnerAnswer string, item materialize.Item) bool {
	got := normalizeAnswer(learnerAnswer)
	if got == "" || item.Sentinel {
		return false
	}
	if got == normalizeAnswer(item.Form.Value) {
		return true
	}
	for _, alt := range item.Form.Alternates {
		if got == normalizeAnswer(alt) {
			return true
		}
	}
	for _, v := range item.Form.AcceptedVariants {
		if got == normalizeAnswer(v) {
			return true
		}
	}
	return false
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
