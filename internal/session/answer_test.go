package session

import (
	"testing"

	"github.com/abhisek/conjuga/internal/materialize"
)

func TestCheckAnswer(t *testing.T) {
	item := materialize.Item{
		Lemma: "ser",
		Form: materialize.Answer{
			Value:            "seas",
			Alternates:       []string{"seás"},
			AcceptedVariants: map[string]string{"2s_vos": "sos"},
		},
	}
	compound := materialize.Item{Form: materialize.Answer{Value: "he hablado"}}

	tests := []struct {
		name   string
		item   materialize.Item
		answer string
		want   bool
	}{
		{"exact", item, "seas", true},
		{"case and spaces", item, "  SEAS ", true},
		{"alternate", item, "seás", true},
		{"accepted variant", item, "sos", true},
		{"accent matters", item, "seaś", false},
		{"wrong", item, "eres", false},
		{"empty", item, "   ", false},
		{"compound collapsed spaces", compound, "he   hablado", true},
		{"sentinel never matches", materialize.Item{Sentinel: true}, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckAnswer(tt.answer, tt.item); got != tt.want {
				t.Errorf("CheckAnswer(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}
