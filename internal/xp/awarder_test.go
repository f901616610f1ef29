package xp

import (
	"context"
	"testing"
)

func TestRuleAwarder(t *testing.T) {
	awarder := NewRuleAwarder()

	tests := []struct {
		name  string
		event Event
		want  int
	}{
		{
			name: "completion with bonuses",
			event: Event{
				Type:   EventQuizComplete,
				BaseXP: 50,
				Metadata: map[string]int{
					"correctAnswers": 5,
					"score":          100,
					"speedBonus":     1,
				},
			},
			want: 50 + 10 + 25 + 10,
		},
		{
			name: "partial completion",
			event: Event{
				Type:   EventQuizComplete,
				BaseXP: 50,
				Metadata: map[string]int{
					"correctAnswers": 3,
					"score":          60,
				},
			},
			want: 56,
		},
		{
			name:  "unknown event type earns base only",
			event: Event{Type: "streak_milestone", BaseXP: 15},
			want:  15,
		},
		{
			name:  "no metadata",
			event: Event{Type: EventQuizComplete, BaseXP: 50},
			want:  50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := awarder.Award(context.Background(), tt.event)
			if err != nil {
				t.Fatalf("award: %v", err)
			}
			if got != tt.want {
				t.Errorf("Award() = %d, want %d", got, tt.want)
			}
		})
	}
}
