// Package xp defines the experience-point collaborator contract. The drill
// service treats any Awarder as best-effort: a failed award degrades to zero
// XP and never disturbs the session flow.
package xp

import "context"

// Event describes something XP-worthy that happened.
type Event struct {
	Type     string         `json:"type"`
	BaseXP   int            `json:"baseXp"`
	Metadata map[string]int `json:"metadata,omitempty"`
}

// Event types emitted by the drill service.
const (
	EventQuizComplete = "quiz_complete"
)

// Awarder computes and persists XP for an event.
type Awarder interface {
	Award(ctx context.Context, event Event) (int, error)
}

// RuleAwarder is the local deterministic awarder: base XP plus fixed bonuses
// derived from event metadata.
type RuleAwarder struct{}

func NewRuleAwarder() *RuleAwarder { return &RuleAwarder{} }

func (a *RuleAwarder) Award(_ context.Context, event Event) (int, error) {
	total := event.BaseXP
	if event.Type != EventQuizComplete {
		return total, nil
	}
	total += 2 * event.Metadata["correctAnswers"]
	if event.Metadata["score"] == 100 {
		total += 25
	}
	if event.Metadata["speedBonus"] > 0 {
		total += 10
	}
	return total, nil
}

// AwarderFunc adapts a function to the Awarder interface, mostly for tests.
type AwarderFunc func(ctx context.Context, event Event) (int, error)

func (f AwarderFunc) Award(ctx context.Context, event Event) (int, error) {
	return f(ctx, event)
}
