package app_test

import (
	"errors"
	"testing"
	"time"

	"hindi-drill-service/internal/app"
	"hindi-drill-service/internal/domain"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func drillQuiz(n int) domain.Quiz {
	quiz := domain.Quiz{ID: "quiz-1", Title: "Drill"}
	for i := 0; i < n; i++ {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:           "q" + string(rune('1'+i)),
			Prompt:       "प्रश्न",
			Options:      []string{"wrong", "right", "also wrong"},
			CorrectIndex: 1,
			Difficulty:   domain.DifficultyBeginner,
		})
	}
	return quiz
}

func newTestSession(n int, opts domain.SessionOptions) (*app.Session, *fakeClock) {
	clock := newFakeClock()
	return app.NewSessionWithClock("s1", "u1", drillQuiz(n), opts, clock.Now), clock
}

func answer(t *testing.T, s *app.Session, index int) app.SubmitOutcome {
	t.Helper()
	if err := s.SelectAnswer(index); err != nil {
		t.Fatalf("select: %v", err)
	}
	outcome, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return outcome
}

func TestSubmitWithoutSelection(t *testing.T) {
	s, _ := newTestSession(2, domain.SessionOptions{})

	_, err := s.Submit()
	if !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if !errors.Is(err, domain.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput class, got %v", err)
	}
}

func TestSelectAfterAnswered(t *testing.T) {
	s, _ := newTestSession(2, domain.SessionOptions{})

	answer(t, s, 1)
	if err := s.SelectAnswer(0); !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if _, err := s.Submit(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected transition error on double submit, got %v", err)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	s, _ := newTestSession(1, domain.SessionOptions{})

	if err := s.SelectAnswer(3); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange, got %v", err)
	}
	if err := s.SelectAnswer(-1); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected ErrOptionOutOfRange for negative index, got %v", err)
	}
}

func TestNextBeforeAnswer(t *testing.T) {
	s, _ := newTestSession(2, domain.SessionOptions{})

	if _, err := s.Next(); !errors.Is(err, domain.ErrNotAnswered) {
		t.Fatalf("expected ErrNotAnswered, got %v", err)
	}
}

func TestRetryKeepsAttemptLog(t *testing.T) {
	s, _ := newTestSession(2, domain.SessionOptions{AllowRetry: true})

	outcome := answer(t, s, 0) // wrong
	if outcome.Correct || !outcome.CanRetry {
		t.Fatalf("expected retryable wrong answer, got %+v", outcome)
	}
	if err := s.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}

	outcome = answer(t, s, 1) // right on second try
	if !outcome.Correct || outcome.AttemptNumber != 2 {
		t.Fatalf("expected correct attempt #2, got %+v", outcome)
	}
	if outcome.PerfectStreak != 0 {
		t.Fatalf("retry-corrected answer must not count toward perfect streak, got %d", outcome.PerfectStreak)
	}
	if outcome.Streak != 1 {
		t.Fatalf("expected running streak 1, got %d", outcome.Streak)
	}

	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	answer(t, s, 1)
	completed, err := s.Next()
	if err != nil || !completed {
		t.Fatalf("expected completion, got completed=%v err=%v", completed, err)
	}

	result, ok := s.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if len(result.Attempts) != 3 {
		t.Fatalf("expected 3 attempts in log, got %d", len(result.Attempts))
	}
	first, second := result.Attempts[0], result.Attempts[1]
	if first.QuestionID != second.QuestionID || first.AttemptNumber != 1 || second.AttemptNumber != 2 {
		t.Fatalf("expected two attempts for the same question numbered 1 and 2, got %+v %+v", first, second)
	}
	if result.CorrectAnswers != 2 || result.Score != 100 {
		t.Fatalf("expected 2 correct and score 100, got %+v", result)
	}
}

func TestRetryRequiresPermissionAndWrongAnswer(t *testing.T) {
	s, _ := newTestSession(2, domain.SessionOptions{})
	answer(t, s, 0)
	if err := s.Retry(); !errors.Is(err, domain.ErrRetryNotAllowed) {
		t.Fatalf("expected ErrRetryNotAllowed without permission, got %v", err)
	}

	s2, _ := newTestSession(2, domain.SessionOptions{AllowRetry: true})
	answer(t, s2, 1)
	if err := s2.Retry(); !errors.Is(err, domain.ErrRetryNotAllowed) {
		t.Fatalf("expected ErrRetryNotAllowed after correct answer, got %v", err)
	}
}

func TestScoreRounding(t *testing.T) {
	// 3 correct of 4 -> 75
	s, _ := newTestSession(4, domain.SessionOptions{})
	answers := []int{1, 1, 1, 0}
	for i, idx := range answers {
		answer(t, s, idx)
		completed, err := s.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if completed != (i == len(answers)-1) {
			t.Fatalf("unexpected completion at question %d", i)
		}
	}
	result, _ := s.Result()
	if result.Score != 75 {
		t.Fatalf("expected score 75, got %d", result.Score)
	}

	// 2 correct of 3 -> round(66.67) = 67
	s2, _ := newTestSession(3, domain.SessionOptions{})
	for _, idx := range []int{1, 1, 0} {
		answer(t, s2, idx)
		s2.Next()
	}
	result2, _ := s2.Result()
	if result2.Score != 67 {
		t.Fatalf("expected score 67, got %d", result2.Score)
	}
}

func TestStreakResetsOnWrongAnswer(t *testing.T) {
	s, _ := newTestSession(3, domain.SessionOptions{})

	if outcome := answer(t, s, 1); outcome.Streak != 1 || outcome.PerfectStreak != 1 {
		t.Fatalf("expected streaks 1/1, got %+v", outcome)
	}
	s.Next()
	if outcome := answer(t, s, 0); outcome.Streak != 0 || outcome.PerfectStreak != 0 {
		t.Fatalf("expected streaks reset, got %+v", outcome)
	}
	s.Next()
	if outcome := answer(t, s, 1); outcome.Streak != 1 || outcome.PerfectStreak != 1 {
		t.Fatalf("expected streaks rebuilt, got %+v", outcome)
	}
}

func TestExplanationPolicy(t *testing.T) {
	quiz := drillQuiz(1)
	quiz.Questions[0].Explanation = "because"
	clock := newFakeClock()

	withExplain := app.NewSessionWithClock("s1", "u1", quiz, domain.SessionOptions{ShowExplanations: true}, clock.Now)
	outcome := answer(t, withExplain, 1)
	if outcome.Explanation != "because" || outcome.AutoAdvanceAfter != 0 {
		t.Fatalf("expected explanation without auto-advance, got %+v", outcome)
	}

	withoutExplain := app.NewSessionWithClock("s2", "u1", quiz, domain.SessionOptions{}, clock.Now)
	outcome = answer(t, withoutExplain, 1)
	if outcome.Explanation != "" || outcome.AutoAdvanceAfter != time.Second {
		t.Fatalf("expected auto-advance hint without explanation, got %+v", outcome)
	}
}

func TestTickCompletesOnceAtZero(t *testing.T) {
	s, _ := newTestSession(3, domain.SessionOptions{TimeLimitSeconds: 3})

	answer(t, s, 1)

	for i := 0; i < 2; i++ {
		if s.Tick() {
			t.Fatalf("completed too early at tick %d", i+1)
		}
	}
	if !s.Tick() {
		t.Fatalf("expected completion at tick 3")
	}
	if !s.Completed() {
		t.Fatalf("expected completed session")
	}

	result, _ := s.Result()
	// further ticks and mutators must not disturb the terminal result
	if !s.Tick() {
		t.Fatalf("tick after completion should report completed")
	}
	if _, err := s.Submit(); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
	again, _ := s.Result()
	if again.CorrectAnswers != result.CorrectAnswers || again.Score != result.Score {
		t.Fatalf("result changed after completion: %+v vs %+v", again, result)
	}
}

func TestTickIgnoredWithoutLimit(t *testing.T) {
	s, _ := newTestSession(1, domain.SessionOptions{})
	for i := 0; i < 10; i++ {
		if s.Tick() {
			t.Fatalf("untimed session must not complete on ticks")
		}
	}
}

func TestViewTracksProgress(t *testing.T) {
	s, clock := newTestSession(2, domain.SessionOptions{TimeLimitSeconds: 30})

	view := s.View()
	if view.QuestionIndex != 0 || view.TotalQuestions != 2 || view.Answered || view.Completed {
		t.Fatalf("unexpected initial view %+v", view)
	}
	if view.RemainingSeconds != 30 {
		t.Fatalf("expected remaining 30, got %d", view.RemainingSeconds)
	}

	clock.Advance(5 * time.Second)
	answer(t, s, 1)
	if view = s.View(); !view.Answered {
		t.Fatalf("expected answered view, got %+v", view)
	}
	s.Next()
	if view = s.View(); view.QuestionIndex != 1 || view.Answered {
		t.Fatalf("expected advance to question 1, got %+v", view)
	}
}

func TestAttemptTimingUsesClock(t *testing.T) {
	s, clock := newTestSession(2, domain.SessionOptions{})

	clock.Advance(7 * time.Second)
	answer(t, s, 1)
	s.Next()
	clock.Advance(12 * time.Second)
	answer(t, s, 0)
	s.Next()

	result, _ := s.Result()
	if result.Attempts[0].TimeSpentSeconds != 7 {
		t.Fatalf("expected 7s on first attempt, got %d", result.Attempts[0].TimeSpentSeconds)
	}
	if result.Attempts[1].TimeSpentSeconds != 12 {
		t.Fatalf("expected 12s on second attempt, got %d", result.Attempts[1].TimeSpentSeconds)
	}
	if result.TotalTimeSpentSeconds != 19 {
		t.Fatalf("expected total 19s, got %d", result.TotalTimeSpentSeconds)
	}
}

func TestAchievements(t *testing.T) {
	t.Run("perfect run earns everything", func(t *testing.T) {
		s, clock := newTestSession(5, domain.SessionOptions{})
		for i := 0; i < 5; i++ {
			clock.Advance(10 * time.Second)
			answer(t, s, 1)
			s.Next()
		}
		result, _ := s.Result()
		want := []string{"Perfect Score", "Perfect Streak", "Speed Demon", "Flawless Victory"}
		if len(result.Achievements) != len(want) {
			t.Fatalf("expected %v, got %v", want, result.Achievements)
		}
		for i, name := range want {
			if result.Achievements[i] != name {
				t.Fatalf("expected %v, got %v", want, result.Achievements)
			}
		}
	})

	t.Run("slow perfect run misses speed demon", func(t *testing.T) {
		s, clock := newTestSession(2, domain.SessionOptions{})
		for i := 0; i < 2; i++ {
			clock.Advance(40 * time.Second)
			answer(t, s, 1)
			s.Next()
		}
		result, _ := s.Result()
		for _, badge := range result.Achievements {
			if badge == "Speed Demon" {
				t.Fatalf("80s for 2 questions should not earn Speed Demon: %v", result.Achievements)
			}
		}
	})
}

// Mirrors the documented end-to-end scenario: 5 questions, no retries,
// 3 correct, 120s limit, 100s spent.
func TestFiveQuestionScenario(t *testing.T) {
	s, clock := newTestSession(5, domain.SessionOptions{TimeLimitSeconds: 120})

	answers := []int{1, 0, 1, 0, 1}
	for _, idx := range answers {
		clock.Advance(20 * time.Second)
		answer(t, s, idx)
		s.Next()
	}

	result, ok := s.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if result.Score != 60 {
		t.Fatalf("expected score 60, got %d", result.Score)
	}
	if result.TotalTimeSpentSeconds != 100 {
		t.Fatalf("expected 100s total, got %d", result.TotalTimeSpentSeconds)
	}
	if len(result.Achievements) != 1 || result.Achievements[0] != "Speed Demon" {
		t.Fatalf("expected only Speed Demon (100 < 150), got %v", result.Achievements)
	}
}
