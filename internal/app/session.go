package app

import (
	"math"
	"sync"
	"time"

	"hindi-drill-service/internal/domain"
)

// autoAdvanceDelay is how long the host should wait before advancing when
// explanations are disabled.
const autoAdvanceDelay = time.Second

type phase int

const (
	phaseAwaitingAnswer phase = iota
	phaseAnswered
	phaseCompleted
)

// SubmitOutcome reports the result of one answer submission.
type SubmitOutcome struct {
	QuestionID       string        `json:"questionId"`
	Correct          bool          `json:"correct"`
	CorrectIndex     int           `json:"correctIndex"`
	AttemptNumber    int           `json:"attemptNumber"`
	Streak           int           `json:"streak"`
	PerfectStreak    int           `json:"perfectStreak"`
	Explanation      string        `json:"explanation,omitempty"`
	CanRetry         bool          `json:"canRetry"`
	AutoAdvanceAfter time.Duration `json:"-"`
}

// Session drives a single learner's drill attempt from the first question to
// the final result. All methods are safe for concurrent use; in practice the
// only writers are the transport's read loop and its countdown ticker.
type Session struct {
	id     string
	userID string
	quiz   domain.Quiz
	opts   domain.SessionOptions
	now    func() time.Time

	mu                sync.Mutex
	phase             phase
	idx               int
	attempts          []domain.Attempt
	pending           int // -1 when no selection is staged
	streak            int
	perfectStreak     int
	startedAt         time.Time
	questionStartedAt time.Time
	remaining         int
	result            *domain.QuizResult
	finishClaimed     bool
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, userID string, quiz domain.Quiz, opts domain.SessionOptions) *Session {
	return newSessionWithClock(id, userID, quiz, opts, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id, userID string, quiz domain.Quiz, opts domain.SessionOptions, now func() time.Time) *Session {
	return newSessionWithClock(id, userID, quiz, opts, now)
}

func newSessionWithClock(id, userID string, quiz domain.Quiz, opts domain.SessionOptions, now func() time.Time) *Session {
	start := now()
	return &Session{
		id:                id,
		userID:            userID,
		quiz:              quiz,
		opts:              opts,
		now:               now,
		pending:           -1,
		startedAt:         start,
		questionStartedAt: start,
		remaining:         opts.TimeLimitSeconds,
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }
func (s *Session) QuizID() string { return s.quiz.ID }
func (s *Session) Quiz() domain.Quiz {
	return s.quiz
}

// SelectAnswer stages an option for the current question without recording an
// Attempt. Re-selecting before submission replaces the staged option.
func (s *Session) SelectAnswer(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case phaseCompleted:
		return domain.ErrSessionCompleted
	case phaseAnswered:
		return domain.ErrAlreadyAnswered
	}
	if index < 0 || index >= len(s.quiz.Questions[s.idx].Options) {
		return domain.ErrOptionOutOfRange
	}
	s.pending = index
	return nil
}

// Submit records the staged selection as an Attempt and updates streaks.
func (s *Session) Submit() (SubmitOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case phaseCompleted:
		return SubmitOutcome{}, domain.ErrSessionCompleted
	case phaseAnswered:
		return SubmitOutcome{}, domain.ErrAlreadyAnswered
	}
	if s.pending < 0 {
		return SubmitOutcome{}, domain.ErrNoSelection
	}

	question := s.quiz.Questions[s.idx]
	correct := s.pending == question.CorrectIndex

	attemptNumber := 1
	for _, a := range s.attempts {
		if a.QuestionID == question.ID {
			attemptNumber++
		}
	}

	s.attempts = append(s.attempts, domain.Attempt{
		QuestionID:       question.ID,
		SelectedIndex:    s.pending,
		Correct:          correct,
		TimeSpentSeconds: int(s.now().Sub(s.questionStartedAt).Seconds()),
		AttemptNumber:    attemptNumber,
	})

	if correct {
		s.streak++
		if attemptNumber == 1 {
			s.perfectStreak++
		}
	} else {
		s.streak = 0
		s.perfectStreak = 0
	}
	s.phase = phaseAnswered

	outcome := SubmitOutcome{
		QuestionID:    question.ID,
		Correct:       correct,
		CorrectIndex:  question.CorrectIndex,
		AttemptNumber: attemptNumber,
		Streak:        s.streak,
		PerfectStreak: s.perfectStreak,
		CanRetry:      s.opts.AllowRetry && !correct,
	}
	if s.opts.ShowExplanations {
		outcome.Explanation = question.Explanation
	} else {
		outcome.AutoAdvanceAfter = autoAdvanceDelay
	}
	return outcome, nil
}

// Retry reopens the current question after an incorrect submission. The prior
// Attempt stays in the log.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case phaseCompleted:
		return domain.ErrSessionCompleted
	case phaseAwaitingAnswer:
		return domain.ErrNotAnswered
	}
	if !s.opts.AllowRetry {
		return domain.ErrRetryNotAllowed
	}
	if last := s.lastAttemptLocked(); last == nil || last.Correct {
		return domain.ErrRetryNotAllowed
	}
	s.pending = -1
	s.phase = phaseAwaitingAnswer
	return nil
}

// Next advances to the following question, or completes the session on the
// last one. It reports whether the session just completed.
func (s *Session) Next() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case phaseCompleted:
		return false, domain.ErrSessionCompleted
	case phaseAwaitingAnswer:
		return false, domain.ErrNotAnswered
	}
	if s.idx < len(s.quiz.Questions)-1 {
		s.idx++
		s.pending = -1
		s.phase = phaseAwaitingAnswer
		s.questionStartedAt = s.now()
		return false, nil
	}
	s.completeLocked()
	return true, nil
}

// Tick consumes one second of a configured time limit. The host calls it once
// per second and stops once it reports completion. Sessions without a limit
// ignore ticks.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == phaseCompleted {
		return true
	}
	if s.opts.TimeLimitSeconds <= 0 {
		return false
	}
	s.remaining--
	if s.remaining > 0 {
		return false
	}
	s.remaining = 0
	s.completeLocked()
	return true
}

// Complete force-finishes the session (host abandonment with a partial result).
func (s *Session) Complete() domain.QuizResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeLocked()
	return *s.result
}

func (s *Session) completeLocked() {
	if s.phase == phaseCompleted {
		return
	}
	s.phase = phaseCompleted

	correct := 0
	for _, a := range s.attempts {
		if a.Correct {
			correct++
		}
	}
	total := len(s.quiz.Questions)

	result := domain.QuizResult{
		Score:                 int(math.Round(100 * float64(correct) / float64(total))),
		CorrectAnswers:        correct,
		TotalQuestions:        total,
		TotalTimeSpentSeconds: int(s.now().Sub(s.startedAt).Seconds()),
		Attempts:              append([]domain.Attempt(nil), s.attempts...),
		FinalStreak:           s.streak,
		PerfectStreak:         s.perfectStreak,
	}
	result.Achievements = evaluateAchievements(result)
	s.result = &result
}

// ClaimFinish reports true exactly once after the session has completed, so
// the one-shot completion flow (XP award) runs a single time no matter which
// path finished the session.
func (s *Session) ClaimFinish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != phaseCompleted || s.finishClaimed {
		return false
	}
	s.finishClaimed = true
	return true
}

// AttachXP records the awarded XP on the result. First write wins; the result
// is immutable afterwards.
func (s *Session) AttachXP(xp int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.result.XPEarned != 0 {
		return
	}
	s.result.XPEarned = xp
}

// Completed reports whether the session reached its terminal state.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == phaseCompleted
}

// Result returns the terminal aggregate once the session has completed.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

// View snapshots the session for transport consumption.
func (s *Session) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := domain.SessionView{
		SessionID:      s.id,
		QuizID:         s.quiz.ID,
		QuestionIndex:  s.idx,
		TotalQuestions: len(s.quiz.Questions),
		Answered:       s.phase == phaseAnswered,
		Completed:      s.phase == phaseCompleted,
	}
	if s.opts.TimeLimitSeconds > 0 {
		view.RemainingSeconds = s.remaining
	}
	if s.phase != phaseCompleted {
		view.Question = s.quiz.Questions[s.idx].View()
	}
	return view
}

func (s *Session) lastAttemptLocked() *domain.Attempt {
	questionID := s.quiz.Questions[s.idx].ID
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if s.attempts[i].QuestionID == questionID {
			return &s.attempts[i]
		}
	}
	return nil
}
