package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hindi-drill-service/internal/domain"
	"hindi-drill-service/internal/feedback"
	"hindi-drill-service/internal/xp"
)

// quizCompleteBaseXP seeds every completion award before bonuses.
const quizCompleteBaseXP = 50

// SessionRepository abstracts how drill sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Completion bundles everything the learner sees when a session finishes.
type Completion struct {
	Result   domain.QuizResult `json:"result"`
	Feedback feedback.Bundle   `json:"feedback"`
}

// DrillService contains the drill session use cases.
type DrillService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	awarder  xp.Awarder
	log      *zap.Logger
	newID    func() string
	clock    func() time.Time
}

func NewDrillService(store SessionRepository, quizzes QuizRepository, awarder xp.Awarder, log *zap.Logger) *DrillService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DrillService{
		sessions: store,
		quizzes:  quizzes,
		awarder:  awarder,
		log:      log,
		newID:    uuid.NewString,
		clock:    time.Now,
	}
}

// WithClock is test-only for deterministic session timing and IDs.
func (s *DrillService) WithClock(now func() time.Time, newID func() string) *DrillService {
	s.clock = now
	s.newID = newID
	return s
}

// Start loads the quiz and opens a fresh session for the learner.
func (s *DrillService) Start(ctx context.Context, quizID, userID string, opts domain.SessionOptions) (domain.SessionView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.SessionView{}, err
	}
	if len(quiz.Questions) == 0 {
		return domain.SessionView{}, domain.ErrEmptyQuiz
	}

	session := newSessionWithClock(s.newID(), userID, quiz, opts, s.clock)
	s.sessions.Put(session)
	s.log.Info("drill session started",
		zap.String("sessionId", session.ID()),
		zap.String("quizId", quizID),
		zap.String("userId", userID),
		zap.Int("questions", len(quiz.Questions)))
	return session.View(), nil
}

// Select stages an answer for the session's current question.
func (s *DrillService) Select(_ context.Context, sessionID string, index int) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	if err := session.SelectAnswer(index); err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

// Submit records the staged answer.
func (s *DrillService) Submit(_ context.Context, sessionID string) (SubmitOutcome, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return SubmitOutcome{}, domain.ErrSessionNotFound
	}
	return session.Submit()
}

// Retry reopens the current question after an incorrect answer.
func (s *DrillService) Retry(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, domain.ErrSessionNotFound
	}
	if err := session.Retry(); err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

// Next advances the session. When the last question is passed it returns the
// completion payload.
func (s *DrillService) Next(ctx context.Context, sessionID string) (domain.SessionView, *Completion, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, nil, domain.ErrSessionNotFound
	}
	completed, err := session.Next()
	if err != nil {
		return domain.SessionView{}, nil, err
	}
	if !completed {
		return session.View(), nil, nil
	}
	completion := s.finish(ctx, session)
	return session.View(), &completion, nil
}

// Tick consumes one second of the session's time limit. The transport calls
// it once per second and stops once a completion is returned.
func (s *DrillService) Tick(ctx context.Context, sessionID string) (domain.SessionView, *Completion, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionView{}, nil, domain.ErrSessionNotFound
	}
	if !session.Tick() {
		return session.View(), nil, nil
	}
	completion := s.finish(ctx, session)
	return session.View(), &completion, nil
}

// Result returns the completion payload of a finished session.
func (s *DrillService) Result(_ context.Context, sessionID string) (Completion, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Completion{}, domain.ErrSessionNotFound
	}
	result, done := session.Result()
	if !done {
		return Completion{}, domain.ErrSessionNotCompleted
	}
	return Completion{Result: result, Feedback: s.summaryFeedback(session, result)}, nil
}

// Feedback is the passthrough for external evaluators feeding real speech
// analysis into the scorer.
func (s *DrillService) Feedback(analysis feedback.AnalysisInput) feedback.Bundle {
	return feedback.Generate(analysis)
}

// Abandon drops a session, typically on client disconnect.
func (s *DrillService) Abandon(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	s.sessions.Delete(sessionID)
	s.log.Info("drill session abandoned",
		zap.String("sessionId", sessionID),
		zap.Bool("completed", session.Completed()))
}

// finish runs the one-time completion flow: award XP (best-effort, zero on
// collaborator failure) and assemble the learner-facing payload.
func (s *DrillService) finish(ctx context.Context, session *Session) Completion {
	if session.ClaimFinish() {
		result, _ := session.Result()
		awarded, err := s.awarder.Award(ctx, xp.Event{
			Type:   xp.EventQuizComplete,
			BaseXP: quizCompleteBaseXP,
			Metadata: map[string]int{
				"correctAnswers": result.CorrectAnswers,
				"score":          result.Score,
				"speedBonus":     speedBonus(result),
			},
		})
		if err != nil {
			s.log.Warn("xp award failed, defaulting to 0",
				zap.String("sessionId", session.ID()),
				zap.Error(err))
			awarded = 0
		}
		session.AttachXP(awarded)
	}

	result, _ := session.Result()
	return Completion{Result: result, Feedback: s.summaryFeedback(session, result)}
}

// summaryFeedback scores the aggregate outcome: accuracy is the final score
// and there is no speech signal, so pace stays neutral.
func (s *DrillService) summaryFeedback(session *Session, result domain.QuizResult) feedback.Bundle {
	return feedback.Generate(feedback.AnalysisInput{
		Accuracy: result.Score,
		Level:    dominantDifficulty(session.Quiz()),
	})
}

func speedBonus(result domain.QuizResult) int {
	if result.TotalTimeSpentSeconds < result.TotalQuestions*30 {
		return 1
	}
	return 0
}

// dominantDifficulty picks the most common question difficulty, falling back
// to beginner on a tie or unknown tags.
func dominantDifficulty(quiz domain.Quiz) domain.Difficulty {
	counts := map[domain.Difficulty]int{}
	for _, q := range quiz.Questions {
		counts[q.Difficulty]++
	}
	best := domain.DifficultyBeginner
	bestCount := 0
	for _, level := range []domain.Difficulty{domain.DifficultyBeginner, domain.DifficultyIntermediate, domain.DifficultyAdvanced} {
		if counts[level] > bestCount {
			best = level
			bestCount = counts[level]
		}
	}
	return best
}
