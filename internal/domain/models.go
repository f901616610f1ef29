package domain

// Difficulty grades a question for learner-level matching.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Question models one Hindi-to-English drill item with exactly one correct option.
type Question struct {
	ID           string     `json:"id"`
	Prompt       string     `json:"prompt"`
	Translation  string     `json:"translation,omitempty"`
	Options      []string   `json:"options"`
	CorrectIndex int        `json:"correctIndex"`
	Difficulty   Difficulty `json:"difficulty"`
	Category     string     `json:"category,omitempty"`
	Explanation  string     `json:"explanation,omitempty"`
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title,omitempty"`
	Questions []Question `json:"questions"`
}

// SessionOptions configures a single drill session.
type SessionOptions struct {
	TimeLimitSeconds int  `json:"timeLimitSeconds,omitempty"` // 0 means no limit
	AllowRetry       bool `json:"allowRetry"`
	ShowExplanations bool `json:"showExplanations"`
}

// Attempt is one recorded answer submission. Attempts are append-only:
// a retry adds a new entry rather than replacing the prior one.
type Attempt struct {
	QuestionID       string `json:"questionId"`
	SelectedIndex    int    `json:"selectedIndex"`
	Correct          bool   `json:"correct"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
	AttemptNumber    int    `json:"attemptNumber"`
}

// QuizResult is the terminal aggregate of a session, computed once at completion.
type QuizResult struct {
	Score                 int       `json:"score"` // round(100 * correct / total)
	CorrectAnswers        int       `json:"correctAnswers"`
	TotalQuestions        int       `json:"totalQuestions"`
	TotalTimeSpentSeconds int       `json:"totalTimeSpentSeconds"`
	Attempts              []Attempt `json:"attempts"`
	XPEarned              int       `json:"xpEarned"`
	Achievements          []string  `json:"achievements"`
	FinalStreak           int       `json:"finalStreak"`
	PerfectStreak         int       `json:"perfectStreak"`
}

// QuestionView is a question with the answer key stripped, safe to send to clients.
type QuestionView struct {
	ID          string     `json:"id"`
	Prompt      string     `json:"prompt"`
	Translation string     `json:"translation,omitempty"`
	Options     []string   `json:"options"`
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category,omitempty"`
}

// SessionView is a snapshot of session progress for transport consumption.
type SessionView struct {
	SessionID        string       `json:"sessionId"`
	QuizID           string       `json:"quizId"`
	QuestionIndex    int          `json:"questionIndex"`
	TotalQuestions   int          `json:"totalQuestions"`
	Question         QuestionView `json:"question"`
	Answered         bool         `json:"answered"`
	RemainingSeconds int          `json:"remainingSeconds,omitempty"`
	Completed        bool         `json:"completed"`
}

// Valid reports whether the question can safely drive a drill: at least two
// options and an answer key that names one of them.
func (q Question) Valid() bool {
	return q.ID != "" && len(q.Options) >= 2 && q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
}

// Sanitized returns a copy of the quiz with malformed questions dropped. The
// content source is an external collaborator; a bad row should cost one
// question, not the whole drill.
func (q Quiz) Sanitized() Quiz {
	questions := make([]Question, 0, len(q.Questions))
	for _, question := range q.Questions {
		if question.Valid() {
			questions = append(questions, question)
		}
	}
	return Quiz{ID: q.ID, Title: q.Title, Questions: questions}
}

// View converts a question to its client-safe form.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:          q.ID,
		Prompt:      q.Prompt,
		Translation: q.Translation,
		Options:     q.Options,
		Difficulty:  q.Difficulty,
		Category:    q.Category,
	}
}
