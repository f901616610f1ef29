package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrEmptyQuiz indicates a quiz with no questions was loaded.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrSessionNotFound is returned when a drill session does not exist.
	ErrSessionNotFound = errors.New("drill session not found")

	// ErrInvalidTransition is the base class for operations attempted in a
	// state that forbids them. Hosts may ignore these; tests assert on them.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrMissingInput is the base class for operations missing a required input.
	ErrMissingInput = errors.New("missing input")

	// ErrSessionCompleted: any mutator called after the session reached its terminal state.
	ErrSessionCompleted = fmt.Errorf("%w: session already completed", ErrInvalidTransition)
	// ErrAlreadyAnswered: select or submit after the current question was answered.
	ErrAlreadyAnswered = fmt.Errorf("%w: question already answered", ErrInvalidTransition)
	// ErrNotAnswered: advance or retry before the current question was answered.
	ErrNotAnswered = fmt.Errorf("%w: question not yet answered", ErrInvalidTransition)
	// ErrSessionNotCompleted: result requested before the session finished.
	ErrSessionNotCompleted = fmt.Errorf("%w: session not completed", ErrInvalidTransition)
	// ErrRetryNotAllowed: retry disabled by configuration or the last attempt was correct.
	ErrRetryNotAllowed = fmt.Errorf("%w: retry not permitted", ErrInvalidTransition)
	// ErrNoSelection: submit without a pending selection.
	ErrNoSelection = fmt.Errorf("%w: no answer selected", ErrMissingInput)
	// ErrOptionOutOfRange: selected index does not name an option of the current question.
	ErrOptionOutOfRange = fmt.Errorf("%w: option index out of range", ErrMissingInput)
)
