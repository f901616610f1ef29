// Package feedback turns a learner's performance signals into structured
// coaching feedback. Everything here is pure and deterministic: no clock, no
// randomness, no I/O, and no failure modes. Malformed optional inputs fall
// back to documented defaults.
package feedback

import (
	"fmt"
	"math"
	"strings"

	"hindi-drill-service/internal/domain"
)

// Tier buckets accuracy for encouragement selection.
type Tier string

const (
	TierHigh   Tier = "high"   // accuracy >= 80
	TierMedium Tier = "medium" // 60 <= accuracy < 80
	TierLow    Tier = "low"    // accuracy < 60
)

// Pace classifies transcript length against the expected text.
type Pace string

const (
	PaceTooSlow Pace = "too_slow"
	PaceGood    Pace = "good"
	PaceTooFast Pace = "too_fast"
)

// PhonemeError is one pronunciation problem detected upstream.
type PhonemeError struct {
	Type             string `json:"type"`
	Severity         string `json:"severity"`
	HindiExplanation string `json:"hindiExplanation,omitempty"`
}

// AnalysisInput carries the performance signals to score.
type AnalysisInput struct {
	Accuracy        int               `json:"accuracy"` // 0-100
	Transcript      string            `json:"transcript,omitempty"`
	ExpectedText    string            `json:"expectedText,omitempty"`
	PhonemeErrors   []PhonemeError    `json:"phonemeErrors,omitempty"`
	Level           domain.Difficulty `json:"level,omitempty"` // defaults to beginner
	CulturalContext string            `json:"culturalContext,omitempty"`
}

// PronunciationIssue pairs a detected error with its coaching payload.
type PronunciationIssue struct {
	Phoneme        string   `json:"phoneme"`
	Severity       string   `json:"severity"`
	Explanation    string   `json:"explanation,omitempty"`
	Technique      string   `json:"technique"`
	PracticePhrase string   `json:"practicePhrase"`
	PracticeWords  []string `json:"practiceWords"`
}

// Pronunciation is the pronunciation section of a Bundle.
type Pronunciation struct {
	Accuracy      int                  `json:"accuracy"`
	Issues        []PronunciationIssue `json:"issues"`
	Suggestions   []string             `json:"suggestions"`
	AudioExamples []string             `json:"audioExamples"`
}

// Fluency is the fluency section of a Bundle.
type Fluency struct {
	Score       int      `json:"score"`
	Pace        Pace     `json:"pace"`
	Naturalness int      `json:"naturalness"` // 0-100
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Encouragement is the motivational section of a Bundle.
type Encouragement struct {
	Message string `json:"message"`
	Tip     string `json:"tip"`
}

// Bundle is the full feedback payload for display.
type Bundle struct {
	OverallScore  int           `json:"overallScore"`
	Pronunciation Pronunciation `json:"pronunciation"`
	Fluency       Fluency       `json:"fluency"`
	CulturalNotes []string      `json:"culturalNotes"`
	NextSteps     []string      `json:"nextSteps"`
	Encouragement Encouragement `json:"encouragement"`
}

// Generate scores the analysis into a Bundle. Identical inputs always yield
// identical bundles.
func Generate(in AnalysisInput) Bundle {
	accuracy := clampScore(in.Accuracy)
	level := in.Level
	if _, ok := encouragementGrid[level]; !ok {
		level = domain.DifficultyBeginner
	}

	pron := analyzePronunciation(accuracy, in.PhonemeErrors)
	flu := analyzeFluency(accuracy, in.Transcript, in.ExpectedText, len(in.PhonemeErrors))

	return Bundle{
		OverallScore:  int(math.Round(float64(accuracy)*0.7 + float64(flu.Score)*0.3)),
		Pronunciation: pron,
		Fluency:       flu,
		CulturalNotes: culturalNotes(in.CulturalContext),
		NextSteps:     nextSteps(accuracy, len(in.PhonemeErrors)),
		Encouragement: encouragementGrid[level][TierFor(accuracy)],
	}
}

// TierFor maps accuracy to its performance tier.
func TierFor(accuracy int) Tier {
	switch {
	case accuracy >= 80:
		return TierHigh
	case accuracy < 60:
		return TierLow
	default:
		return TierMedium
	}
}

func analyzePronunciation(accuracy int, errs []PhonemeError) Pronunciation {
	pron := Pronunciation{
		Accuracy:      accuracy,
		Issues:        make([]PronunciationIssue, 0, len(errs)),
		Suggestions:   []string{},
		AudioExamples: []string{},
	}
	for _, perr := range errs {
		technique, ok := phonemeTechniques[perr.Type]
		if !ok {
			technique = genericTechnique
		}
		pron.Issues = append(pron.Issues, PronunciationIssue{
			Phoneme:        perr.Type,
			Severity:       perr.Severity,
			Explanation:    perr.HindiExplanation,
			Technique:      technique.Technique,
			PracticePhrase: technique.PracticePhrase,
			PracticeWords:  technique.PracticeWords,
		})
		pron.Suggestions = append(pron.Suggestions,
			fmt.Sprintf("For %s: %s. Try: \"%s\"", perr.Type, technique.Technique, technique.PracticePhrase))
		pron.AudioExamples = append(pron.AudioExamples, technique.AudioExample)
	}
	return pron
}

func analyzeFluency(accuracy int, transcript, expected string, errorCount int) Fluency {
	naturalness := 100 - 10*errorCount
	if naturalness < 0 {
		naturalness = 0
	}

	flu := Fluency{
		Score:       int(math.Round(float64(accuracy+naturalness) / 2)),
		Pace:        classifyPace(transcript, expected),
		Naturalness: naturalness,
		Issues:      []string{},
		Suggestions: []string{},
	}
	switch flu.Pace {
	case PaceTooSlow:
		flu.Issues = append(flu.Issues, "Speech was slower than the target phrase")
		flu.Suggestions = append(flu.Suggestions, "Read the phrase silently first, then say it in one breath")
	case PaceTooFast:
		flu.Issues = append(flu.Issues, "Speech was faster than the target phrase")
		flu.Suggestions = append(flu.Suggestions, "Pause briefly at commas and full stops to steady your rhythm")
	}
	if naturalness < 70 {
		flu.Issues = append(flu.Issues, "Several sounds interrupted the natural flow")
		flu.Suggestions = append(flu.Suggestions, "Work through the pronunciation tips before repeating the phrase")
	}
	return flu
}

// classifyPace compares word counts: under 0.8x expected is too slow, over
// 1.2x is too fast. An empty expected text is treated as on-pace.
func classifyPace(transcript, expected string) Pace {
	expectedWords := len(strings.Fields(expected))
	if expectedWords == 0 {
		return PaceGood
	}
	ratio := float64(len(strings.Fields(transcript))) / float64(expectedWords)
	switch {
	case ratio < 0.8:
		return PaceTooSlow
	case ratio > 1.2:
		return PaceTooFast
	default:
		return PaceGood
	}
}

func culturalNotes(context string) []string {
	notes := []string{}
	if note, ok := culturalScenarios[context]; ok {
		notes = append(notes, note)
	}
	return append(notes, regionalVariationNote)
}

func nextSteps(accuracy, errorCount int) []string {
	steps := []string{}
	if errorCount > 0 {
		steps = append(steps, "Practice your problem sounds with the technique tips above")
	}
	if accuracy < 70 {
		steps = append(steps, "Listen to the native audio and repeat each phrase three times")
	}
	return append(steps, "Record yourself and compare against the example audio")
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
