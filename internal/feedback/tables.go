package feedback

import "hindi-drill-service/internal/domain"

// phonemeTechnique is the coaching payload for one known pronunciation
// problem type.
type phonemeTechnique struct {
	Technique      string
	PracticePhrase string
	PracticeWords  []string
	AudioExample   string
}

var phonemeTechniques = map[string]phonemeTechnique{
	"th_sounds": {
		Technique:      "Place your tongue between your teeth and blow air gently",
		PracticePhrase: "The thin thread went through three thick thorns",
		PracticeWords:  []string{"think", "three", "mother", "weather"},
		AudioExample:   "audio/phonemes/th.mp3",
	},
	"v_sounds": {
		Technique:      "Touch your top teeth to your bottom lip and let the sound vibrate",
		PracticePhrase: "Very vivid violets grow in the valley",
		PracticeWords:  []string{"very", "voice", "seven", "available"},
		AudioExample:   "audio/phonemes/v.mp3",
	},
	"w_sounds": {
		Technique:      "Round your lips into a small circle, then relax them as you speak",
		PracticePhrase: "We went west in wet weather",
		PracticeWords:  []string{"water", "work", "sandwich", "always"},
		AudioExample:   "audio/phonemes/w.mp3",
	},
	"r_sounds": {
		Technique:      "Curl your tongue back slightly without touching the roof of your mouth",
		PracticePhrase: "Red roses rarely arrive in the rain",
		PracticeWords:  []string{"right", "around", "servicer", "mirror"},
		AudioExample:   "audio/phonemes/r.mp3",
	},
}

// genericTechnique keeps feedback total for unrecognized phoneme types.
var genericTechnique = phonemeTechnique{
	Technique:      "Listen to a native speaker and mimic the mouth position",
	PracticePhrase: "Practice slowly, then build up to natural speed",
	PracticeWords:  []string{"repeat", "slowly", "clearly"},
	AudioExample:   "audio/phonemes/general.mp3",
}

// encouragementGrid maps learner level and performance tier to a fixed
// message. Selection is fully deterministic so responses snapshot cleanly.
var encouragementGrid = map[domain.Difficulty]map[Tier]Encouragement{
	domain.DifficultyBeginner: {
		TierHigh: {
			Message: "शानदार! Your English is improving fast, keep this energy going! 🌟",
			Tip:     "Try narrating one daily activity in English each morning.",
		},
		TierMedium: {
			Message: "अच्छी कोशिश! You are making steady progress, every attempt counts. 💪",
			Tip:     "Repeat today's phrases out loud three times before bed.",
		},
		TierLow: {
			Message: "कोई बात नहीं! Every expert was once a beginner, tomorrow will be better. 🌱",
			Tip:     "Focus on just five new words today; small steps add up.",
		},
	},
	domain.DifficultyIntermediate: {
		TierHigh: {
			Message: "बहुत बढ़िया! You are speaking with real confidence now. 🚀",
			Tip:     "Challenge yourself with a two-minute unscripted monologue.",
		},
		TierMedium: {
			Message: "Good work! Your fluency is growing, push a little further each session. 📈",
			Tip:     "Watch one English clip today and shadow the speaker.",
		},
		TierLow: {
			Message: "Keep going! Plateaus are part of learning, consistency beats speed. 🧗",
			Tip:     "Revisit a lesson you aced before; rebuild momentum from strength.",
		},
	},
	domain.DifficultyAdvanced: {
		TierHigh: {
			Message: "उत्कृष्ट! You sound nearly native, polish the fine details now. 🏆",
			Tip:     "Record a formal presentation and review your intonation.",
		},
		TierMedium: {
			Message: "Strong session! Refining nuance is the hardest stretch, you are in it. 🎯",
			Tip:     "Practice idioms in context rather than in isolation.",
		},
		TierLow: {
			Message: "Tough one, advanced material is meant to stretch you. Regroup and retry. 🔁",
			Tip:     "Slow the audio down to 0.75x and rebuild from the sounds up.",
		},
	},
}

// culturalScenarios keys context hints from the host to a scenario note.
var culturalScenarios = map[string]string{
	"greeting":   "In formal English settings, a handshake with eye contact replaces the namaste gesture, though 'namaste' itself is widely understood.",
	"market":     "Bargaining is uncommon in Western retail shops; prices are fixed, so phrases like 'कम करो' have no direct equivalent at the till.",
	"restaurant": "Tipping 15-20% is customary in North American restaurants, unlike most dining in India.",
	"travel":     "Queueing is strictly observed in the UK and US; joining a line mid-way is considered rude.",
	"office":     "Colleagues are usually addressed by first name regardless of seniority, unlike 'sir'/'ma'am' conventions common in Indian workplaces.",
}

// regionalVariationNote is appended to every cultural-notes list so it is
// never empty.
const regionalVariationNote = "English varies by region: American, British, and Indian English differ in vocabulary and accent, all are correct."
