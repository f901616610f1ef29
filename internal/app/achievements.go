package app

import "hindi-drill-service/internal/domain"

// achievementRules are evaluated once at completion. Every matching predicate
// contributes its badge; iteration order is fixed so results are stable.
var achievementRules = []struct {
	name  string
	match func(r domain.QuizResult) bool
}{
	{"Perfect Score", func(r domain.QuizResult) bool { return r.Score == 100 }},
	{"Perfect Streak", func(r domain.QuizResult) bool { return r.PerfectStreak >= 5 }},
	{"Speed Demon", func(r domain.QuizResult) bool { return r.TotalTimeSpentSeconds < r.TotalQuestions*30 }},
	{"Flawless Victory", func(r domain.QuizResult) bool { return r.FinalStreak >= r.TotalQuestions }},
}

func evaluateAchievements(r domain.QuizResult) []string {
	badges := make([]string, 0, len(achievementRules))
	for _, rule := range achievementRules {
		if rule.match(r) {
			badges = append(badges, rule.name)
		}
	}
	return badges
}
