// Package quiz grades answered question sets.
package quiz

import (
	"math"
	"math/rand"
	"sort"
	"strings"

	"studyassistant/internal/models"
)

// OptionLetter returns the letter label (A, B, ...) of option i.
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

// resolve maps a lone option letter to the option's text. Anything else is
// returned unchanged.
func resolve(value string, options []string) string {
	v := strings.TrimSpace(value)
	if len(v) == 1 && len(options) > 0 {
		idx := int(strings.ToUpper(v)[0]) - 'A'
		if idx >= 0 && idx < len(options) {
			return options[idx]
		}
	}
	return v
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsCorrect reports whether selected matches the question's answer, comparing
// case-insensitively after resolving option letters.
func IsCorrect(q models.Question, selected string) bool {
	if strings.TrimSpace(selected) == "" {
		return false
	}
	return normalize(resolve(selected, q.Options)) == normalize(resolve(q.Answer, q.Options))
}

// Grade scores answers against questions. Later answers for the same
// question replace earlier ones; out-of-range indexes are dropped.
// Unanswered questions count against the percentage.
func Grade(questions []models.Question, answers []models.UserAnswer, difficulty string) models.QuizResult {
	latest := make(map[int]string, len(answers))
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= len(questions) {
			continue
		}
		latest[a.QuestionIndex] = a.SelectedOption
	}

	indexes := make([]int, 0, len(latest))
	for idx := range latest {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	result := models.QuizResult{
		TotalQuestions: len(questions),
		Difficulty:     difficulty,
		Answers:        make([]models.AnswerReview, 0, len(indexes)),
	}
	for _, idx := range indexes {
		q := questions[idx]
		review := models.AnswerReview{
			Question:      q,
			UserAnswer:    latest[idx],
			CorrectAnswer: q.Answer,
			IsCorrect:     IsCorrect(q, latest[idx]),
			QuestionIndex: idx,
		}
		if review.IsCorrect {
			result.Score++
		}
		result.Answers = append(result.Answers, review)
	}
	result.Percentage = Percentage(result.Score, result.TotalQuestions)
	return result
}

// Percentage is score/total rounded to the nearest whole percent.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Feedback is the message shown next to a finished quiz.
func Feedback(percentage int) string {
	switch {
	case percentage >= 90:
		return "Outstanding! You're mastering TNPSC concepts!"
	case percentage >= 80:
		return "Excellent work! You're well prepared!"
	case percentage >= 70:
		return "Great job! Keep up the good work!"
	case percentage >= 60:
		return "Good effort! Review and improve!"
	case percentage >= 40:
		return "Fair performance. More practice needed!"
	default:
		return "Keep studying! You'll improve with practice!"
	}
}

// Shuffle returns a shuffled copy of questions using Fisher-Yates.
func Shuffle(questions []models.Question, rng *rand.Rand) []models.Question {
	shuffled := make([]models.Question, len(questions))
	copy(shuffled, questions)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
