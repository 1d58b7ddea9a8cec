package report

import (
	"fmt"
	"strings"
	"time"

	"studyassistant/internal/models"
	"studyassistant/internal/quiz"
)

const (
	margin     = 20.0
	lineHeight = 7.0
)

// DateLayout formats every date printed in or on a report.
const DateLayout = "02/01/2006"

// canvas is the subset of *fpdf.Fpdf the layout draws with.
type canvas interface {
	AddPage()
	SetFont(family, style string, size float64)
	SplitText(txt string, w float64) []string
	Text(x, y float64, txt string)
}

type style string

const (
	normal style = ""
	bold   style = "B"
	italic style = "I"
)

// layout keeps the running cursor over a canvas. Every text block goes
// through write, which moves to a new page when the block does not fit.
type layout struct {
	c      canvas
	pageW  float64
	pageH  float64
	y      float64
	family string
	tr     func(string) string
	now    func() time.Time
}

func (l *layout) ensure(space float64) {
	if l.y > l.pageH-space {
		l.c.AddPage()
		l.y = margin
	}
}

func (l *layout) write(text string, x, size float64, st style) int {
	l.c.SetFont(l.family, string(st), size)
	lines := l.c.SplitText(l.tr(text), l.pageW-margin-x)
	if len(lines) == 0 {
		lines = []string{""}
	}

	space := float64(len(lines))*lineHeight + 10
	if space > l.pageH-2*margin {
		// Taller than a whole page: flow it line by line.
		for _, line := range lines {
			l.ensure(lineHeight + 10)
			l.c.Text(x, l.y, line)
			l.y += lineHeight
		}
		l.y += 5
		return len(lines)
	}

	l.ensure(space)
	for i, line := range lines {
		l.c.Text(x, l.y+float64(i)*lineHeight, line)
	}
	l.y += float64(len(lines))*lineHeight + 5
	return len(lines)
}

func (l *layout) title(text string) {
	l.c.SetFont(l.family, string(bold), 20)
	lines := l.c.SplitText(l.tr(text), l.pageW-2*margin)
	if len(lines) == 0 {
		lines = []string{""}
	}
	for i, line := range lines {
		l.c.Text(margin, l.y+float64(i)*lineHeight, line)
	}
	l.y += float64(len(lines)+1) * lineHeight
}

func (l *layout) render(doc Document) {
	l.y = margin
	l.title(doc.Title)

	switch doc.Kind {
	case KindKeyPoints, KindAnalysis:
		for i, a := range doc.Analyses {
			l.analysis(i, a)
		}
	case KindQuestions:
		for i, q := range doc.Questions {
			l.question(i, q)
		}
	case KindQuizResults:
		if doc.Quiz != nil {
			l.quizResults(*doc.Quiz)
		}
	}
}

func (l *layout) analysis(i int, a models.AnalysisResult) {
	l.ensure(50)
	name := a.FileName
	if name == "" {
		name = a.MainTopic
	}
	if name == "" {
		name = fmt.Sprintf("Analysis %d", i+1)
	}
	l.write("File: "+name, margin, 16, bold)

	if a.Summary != "" {
		l.write("Summary:", margin, 14, bold)
		l.write(a.Summary, margin, 12, normal)
		l.y += 5
	}

	if len(a.KeyPoints) > 0 {
		l.write("Key Study Points:", margin, 14, bold)
		for j, p := range a.KeyPoints {
			l.ensure(20)
			l.write(fmt.Sprintf("%d. %s", j+1, p), margin+10, 11, normal)
		}
		l.y += 5
	}

	if len(a.StudyPoints) > 0 {
		l.write("Detailed Study Points:", margin, 14, bold)
		for j, p := range a.StudyPoints {
			l.ensure(40)
			heading := fmt.Sprintf("%d. %s", j+1, p.Title)
			if p.TNPSCPriority != "" {
				heading += fmt.Sprintf(" [%s Priority]", strings.ToUpper(p.TNPSCPriority))
			}
			l.write(heading, margin+5, 12, bold)
			l.write(p.Description, margin+10, 11, normal)
			if p.TNPSCRelevance != "" {
				l.write("TNPSC Context: "+p.TNPSCRelevance, margin+10, 10, italic)
			}
			if p.MemoryTip != "" {
				l.write("Memory Tip: "+p.MemoryTip, margin+10, 10, italic)
			}
			l.y += 5
		}
	}

	if len(a.TNPSCCategories) > 0 {
		l.write("TNPSC Categories:", margin, 14, bold)
		l.write(strings.Join(a.TNPSCCategories, ", "), margin, 11, normal)
		l.y += 10
	}

	if a.TNPSCRelevance != "" {
		l.write("TNPSC Exam Relevance:", margin, 14, bold)
		l.write(a.TNPSCRelevance, margin, 11, normal)
		l.y += 15
	}
}

func (l *layout) question(i int, q models.Question) {
	l.ensure(80)
	difficulty := strings.ToUpper(q.Difficulty)
	if difficulty == "" {
		difficulty = "MEDIUM"
	}
	group := q.TNPSCGroup
	if group == "" {
		group = "TNPSC"
	}
	l.write(fmt.Sprintf("Question %d - %s Level (%s)", i+1, difficulty, group), margin, 14, bold)
	l.write(q.Question, margin, 12, normal)

	if len(q.Options) > 0 {
		l.y += 5
		for j, opt := range q.Options {
			l.write(fmt.Sprintf("%s. %s", quiz.OptionLetter(j), opt), margin+10, 11, normal)
		}
	}

	if q.Answer != "" {
		l.y += 5
		l.write("Correct Answer: "+q.Answer, margin, 12, bold)
	}
	if q.Explanation != "" {
		l.write("Explanation: "+q.Explanation, margin, 11, normal)
	}
	l.y += 10
}

// performanceMessage is the one-line verdict printed under the score.
func performanceMessage(percentage int) string {
	switch {
	case percentage >= 90:
		return "Outstanding performance! Excellent work!"
	case percentage >= 80:
		return "Great job! You're well prepared!"
	case percentage >= 70:
		return "Good work! Continue studying!"
	case percentage >= 60:
		return "Fair performance. More practice needed."
	default:
		return "Good effort! Keep practicing."
	}
}

func (l *layout) quizResults(r models.QuizResult) {
	l.write("Quiz Results Summary", margin, 18, bold)
	l.write(fmt.Sprintf("Score: %d/%d (%d%%)", r.Score, r.TotalQuestions, r.Percentage), margin, 14, bold)
	difficulty := r.Difficulty
	if difficulty == "" {
		difficulty = "Medium"
	}
	l.write("Difficulty Level: "+difficulty, margin, 12, normal)
	l.write("Date: "+l.now().Format(DateLayout), margin, 12, normal)
	l.y += 10

	l.write(performanceMessage(r.Percentage), margin, 12, italic)
	l.y += 10

	l.write("Detailed Answer Review:", margin, 16, bold)
	for i, a := range r.Answers {
		l.ensure(60)
		if a.IsCorrect {
			l.write(fmt.Sprintf("(+) Q%d: CORRECT", i+1), margin, 12, bold)
		} else {
			l.write(fmt.Sprintf("(-) Q%d: INCORRECT", i+1), margin, 12, bold)
		}
		l.write(a.Question.Question, margin, 11, normal)

		for j, opt := range a.Question.Options {
			st := normal
			if quiz.IsCorrect(a.Question, opt) || optionChosen(a.Question, opt, a.UserAnswer) {
				st = bold
			}
			l.write(fmt.Sprintf("%s. %s", quiz.OptionLetter(j), opt), margin+10, 10, st)
		}

		l.write("Your Answer: "+a.UserAnswer, margin+5, 11, normal)
		if !a.IsCorrect {
			l.write("Correct Answer: "+a.CorrectAnswer, margin+5, 11, bold)
		}
		if a.Question.Explanation != "" {
			l.write("Explanation: "+a.Question.Explanation, margin+5, 10, italic)
		}
		l.y += 10
	}
}

// optionChosen reports whether the user's answer selects opt.
func optionChosen(q models.Question, opt, userAnswer string) bool {
	probe := q
	probe.Answer = opt
	return quiz.IsCorrect(probe, userAnswer)
}
