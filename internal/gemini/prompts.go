package gemini

import (
	"fmt"

	"studyassistant/internal/models"
)

const analysisSchema = `{
  "keyPoints": ["short fact worth memorising", "..."],
  "summary": "two or three sentence summary",
  "tnpscRelevance": "how this material matters for the TNPSC exams",
  "studyPoints": [
    {
      "title": "point title",
      "description": "what to know",
      "importance": "high | medium | low",
      "tnpscRelevance": "exam context",
      "tnpscPriority": "high | medium | low",
      "memoryTip": "mnemonic or memory aid"
    }
  ],
  "tnpscCategories": ["History", "Polity", "..."]
}`

const pageSchema = `{
  "keyPoints": ["..."],
  "studyPoints": [{"title": "", "description": "", "importance": "high | medium | low", "tnpscRelevance": "", "tnpscPriority": "", "memoryTip": ""}],
  "summary": "summary of this page",
  "tnpscRelevance": "exam relevance of this page"
}`

const questionSchema = `{
  "questions": [
    {
      "question": "question text",
      "options": ["option A", "option B", "option C", "option D"],
      "answer": "the exact text of the correct option",
      "type": "mcq | assertion_reason",
      "difficulty": "easy | medium | hard | very-hard",
      "tnpscGroup": "Group 1 | Group 2 | Group 4",
      "explanation": "why the answer is correct"
    }
  ],
  "summary": "what the question set covers",
  "keyPoints": ["..."],
  "difficulty": "easy | medium | hard | very-hard"
}`

func languageInstruction(lang models.Language) string {
	if lang == models.LanguageTamil {
		return "Write every value in Tamil (தமிழ்). Keep the JSON keys in English."
	}
	return "Write every value in English."
}

func analysisPrompt(source string, lang models.Language) string {
	return fmt.Sprintf(`You are an expert TNPSC (Tamil Nadu Public Service Commission) exam tutor.
Study %s and extract the material a candidate must remember.

1. List the key points as short, memorable facts.
2. Give detailed study points with importance, exam relevance, priority and a memory tip.
3. Name the TNPSC syllabus categories the material belongs to.
4. %s

Respond with a single JSON object with exactly this structure:
%s`, source, languageInstruction(lang), analysisSchema)
}

func pagePrompt(page int, lang models.Language) string {
	return fmt.Sprintf(`You are an expert TNPSC exam tutor. Analyse page %d of a study document.
Extract the key points and study points found on this page only. %s

Respond with a single JSON object with exactly this structure:
%s`, page, languageInstruction(lang), pageSchema)
}

func difficultyGuide(d models.Difficulty) string {
	switch d {
	case models.DifficultyEasy:
		return "direct factual recall"
	case models.DifficultyHard:
		return "analysis and connections between facts"
	case models.DifficultyVeryHard:
		return "multi-step reasoning, assertion-reason pairs and close distractors"
	default:
		return "understanding of concepts beyond plain recall"
	}
}

func questionPrompt(d models.Difficulty, lang models.Language) string {
	return fmt.Sprintf(`You are setting a TNPSC practice test from the study material below.
Write 10 questions at %s difficulty, testing %s.

1. Most questions are multiple choice with exactly 4 options and one correct answer.
2. Include a few assertion-reason questions (type "assertion_reason") in TNPSC style.
3. "answer" must repeat the correct option text exactly.
4. Give a short explanation for every answer.
5. %s

Respond with a single JSON object with exactly this structure:
%s`, d, difficultyGuide(d), languageInstruction(lang), questionSchema)
}

type materialSummary struct {
	Topic       string              `json:"topic,omitempty"`
	Summary     string              `json:"summary"`
	KeyPoints   []string            `json:"keyPoints"`
	StudyPoints []models.StudyPoint `json:"studyPoints,omitempty"`
}

func questionMaterial(analyses []models.AnalysisResult) []materialSummary {
	out := make([]materialSummary, 0, len(analyses))
	for _, a := range analyses {
		out = append(out, materialSummary{
			Topic:       a.MainTopic,
			Summary:     a.Summary,
			KeyPoints:   a.KeyPoints,
			StudyPoints: a.StudyPoints,
		})
	}
	return out
}
