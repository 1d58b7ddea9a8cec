package history

import (
	"encoding/json"
	"fmt"

	"studyassistant/internal/models"
)

// jsonColumns are the parts of a record the SQL stores keep as JSON text.
type jsonColumns struct {
	fileURLs []byte
	analysis []byte
	quiz     []byte
}

func encodeColumns(rec *Record) (jsonColumns, error) {
	var cols jsonColumns
	var err error
	urls := rec.FileURLs
	if urls == nil {
		urls = []string{}
	}
	if cols.fileURLs, err = json.Marshal(urls); err != nil {
		return cols, fmt.Errorf("failed to encode file urls: %w", err)
	}
	if rec.AnalysisData != nil {
		if cols.analysis, err = json.Marshal(rec.AnalysisData); err != nil {
			return cols, fmt.Errorf("failed to encode analysis data: %w", err)
		}
	}
	if rec.QuizData != nil {
		if cols.quiz, err = json.Marshal(rec.QuizData); err != nil {
			return cols, fmt.Errorf("failed to encode quiz data: %w", err)
		}
	}
	return cols, nil
}

func (cols jsonColumns) decodeInto(rec *Record) error {
	rec.FileURLs = []string{}
	if len(cols.fileURLs) > 0 {
		if err := json.Unmarshal(cols.fileURLs, &rec.FileURLs); err != nil {
			return fmt.Errorf("failed to decode file urls of %s: %w", rec.ID, err)
		}
	}
	if len(cols.analysis) > 0 {
		rec.AnalysisData = new(models.AnalysisResult)
		if err := json.Unmarshal(cols.analysis, rec.AnalysisData); err != nil {
			return fmt.Errorf("failed to decode analysis data of %s: %w", rec.ID, err)
		}
	}
	if len(cols.quiz) > 0 {
		rec.QuizData = new(QuizData)
		if err := json.Unmarshal(cols.quiz, rec.QuizData); err != nil {
			return fmt.Errorf("failed to decode quiz data of %s: %w", rec.ID, err)
		}
	}
	return nil
}

func intPtr(v int64, valid bool) *int {
	if !valid {
		return nil
	}
	i := int(v)
	return &i
}
