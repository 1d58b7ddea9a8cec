package history

import (
	"context"
	"errors"
	"fmt"

	"studyassistant/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const pgColumns = `id, user_id, created_at, type, file_name, difficulty, language,
	score, total_questions, percentage, data, file_urls, analysis_data, quiz_data`

// PostgresStore keeps records in the study_history table.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(d *db.DB) *PostgresStore {
	return &PostgresStore{db: d}
}

func (s *PostgresStore) Create(ctx context.Context, rec *Record) (string, error) {
	cols, err := encodeColumns(rec)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.Pool.Exec(ctx, `INSERT INTO study_history (`+pgColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		id, rec.UserID, rec.Timestamp, string(rec.Type), rec.FileName, rec.Difficulty, rec.Language,
		rec.Score, rec.TotalQuestions, rec.Percentage, []byte(rec.Data), cols.fileURLs, cols.analysis, cols.quiz,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert study history: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT `+pgColumns+` FROM study_history
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query study history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read study history: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.Pool.QueryRow(ctx, `SELECT `+pgColumns+` FROM study_history WHERE id = $1`, id)
	rec, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM study_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete study history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgres(row pgx.Row) (*Record, error) {
	var (
		rec  Record
		typ  string
		data []byte
		cols jsonColumns
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Timestamp, &typ, &rec.FileName, &rec.Difficulty, &rec.Language,
		&rec.Score, &rec.TotalQuestions, &rec.Percentage, &data, &cols.fileURLs, &cols.analysis, &cols.quiz)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan study history: %w", err)
	}
	rec.Type = Type(typ)
	rec.Data = data
	if err := cols.decodeInto(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
