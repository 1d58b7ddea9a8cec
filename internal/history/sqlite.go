package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS study_history (
	id              TEXT PRIMARY KEY,
	user_id         TEXT NOT NULL,
	created_at      INTEGER NOT NULL,
	type            TEXT NOT NULL,
	file_name       TEXT NOT NULL DEFAULT '',
	difficulty      TEXT NOT NULL DEFAULT '',
	language        TEXT NOT NULL DEFAULT '',
	score           INTEGER,
	total_questions INTEGER,
	percentage      INTEGER,
	data            TEXT NOT NULL,
	file_urls       TEXT NOT NULL DEFAULT '[]',
	analysis_data   TEXT,
	quiz_data       TEXT
);
CREATE INDEX IF NOT EXISTS study_history_user_created_idx ON study_history (user_id, created_at DESC);
`

const sqliteColumns = `id, user_id, created_at, type, file_name, difficulty, language,
	score, total_questions, percentage, data, file_urls, analysis_data, quiz_data`

// SQLiteStore keeps records in a local SQLite file. Timestamps are stored
// as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: conn}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullText(b []byte) sql.NullString {
	if b == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func (s *SQLiteStore) Create(ctx context.Context, rec *Record) (string, error) {
	cols, err := encodeColumns(rec)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO study_history (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.UserID, rec.Timestamp.UnixMilli(), string(rec.Type), rec.FileName, rec.Difficulty, rec.Language,
		nullInt(rec.Score), nullInt(rec.TotalQuestions), nullInt(rec.Percentage),
		string(rec.Data), string(cols.fileURLs), nullText(cols.analysis), nullText(cols.quiz),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert study history: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM study_history
		WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query study history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanSQLite(rows)
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

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM study_history WHERE id = ?`, id)
	rec, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM study_history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete study history: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row scanner) (*Record, error) {
	var (
		rec                      Record
		created                  int64
		typ, data, urls          string
		score, total, percentage sql.NullInt64
		analysis, quiz           sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.UserID, &created, &typ, &rec.FileName, &rec.Difficulty, &rec.Language,
		&score, &total, &percentage, &data, &urls, &analysis, &quiz)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan study history: %w", err)
	}
	rec.Timestamp = time.UnixMilli(created)
	rec.Type = Type(typ)
	rec.Data = []byte(data)
	rec.Score = intPtr(score.Int64, score.Valid)
	rec.TotalQuestions = intPtr(total.Int64, total.Valid)
	rec.Percentage = intPtr(percentage.Int64, percentage.Valid)

	cols := jsonColumns{fileURLs: []byte(urls)}
	if analysis.Valid {
		cols.analysis = []byte(analysis.String)
	}
	if quiz.Valid {
		cols.quiz = []byte(quiz.String)
	}
	if err := cols.decodeInto(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
