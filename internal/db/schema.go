package db

var schema = []string{
	`CREATE TABLE IF NOT EXISTS study_history (
		id              TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL,
		type            TEXT NOT NULL,
		file_name       TEXT NOT NULL DEFAULT '',
		difficulty      TEXT NOT NULL DEFAULT '',
		language        TEXT NOT NULL DEFAULT '',
		score           INTEGER,
		total_questions INTEGER,
		percentage      INTEGER,
		data            JSONB NOT NULL,
		file_urls       JSONB NOT NULL DEFAULT '[]'::jsonb,
		analysis_data   JSONB,
		quiz_data       JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS study_history_user_created_idx
		ON study_history (user_id, created_at DESC)`,
}
