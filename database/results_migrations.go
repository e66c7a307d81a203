package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// InitResultsSchema создает таблицы прогонов блокинга и кандидатных пар
func InitResultsSchema(db *sql.DB) error {
	schema := `
	-- Прогоны блокинга
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		shingle_length INTEGER NOT NULL,
		block_field TEXT NOT NULL,
		score_field TEXT NOT NULL,
		sources TEXT NOT NULL DEFAULT '[]',  -- JSON массив имен файлов
		records INTEGER NOT NULL DEFAULT 0,
		distinct_shingles INTEGER NOT NULL DEFAULT 0,
		candidate_pairs INTEGER NOT NULL DEFAULT 0,
		stats TEXT NOT NULL DEFAULT '{}',    -- JSON blocking.Stats
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Кандидатные пары; одна пара может встречаться в нескольких блоках
	CREATE TABLE IF NOT EXISTS candidate_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		block_key TEXT NOT NULL,
		id1 TEXT NOT NULL,
		id2 TEXT NOT NULL,
		score REAL NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_candidate_scores_run_id ON candidate_scores(run_id);
	CREATE INDEX IF NOT EXISTS idx_candidate_scores_pair ON candidate_scores(run_id, id1, id2);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create results schema: %w", err)
	}
	return nil
}

// CreateResultsDatabase создает или открывает БД результатов
func CreateResultsDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create results database directory: %w", err)
		}
	}

	// foreign_keys включается на каждом соединении пула через DSN
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open results database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}

	if err := InitResultsSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize results schema: %w", err)
	}

	return db, nil
}
