package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"entityblock/blocking"
)

// ErrRunNotFound прогон с указанным ID отсутствует
var ErrRunNotFound = errors.New("run not found")

// ResultsDB обертка для работы с БД результатов блокинга
type ResultsDB struct {
	conn *sql.DB
}

// NewResultsDB создает новое подключение к БД результатов
func NewResultsDB(path string) (*ResultsDB, error) {
	db, err := CreateResultsDatabase(path)
	if err != nil {
		return nil, err
	}
	return &ResultsDB{conn: db}, nil
}

// Close закрывает подключение
func (db *ResultsDB) Close() error {
	return db.conn.Close()
}

// GetConnection возвращает указатель на sql.DB для прямого доступа
func (db *ResultsDB) GetConnection() *sql.DB {
	return db.conn
}

// Run сохраненный прогон блокинга
type Run struct {
	ID               string          `json:"id"`
	ShingleLength    int             `json:"shingle_length"`
	BlockField       string          `json:"block_field"`
	ScoreField       string          `json:"score_field"`
	Sources          []string        `json:"sources"`
	Records          int             `json:"records"`
	DistinctShingles int             `json:"distinct_shingles"`
	CandidatePairs   int64           `json:"candidate_pairs"`
	Stats            *blocking.Stats `json:"stats,omitempty"`
	Duration         time.Duration   `json:"duration_ns"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewRun собирает запись о прогоне из результата конвейера
func NewRun(settings blocking.Settings, result *blocking.Result, sources []string) *Run {
	stats := result.Stats
	return &Run{
		ShingleLength:    settings.ShingleLength,
		BlockField:       settings.BlockField.String(),
		ScoreField:       settings.ScoreField.String(),
		Sources:          sources,
		Records:          stats.Records,
		DistinctShingles: stats.DistinctShingles,
		CandidatePairs:   stats.CandidatePairs,
		Stats:            &stats,
		Duration:         result.Duration,
	}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// CreateRun сохраняет прогон без пар; если ID пуст, генерируется UUID
func (db *ResultsDB) CreateRun(run *Run) error {
	return insertRun(db.conn, run)
}

// SaveRun сохраняет прогон и все его пары в одной транзакции.
// При ошибке в БД не остается ни прогона, ни части пар.
func (db *ResultsDB) SaveRun(run *Run, scores []blocking.CandidateScore) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRun(tx, run); err != nil {
		return err
	}
	if err := insertScores(tx, run.ID, scores); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

// SaveScores дописывает пары к существующему прогону одной транзакцией
func (db *ResultsDB) SaveScores(runID string, scores []blocking.CandidateScore) error {
	if _, err := db.GetRun(runID); err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertScores(tx, runID, scores); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRun(ex execer, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Sources == nil {
		run.Sources = []string{}
	}

	sourcesJSON, err := json.Marshal(run.Sources)
	if err != nil {
		return fmt.Errorf("failed to marshal run sources: %w", err)
	}
	statsJSON := []byte("{}")
	if run.Stats != nil {
		if statsJSON, err = json.Marshal(run.Stats); err != nil {
			return fmt.Errorf("failed to marshal run stats: %w", err)
		}
	}

	query := `
		INSERT INTO runs (id, shingle_length, block_field, score_field, sources, records,
			distinct_shingles, candidate_pairs, stats, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	run.CreatedAt = time.Now().UTC().Truncate(time.Second)
	_, err = ex.Exec(query,
		run.ID,
		run.ShingleLength,
		run.BlockField,
		run.ScoreField,
		string(sourcesJSON),
		run.Records,
		run.DistinctShingles,
		run.CandidatePairs,
		string(statsJSON),
		run.Duration.Milliseconds(),
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func insertScores(tx *sql.Tx, runID string, scores []blocking.CandidateScore) error {
	if len(scores) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO candidate_scores (run_id, block_key, id1, id2, score) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, s := range scores {
		if _, err := stmt.Exec(runID, s.Key, s.ID1, s.ID2, s.Score); err != nil {
			return fmt.Errorf("failed to insert score %d (%s, %s): %w", i, s.ID1, s.ID2, err)
		}
	}
	return nil
}

const runColumns = `id, shingle_length, block_field, score_field, sources, records,
	distinct_shingles, candidate_pairs, stats, duration_ms, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var sourcesJSON, statsJSON string
	var durationMS int64

	err := row.Scan(
		&run.ID,
		&run.ShingleLength,
		&run.BlockField,
		&run.ScoreField,
		&sourcesJSON,
		&run.Records,
		&run.DistinctShingles,
		&run.CandidatePairs,
		&statsJSON,
		&durationMS,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(sourcesJSON), &run.Sources); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run sources: %w", err)
	}
	if statsJSON != "" && statsJSON != "{}" {
		run.Stats = &blocking.Stats{}
		if err := json.Unmarshal([]byte(statsJSON), run.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run stats: %w", err)
		}
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// GetRun получает прогон по ID
func (db *ResultsDB) GetRun(id string) (*Run, error) {
	row := db.conn.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns возвращает прогоны, начиная с самых новых
func (db *ResultsDB) ListRuns(limit, offset int) ([]*Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.conn.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		limit, max(offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListScores возвращает кандидатные пары прогона в порядке вставки
func (db *ResultsDB) ListScores(runID string, limit, offset int) ([]blocking.CandidateScore, int, error) {
	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM candidate_scores WHERE run_id = ?`, runID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count scores: %w", err)
	}
	if limit <= 0 {
		limit = 1000
	}

	rows, err := db.conn.Query(
		`SELECT block_key, id1, id2, score FROM candidate_scores WHERE run_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		runID, limit, max(offset, 0),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	scores := make([]blocking.CandidateScore, 0, min(limit, total))
	for rows.Next() {
		var s blocking.CandidateScore
		if err := rows.Scan(&s.Key, &s.ID1, &s.ID2, &s.Score); err != nil {
			return nil, 0, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, total, rows.Err()
}

// ForEachScore перебирает все пары прогона в порядке вставки без загрузки в память.
// Ошибка fn прерывает перебор и возвращается вызывающему.
func (db *ResultsDB) ForEachScore(runID string, fn func(blocking.CandidateScore) error) error {
	rows, err := db.conn.Query(
		`SELECT block_key, id1, id2, score FROM candidate_scores WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s blocking.CandidateScore
		if err := rows.Scan(&s.Key, &s.ID1, &s.ID2, &s.Score); err != nil {
			return fmt.Errorf("failed to scan score: %w", err)
		}
		if err := fn(s); err != nil {
			return err
		}
	}
	return rows.Err()
}

// DeleteRun удаляет прогон вместе с его парами
func (db *ResultsDB) DeleteRun(id string) error {
	result, err := db.conn.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}
