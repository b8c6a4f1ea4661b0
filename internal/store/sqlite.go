package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	jurisdiction TEXT NOT NULL,
	question_ids TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	report_chars INTEGER NOT NULL DEFAULT 0,
	error        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_jurisdiction ON runs(jurisdiction);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, jurisdiction string, questionIDs []string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	idsJSON, err := json.Marshal(questionIDs)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal question ids")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, jurisdiction, question_ids, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, jurisdiction, string(idsJSON), string(RunStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{
		ID:           id,
		Jurisdiction: jurisdiction,
		QuestionIDs:  questionIDs,
		Status:       RunStatusRunning,
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status RunStatus, reportChars int, runErr string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, report_chars = ?, error = ?, completed_at = ? WHERE id = ?`,
		string(status), reportChars, nullString(runErr), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, jurisdiction, question_ids, status, report_chars, error, created_at, completed_at FROM runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, jurisdiction, question_ids, status, report_chars, error, created_at, completed_at FROM runs WHERE 1=1`
	var args []any

	if filter.Jurisdiction != "" {
		query += ` AND jurisdiction = ?`
		args = append(args, filter.Jurisdiction)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func scanRun(scan func(dest ...any) error) (*Run, error) {
	var (
		r           Run
		idsJSON     string
		errText     sql.NullString
		completedAt sql.NullTime
	)
	if err := scan(&r.ID, &r.Jurisdiction, &idsJSON, (*string)(&r.Status), &r.ReportChars, &errText, &r.CreatedAt, &completedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if err := json.Unmarshal([]byte(idsJSON), &r.QuestionIDs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal question ids")
	}
	if errText.Valid {
		r.Error = errText.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return &r, nil
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s %s not found", kind, id)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
