package store

import (
	"context"
	"time"
)

// RunStatus tracks the lifecycle of one research run in the audit log.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one audit-log entry. Only run metadata is recorded; report
// content itself is never persisted.
type Run struct {
	ID           string     `json:"id"`
	Jurisdiction string     `json:"jurisdiction"`
	QuestionIDs  []string   `json:"question_ids"`
	Status       RunStatus  `json:"status"`
	ReportChars  int        `json:"report_chars,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunFilter specifies criteria for listing audit entries.
type RunFilter struct {
	Jurisdiction string    `json:"jurisdiction,omitempty"`
	Status       RunStatus `json:"status,omitempty"`
	Limit        int       `json:"limit,omitempty"`
	Offset       int       `json:"offset,omitempty"`
}

// Store is the audit-log persistence interface.
type Store interface {
	CreateRun(ctx context.Context, jurisdiction string, questionIDs []string) (*Run, error)
	CompleteRun(ctx context.Context, runID string, status RunStatus, reportChars int, runErr string) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
