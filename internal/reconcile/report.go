package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// в отчёт попадают только первые maxReportedErrors сообщений,
// счётчик ошибок при этом считает все
const maxReportedErrors = 10

type Report struct {
	RunID       string    `json:"run_id"`
	SyncedCount int       `json:"synced_count"`
	ErrorCount  int       `json:"error_count"`
	Errors      []string  `json:"errors"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
}

func newReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Errors:    []string{},
		StartedAt: time.Now().UTC(),
	}
}

func (r *Report) addError(msg string) {
	r.ErrorCount++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, msg)
	}
}

func (r *Report) finish() {
	r.DurationMS = time.Since(r.StartedAt).Milliseconds()
}
