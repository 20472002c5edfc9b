package domain

import (
	"errors"
	"time"
)

var ErrMissingRunID = errors.New("ingest run requires an id")

// IngestRun is the persisted summary of one loader execution: how many
// records were loaded and skipped, how many assets were merged and scored.
// No partial data is presented as complete; a run with a non-empty Error
// did not finish all passes.
type IngestRun struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Files      int       `json:"files"`
	Loaded     int       `json:"loaded"`
	Skipped    int       `json:"skipped"`
	Merged     int       `json:"merged"`
	Scored     int       `json:"scored"`
	Error      string    `json:"error,omitempty"`
}

// NewIngestRun creates a run summary shell; counters are filled as the
// passes complete.
func NewIngestRun(id string) (*IngestRun, error) {
	if id == "" {
		return nil, ErrMissingRunID
	}
	return &IngestRun{
		ID:        id,
		StartedAt: time.Now().UTC(),
	}, nil
}

// Finish stamps the completion time, recording err when the run aborted.
func (r *IngestRun) Finish(err error) {
	r.FinishedAt = time.Now().UTC()
	if err != nil {
		r.Error = err.Error()
	}
}

// StoreStats holds the aggregate totals exposed on the dashboard.
type StoreStats struct {
	Assets          int64 `json:"assets"`
	Vulnerabilities int64 `json:"vulnerabilities"`
	KEVListed       int64 `json:"kev_listed"`
	Exposed         int64 `json:"exposed"`
}
