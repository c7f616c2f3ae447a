package trawl

import (
	"sync"
	"time"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Snapshot is the externally visible progress of one run. Counters only ever
// go up while the run is live.
type Snapshot struct {
	Status        Status    `json:"status"`
	RunID         string    `json:"run_id,omitempty"`
	SourcesTotal  int       `json:"sources_total"`
	SourcesDone   int       `json:"sources_done"`
	CurrentSource string    `json:"current_source,omitempty"`
	JobsFound     int       `json:"jobs_found"`
	MatchesFound  int       `json:"matches_found"`
	SoftFailures  int       `json:"soft_failures"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	FinishedAt    time.Time `json:"finished_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// Progress is an explicitly owned handle injected into the trawler, so two
// logical runs (or two tests) never share hidden state. Safe to poll while a
// run is live.
type Progress struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewProgress() *Progress {
	return &Progress{snap: Snapshot{Status: StatusIdle}}
}

func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

func (p *Progress) start(runID string, total int, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = Snapshot{
		Status:       StatusRunning,
		RunID:        runID,
		SourcesTotal: total,
		StartedAt:    at,
	}
}

func (p *Progress) setCurrent(sourceID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.CurrentSource = sourceID
}

func (p *Progress) sourceDone(jobs int, softFailure bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.SourcesDone++
	p.snap.JobsFound += jobs
	if softFailure {
		p.snap.SoftFailures++
	}
}

func (p *Progress) matchFound() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.MatchesFound++
}

func (p *Progress) finish(status Status, errMsg string, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap.Status = status
	p.snap.CurrentSource = ""
	p.snap.FinishedAt = at
	p.snap.LastError = errMsg
}
