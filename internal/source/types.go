// Package source defines the per-board fetch contract and the registry the
// orchestrator drives. A board never reaches into storage or scoring; it only
// turns (term, location) into raw postings.
package source

import (
	"context"
	"time"
)

// UserAgent is sent on every outbound request from every adapter.
const UserAgent = "Trawler/1.0 (+local)"

// Query is one (search term, location) pair.
type Query struct {
	Term     string
	Location string
	// Limit caps postings per strategy; 0 means the adapter default.
	Limit int
}

// RawPosting is an adapter's output before normalization. Fields are whatever
// the board gave us; the normalizer makes them canonical.
type RawPosting struct {
	ExternalID  string // board-native id, "" when the board has none
	Title       string
	Company     string
	Location    string
	Snippet     string
	Description string
	URL         string
	PostedAt    *time.Time
}

// Fetcher is a single fetch strategy for one board (its API, or its search
// page). Implementations must bound every network call by ctx and must not
// hold state across calls.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]RawPosting, error)
}
