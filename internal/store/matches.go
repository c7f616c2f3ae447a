package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trawler-engine/internal/domain"
)

// InsertMatchIgnore records a match; the unique index on (source_id,
// external_id) makes a replayed identity a no-op. Returns whether a row was
// actually added.
func InsertMatchIgnore(ctx context.Context, db *sql.DB, runID string, m domain.Match, foundAt time.Time) (added bool, err error) {
	breakdownB, _ := json.Marshal(m.Breakdown)

	postedAt := ""
	if m.Posting.PostedAt != nil && !m.Posting.PostedAt.IsZero() {
		postedAt = m.Posting.PostedAt.UTC().Format(time.RFC3339)
	}

	_, err = db.ExecContext(ctx, `
INSERT OR IGNORE INTO matches (run_id, source_id, external_id, title, company, location, description, url, posted_at, score, breakdown, found_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		runID,
		m.Posting.SourceID,
		m.Posting.ExternalID,
		m.Posting.Title,
		m.Posting.Company,
		m.Posting.Location,
		m.Posting.Description,
		m.Posting.URL,
		postedAt,
		m.Score,
		string(breakdownB),
		foundAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert match: %w", err)
	}

	var changes int
	if e := db.QueryRowContext(ctx, `SELECT changes();`).Scan(&changes); e == nil {
		return changes > 0, nil
	}
	return true, nil
}

type ListMatchesOpts struct {
	RunID string // "" means all runs
	Limit int
}

func ListMatches(ctx context.Context, db *sql.DB, opts ListMatchesOpts) ([]domain.Match, error) {
	if opts.Limit <= 0 || opts.Limit > 2000 {
		opts.Limit = 500
	}

	where := ""
	args := []any{}
	if opts.RunID != "" {
		where = "WHERE run_id = ?"
		args = append(args, opts.RunID)
	}
	args = append(args, opts.Limit)

	query := fmt.Sprintf(`
SELECT source_id, external_id, title, company, location, description, url, posted_at, score, breakdown
FROM matches
%s
ORDER BY score DESC, found_at DESC
LIMIT ?;
`, where)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Match
	for rows.Next() {
		var m domain.Match
		var postedAt, breakdownJSON string
		if err := rows.Scan(
			&m.Posting.SourceID,
			&m.Posting.ExternalID,
			&m.Posting.Title,
			&m.Posting.Company,
			&m.Posting.Location,
			&m.Posting.Description,
			&m.Posting.URL,
			&postedAt,
			&m.Score,
			&breakdownJSON,
		); err != nil {
			return nil, err
		}
		if postedAt != "" {
			if t, err := time.Parse(time.RFC3339, postedAt); err == nil {
				m.Posting.PostedAt = &t
			}
		}
		_ = json.Unmarshal([]byte(breakdownJSON), &m.Breakdown)
		out = append(out, m)
	}
	return out, rows.Err()
}

// LatestRunID returns the most recently started run, or "" when none exist.
func LatestRunID(ctx context.Context, db *sql.DB) (string, error) {
	var id string
	err := db.QueryRowContext(ctx, `
SELECT id FROM runs ORDER BY started_at DESC LIMIT 1;`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return id, err
}

func InsertRun(ctx context.Context, db *sql.DB, runID string, startedAt time.Time) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO runs (id, started_at, status) VALUES (?, ?, 'running');`,
		runID, startedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func FinishRun(ctx context.Context, db *sql.DB, runID, status string, matches, softFailures int, finishedAt time.Time) error {
	_, err := db.ExecContext(ctx, `
UPDATE runs SET finished_at = ?, status = ?, matches = ?, soft_failures = ? WHERE id = ?;`,
		finishedAt.UTC().Format(time.RFC3339), status, matches, softFailures, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}
