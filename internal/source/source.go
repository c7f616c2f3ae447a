package source

import (
	"context"
	"fmt"
	"log"
)

// Source is one external board with its strategies in preference order:
// structured API first when configured, page scrape after.
type Source struct {
	ID string
	// BaseURL resolves relative hrefs coming out of scrape strategies.
	BaseURL    string
	Strategies []Fetcher
	// TermAgnostic sources (the alert mailbox) return everything they have
	// regardless of the query term, so the orchestrator asks them only once
	// per run instead of once per term.
	TermAgnostic bool
}

// Fetch tries strategies in order until one yields a non-empty, non-error
// result or the list runs out. A failed or empty strategy is logged and the
// next one gets its turn; the last error is returned only when every strategy
// came up empty, so the caller can classify it.
func (s *Source) Fetch(ctx context.Context, q Query) ([]RawPosting, error) {
	if len(s.Strategies) == 0 {
		return nil, fmt.Errorf("source %s has no strategies", s.ID)
	}

	var lastErr error
	for _, f := range s.Strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raws, err := f.Fetch(ctx, q)
		if err != nil {
			log.Printf("[%s] strategy %s failed term=%q loc=%q err=%v",
				s.ID, f.Name(), q.Term, q.Location, err)
			lastErr = err
			continue
		}
		if len(raws) == 0 {
			log.Printf("[%s] strategy %s empty term=%q loc=%q", s.ID, f.Name(), q.Term, q.Location)
			continue
		}
		return raws, nil
	}
	return nil, lastErr
}
