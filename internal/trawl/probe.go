package trawl

import (
	"context"
	"fmt"
	"time"

	"trawler-engine/internal/config"
	"trawler-engine/internal/domain"
	"trawler-engine/internal/normalize"
	"trawler-engine/internal/source"
)

// ProbeResult is the outcome of a single diagnostic fetch against one source.
type ProbeResult struct {
	SourceID string           `json:"source_id"`
	OK       bool             `json:"ok"`
	Elapsed  time.Duration    `json:"elapsed_ms"`
	Postings []domain.Posting `json:"postings"`
	Error    string           `json:"error,omitempty"`
}

// TestSource performs one fetch against a single source without touching the
// seen store, the archive, or run progress. No retry either: a probe exists
// to show the raw outcome, warts included.
func (t *Trawler) TestSource(ctx context.Context, cfg config.Config, sourceID, term string) (ProbeResult, error) {
	res := ProbeResult{SourceID: sourceID}

	src, ok := t.Registry.Get(sourceID)
	if !ok {
		return res, fmt.Errorf("unknown source %q", sourceID)
	}

	q := source.Query{Term: term, Location: cfg.Search.Location}
	if q.Term == "" && len(cfg.Search.Terms) > 0 {
		q.Term = cfg.Search.Terms[0]
	}
	if q.Term == "" && !src.TermAgnostic {
		return res, fmt.Errorf("no search term given and none configured")
	}

	fctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.FetchTimeoutSecondsOrDefault())*time.Second)
	defer cancel()

	started := t.now()
	raws, err := src.Fetch(fctx, q)
	res.Elapsed = t.now().Sub(started) / time.Millisecond * time.Millisecond
	if err != nil {
		res.Error = err.Error()
		return res, nil
	}

	for _, raw := range raws {
		if p, ok := normalize.Posting(src.ID, src.BaseURL, raw); ok {
			res.Postings = append(res.Postings, p)
		}
	}
	res.OK = true
	return res, nil
}
