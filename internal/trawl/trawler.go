// Package trawl runs one full sweep across every enabled source: fetch,
// normalize, dedup against the seen store, score, archive. One run at a time;
// a failing source degrades the run, it never aborts it.
package trawl

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"trawler-engine/internal/config"
	"trawler-engine/internal/domain"
	"trawler-engine/internal/events"
	"trawler-engine/internal/match"
	"trawler-engine/internal/normalize"
	"trawler-engine/internal/profile"
	"trawler-engine/internal/seen"
	"trawler-engine/internal/source"
	"trawler-engine/internal/store"
)

var (
	ErrAlreadyRunning = errors.New("a trawl is already running")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Trawler owns one sweep at a time. DB and Hub are optional; Seen, Registry
// and Progress are not.
type Trawler struct {
	Registry *source.Registry
	Seen     *seen.Store
	DB       *store.DB
	Hub      *events.Hub
	Progress *Progress

	// Creds resolves API credentials missing from the config file; nil means
	// file-borne credentials only.
	Creds config.CredentialLookup

	// Now is a test hook; nil means time.Now.
	Now func() time.Time

	running atomic.Bool
}

func (t *Trawler) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Running reports whether a sweep is currently live.
func (t *Trawler) Running() bool { return t.running.Load() }

type task struct {
	src *source.Source
	q   source.Query
}

// Run executes one sweep and returns this run's new matches, best first.
// A second concurrent call gets ErrAlreadyRunning. Cancelling ctx stops the
// run cleanly: everything deduped so far is flushed, and matches found so far
// are returned alongside the context error.
func (t *Trawler) Run(ctx context.Context, cfg config.Config, prof profile.Profile) ([]domain.Match, error) {
	if !t.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer t.running.Store(false)
	return t.run(ctx, cfg, prof)
}

// RunAsync claims the single-run slot before returning and executes the sweep
// in the background. Two racing callers can't both be told their run started:
// the loser gets ErrAlreadyRunning synchronously.
func (t *Trawler) RunAsync(ctx context.Context, cfg config.Config, prof profile.Profile) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	go func() {
		defer t.running.Store(false)
		if _, err := t.run(ctx, cfg, prof); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[trawl] background run: %v", err)
		}
	}()
	return nil
}

func (t *Trawler) run(ctx context.Context, cfg config.Config, prof profile.Profile) ([]domain.Match, error) {
	cfg, res := config.NormalizeAndValidate(cfg, t.Creds)
	if !res.OK() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(res.Errors, "; "))
	}

	startedAt := t.now()
	runID := "run-" + startedAt.UTC().Format("20060102-150405")

	tasks, missing := t.buildTasks(cfg)
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: no enabled source is registered", ErrInvalidConfig)
	}

	if t.DB != nil {
		if err := store.InsertRun(ctx, t.DB.Pool, runID, startedAt); err != nil {
			t.Progress.finish(StatusFailed, err.Error(), t.now())
			return nil, err
		}
	}

	// missing ids count toward the total too, or sources_done would tick past
	// sources_total when a configured source has no registered adapter
	t.Progress.start(runID, len(tasks)+len(missing), startedAt)
	for range missing {
		t.Progress.sourceDone(0, true)
	}
	t.publish(events.TypeRunStarted, map[string]any{"run_id": runID, "sources": len(tasks)})

	var deadline time.Time
	if cfg.Trawl.RunBudgetSeconds > 0 {
		deadline = startedAt.Add(time.Duration(cfg.Trawl.RunBudgetSeconds) * time.Second)
	}

	scorer := match.NewScorer(cfg.WeightsOrDefault())

	var (
		mu         sync.Mutex
		found      []domain.Match
		storageErr error
	)

	g := new(errgroup.Group)
	g.SetLimit(cfg.MaxParallelOrDefault())

	for _, tk := range tasks {
		if ctx.Err() != nil {
			break
		}
		if !deadline.IsZero() && t.now().After(deadline) {
			log.Printf("[trawl] run budget exhausted, %s term=%q not started", tk.src.ID, tk.q.Term)
			t.Progress.sourceDone(0, true)
			continue
		}

		tk := tk
		g.Go(func() error {
			t.runTask(ctx, tk, cfg, prof, scorer, runID, func(m domain.Match, err error) {
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if storageErr == nil {
						storageErr = err
					}
					return
				}
				found = append(found, m)
			})
			return nil
		})
	}
	_ = g.Wait()

	flushErr := t.Seen.Flush()

	sort.Slice(found, func(i, j int) bool {
		if found[i].Score != found[j].Score {
			return found[i].Score > found[j].Score
		}
		return found[i].Posting.Key() < found[j].Posting.Key()
	})

	snap := t.Progress.Snapshot()
	finishedAt := t.now()

	status := StatusCompleted
	var runErr error
	switch {
	case storageErr != nil:
		status, runErr = StatusFailed, storageErr
	case flushErr != nil:
		status, runErr = StatusFailed, flushErr
	case ctx.Err() != nil:
		status, runErr = StatusCancelled, ctx.Err()
	}

	if t.DB != nil {
		// finishing the bookkeeping row must not hang on a cancelled ctx
		fctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := store.FinishRun(fctx, t.DB.Pool, runID, string(status), len(found), snap.SoftFailures, finishedAt); err != nil {
			log.Printf("[trawl] finish run record: %v", err)
		}
		cancel()
		if status == StatusCompleted {
			if n, err := store.CleanupOldMatches(t.DB.Pool); err != nil {
				log.Printf("[trawl] cleanup old matches: %v", err)
			} else if n > 0 {
				log.Printf("[trawl] pruned %d stale archived matches", n)
			}
		}
	}

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	t.Progress.finish(status, errMsg, finishedAt)

	evt := events.TypeRunCompleted
	if status == StatusFailed {
		evt = events.TypeRunFailed
	}
	t.publish(evt, map[string]any{
		"run_id":        runID,
		"status":        status,
		"matches":       len(found),
		"jobs_found":    snap.JobsFound,
		"soft_failures": snap.SoftFailures,
	})

	log.Printf("[trawl] %s %s: %d matches, %d jobs seen, %d soft failures",
		runID, status, len(found), snap.JobsFound, snap.SoftFailures)
	return found, runErr
}

// buildTasks expands enabled sources into (source, query) work items: one per
// search term, or a single item for term-agnostic sources. Enabled ids with no
// registered adapter come back in missing.
func (t *Trawler) buildTasks(cfg config.Config) (tasks []task, missing []string) {
	ids := cfg.EnabledSources()
	if cfg.Email.Enabled {
		ids = append(ids, "emailalert")
	}
	sort.Strings(ids)

	for _, id := range ids {
		src, ok := t.Registry.Get(id)
		if !ok {
			log.Printf("[trawl] source %q enabled but not registered", id)
			missing = append(missing, id)
			continue
		}
		if src.TermAgnostic {
			tasks = append(tasks, task{src: src, q: source.Query{Location: cfg.Search.Location}})
			continue
		}
		for _, term := range cfg.Search.Terms {
			tasks = append(tasks, task{src: src, q: source.Query{Term: term, Location: cfg.Search.Location}})
		}
	}
	return tasks, missing
}

// runTask fetches one (source, term) pair and feeds the pipeline. Any failure
// here is a soft failure: logged, counted, contained.
func (t *Trawler) runTask(ctx context.Context, tk task, cfg config.Config, prof profile.Profile, scorer match.Scorer, runID string, sink func(domain.Match, error)) {
	t.Progress.setCurrent(tk.src.ID)

	raws, err := t.fetchWithRetry(ctx, tk, cfg)
	if err != nil {
		log.Printf("[trawl] %s term=%q failed: %v", tk.src.ID, tk.q.Term, err)
		t.Progress.sourceDone(0, true)
		t.publish(events.TypeSourceDone, map[string]any{
			"source": tk.src.ID, "term": tk.q.Term, "error": err.Error(),
		})
		return
	}

	matched := 0
	for _, raw := range raws {
		p, ok := normalize.Posting(tk.src.ID, tk.src.BaseURL, raw)
		if !ok {
			continue
		}
		if !locationAllowed(p, cfg.Filters.LocationsAllow, cfg.Filters.LocationsBlock) {
			t.Seen.Record(p.SourceID, p.ExternalID, t.now())
			continue
		}
		if !t.Seen.CheckAndRecord(p.SourceID, p.ExternalID, t.now()) {
			continue
		}
		score, bd := scorer.Score(p, prof)
		if score < cfg.Scoring.MinScore {
			continue
		}
		m := domain.Match{Posting: p, Score: score, Breakdown: bd}

		if t.DB != nil {
			if _, err := store.InsertMatchIgnore(ctx, t.DB.Pool, runID, m, t.now()); err != nil {
				// a cancelled ctx fails the insert too; that's a cancellation,
				// not a storage fault
				if ctx.Err() == nil {
					sink(domain.Match{}, err)
				}
				continue
			}
		}
		sink(m, nil)
		matched++
		t.Progress.matchFound()
		t.publish(events.TypeMatchFound, map[string]any{
			"source": p.SourceID, "title": p.Title, "company": p.Company, "score": score,
		})
	}

	t.Progress.sourceDone(len(raws), false)
	t.publish(events.TypeSourceDone, map[string]any{
		"source": tk.src.ID, "term": tk.q.Term, "jobs": len(raws), "matches": matched,
	})
}

// fetchWithRetry gives a source its fetch timeout, and transient failures one
// more attempt. Permanent failures (auth, parse drift, cancellation) fail
// straight away.
func (t *Trawler) fetchWithRetry(ctx context.Context, tk task, cfg config.Config) ([]source.RawPosting, error) {
	timeout := time.Duration(cfg.FetchTimeoutSecondsOrDefault()) * time.Second

	attempt := func() ([]source.RawPosting, error) {
		fctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return tk.src.Fetch(fctx, tk.q)
	}

	raws, err := attempt()
	for left := cfg.RetriesOrDefault(); err != nil && left > 0; left-- {
		if ctx.Err() != nil || !source.Retryable(err) {
			break
		}
		log.Printf("[trawl] %s term=%q retrying after: %v", tk.src.ID, tk.q.Term, err)
		raws, err = attempt()
	}
	return raws, err
}

func (t *Trawler) publish(typ string, data any) {
	if t.Hub == nil {
		return
	}
	t.Hub.Publish(events.Make(typ, data))
}
