package trawl

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trawler-engine/internal/config"
	"trawler-engine/internal/profile"
	"trawler-engine/internal/seen"
	"trawler-engine/internal/source"
)

// stubFetcher scripts one board's behavior per call.
type stubFetcher struct {
	mu    sync.Mutex
	calls int
	fn    func(call int) ([]source.RawPosting, error)
}

func (f *stubFetcher) Name() string { return "stub" }

func (f *stubFetcher) Fetch(ctx context.Context, q source.Query) ([]source.RawPosting, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	return f.fn(call)
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func raw(id, title string) source.RawPosting {
	return source.RawPosting{
		ExternalID: id,
		Title:      title,
		Company:    "Example Co",
		URL:        "https://board.example/job/" + id,
	}
}

func always(raws ...source.RawPosting) *stubFetcher {
	return &stubFetcher{fn: func(int) ([]source.RawPosting, error) { return raws, nil }}
}

func registryWith(t *testing.T, srcs ...*source.Source) *source.Registry {
	t.Helper()
	reg := source.NewRegistry()
	for _, s := range srcs {
		require.NoError(t, reg.Register(s))
	}
	return reg
}

func newTestTrawler(t *testing.T, reg *source.Registry) *Trawler {
	t.Helper()
	st, err := seen.Open(filepath.Join(t.TempDir(), "seen.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return &Trawler{Registry: reg, Seen: st, Progress: NewProgress()}
}

func testCfg(ids ...string) config.Config {
	var cfg config.Config
	cfg.Search.Terms = []string{"go developer"}
	cfg.Sources = map[string]config.SourceConfig{}
	for _, id := range ids {
		cfg.Sources[id] = config.SourceConfig{Enabled: true}
	}
	cfg.Scoring.MinScore = 0.5
	cfg.Trawl.FetchTimeoutSeconds = 2
	return cfg
}

// goProfile scores "Go Developer" postings at 0.7 with the default weights
// (full skills credit plus full experience credit, no keywords configured).
func goProfile() profile.Profile {
	return profile.New([]string{"go"}, nil, nil)
}

func TestRunMatchesAndSecondRunIsIdempotent(t *testing.T) {
	f := always(raw("1", "Go Developer"), raw("2", "Head Chef"))
	reg := registryWith(t, &source.Source{ID: "board", Strategies: []source.Fetcher{f}})
	tr := newTestTrawler(t, reg)

	matches, err := tr.Run(context.Background(), testCfg("board"), goProfile())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Go Developer", matches[0].Posting.Title)
	assert.InDelta(t, 0.7, matches[0].Score, 1e-9)

	snap := tr.Progress.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.JobsFound)
	assert.Equal(t, 1, snap.MatchesFound)
	assert.Equal(t, 0, snap.SoftFailures)

	// the sub-threshold posting was still recorded as seen
	assert.True(t, tr.Seen.Contains("board", "2"))

	// identical second sweep: everything is already known
	matches, err = tr.Run(context.Background(), testCfg("board"), goProfile())
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, StatusCompleted, tr.Progress.Snapshot().Status)
}

func TestRunSoftFailureDoesNotAbortOthers(t *testing.T) {
	broken := &stubFetcher{fn: func(int) ([]source.RawPosting, error) {
		return nil, &source.ParseError{Source: "broken", What: "cards"}
	}}
	healthy := always(raw("1", "Go Developer"))

	reg := registryWith(t,
		&source.Source{ID: "broken", Strategies: []source.Fetcher{broken}},
		&source.Source{ID: "healthy", Strategies: []source.Fetcher{healthy}},
	)
	tr := newTestTrawler(t, reg)

	matches, err := tr.Run(context.Background(), testCfg("broken", "healthy"), goProfile())
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	snap := tr.Progress.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 1, snap.SoftFailures)
	assert.Equal(t, 2, snap.SourcesDone)
}

func TestRunRetriesTransientOnce(t *testing.T) {
	flaky := &stubFetcher{fn: func(call int) ([]source.RawPosting, error) {
		if call == 1 {
			return nil, &source.StatusError{Source: "flaky", Code: 503}
		}
		return []source.RawPosting{raw("1", "Go Developer")}, nil
	}}
	reg := registryWith(t, &source.Source{ID: "flaky", Strategies: []source.Fetcher{flaky}})
	tr := newTestTrawler(t, reg)

	matches, err := tr.Run(context.Background(), testCfg("flaky"), goProfile())
	require.NoError(t, err)
	assert.Len(t, matches, 1)
	assert.Equal(t, 2, flaky.callCount())
	assert.Equal(t, 0, tr.Progress.Snapshot().SoftFailures)
}

func TestRunDoesNotRetryPermanentFailures(t *testing.T) {
	blocked := &stubFetcher{fn: func(int) ([]source.RawPosting, error) {
		return nil, &source.StatusError{Source: "blocked", Code: 403}
	}}
	reg := registryWith(t, &source.Source{ID: "blocked", Strategies: []source.Fetcher{blocked}})
	tr := newTestTrawler(t, reg)

	matches, err := tr.Run(context.Background(), testCfg("blocked"), goProfile())
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Equal(t, 1, blocked.callCount())
	assert.Equal(t, 1, tr.Progress.Snapshot().SoftFailures)
}

func TestRunRejectsSecondConcurrentRun(t *testing.T) {
	release := make(chan struct{})
	slow := &stubFetcher{fn: func(int) ([]source.RawPosting, error) {
		<-release
		return nil, nil
	}}
	reg := registryWith(t, &source.Source{ID: "slow", Strategies: []source.Fetcher{slow}})
	tr := newTestTrawler(t, reg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = tr.Run(context.Background(), testCfg("slow"), goProfile())
	}()

	require.Eventually(t, tr.Running, time.Second, 5*time.Millisecond)

	_, err := tr.Run(context.Background(), testCfg("slow"), goProfile())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(release)
	<-done
	assert.False(t, tr.Running())
}

func TestRunUnregisteredSourceCountsInTotals(t *testing.T) {
	f := always(raw("1", "Go Developer"))
	reg := registryWith(t, &source.Source{ID: "board", Strategies: []source.Fetcher{f}})
	tr := newTestTrawler(t, reg)

	// "ghost" is enabled in config but has no registered adapter
	matches, err := tr.Run(context.Background(), testCfg("board", "ghost"), goProfile())
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	snap := tr.Progress.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.SourcesTotal)
	assert.Equal(t, 2, snap.SourcesDone)
	assert.Equal(t, 1, snap.SoftFailures)
	assert.LessOrEqual(t, snap.SourcesDone, snap.SourcesTotal)
}

func TestRunAsyncClaimsSlotBeforeReturning(t *testing.T) {
	release := make(chan struct{})
	slow := &stubFetcher{fn: func(int) ([]source.RawPosting, error) {
		<-release
		return nil, nil
	}}
	reg := registryWith(t, &source.Source{ID: "slow", Strategies: []source.Fetcher{slow}})
	tr := newTestTrawler(t, reg)

	require.NoError(t, tr.RunAsync(context.Background(), testCfg("slow"), goProfile()))
	// the slot is held the moment RunAsync returns, not once the goroutine
	// gets scheduled
	assert.True(t, tr.Running())
	assert.ErrorIs(t, tr.RunAsync(context.Background(), testCfg("slow"), goProfile()), ErrAlreadyRunning)
	_, err := tr.Run(context.Background(), testCfg("slow"), goProfile())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(release)
	require.Eventually(t, func() bool { return !tr.Running() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusCompleted, tr.Progress.Snapshot().Status)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	f := always(raw("1", "Go Developer"))
	reg := registryWith(t, &source.Source{ID: "board", Strategies: []source.Fetcher{f}})
	tr := newTestTrawler(t, reg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	matches, err := tr.Run(ctx, testCfg("board"), goProfile())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, matches)
	assert.Equal(t, StatusCancelled, tr.Progress.Snapshot().Status)
	assert.Equal(t, 0, f.callCount())
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	reg := registryWith(t, &source.Source{ID: "board", Strategies: []source.Fetcher{always()}})
	tr := newTestTrawler(t, reg)

	cfg := testCfg("board")
	cfg.Search.Terms = nil

	_, err := tr.Run(context.Background(), cfg, goProfile())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	// rejected before it became a run at all
	assert.Equal(t, StatusIdle, tr.Progress.Snapshot().Status)
}

func TestRunThreshold(t *testing.T) {
	f := always(raw("1", "Go Developer"))
	reg := registryWith(t, &source.Source{ID: "board", Strategies: []source.Fetcher{f}})

	// score 0.7: at the threshold it passes
	tr := newTestTrawler(t, reg)
	cfg := testCfg("board")
	cfg.Scoring.MinScore = 0.7
	matches, err := tr.Run(context.Background(), cfg, goProfile())
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	// above the threshold it is dropped but still remembered
	tr2 := newTestTrawler(t, reg)
	cfg.Scoring.MinScore = 0.9
	matches, err = tr2.Run(context.Background(), cfg, goProfile())
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.True(t, tr2.Seen.Contains("board", "1"))
}

func TestRunLocationFilter(t *testing.T) {
	paris := raw("1", "Go Developer")
	paris.Location = "Paris, France"
	london := raw("2", "Go Developer")
	london.Location = "London"

	f := always(paris, london)
	reg := registryWith(t, &source.Source{ID: "board", Strategies: []source.Fetcher{f}})
	tr := newTestTrawler(t, reg)

	cfg := testCfg("board")
	cfg.Filters.LocationsBlock = []string{"paris"}

	matches, err := tr.Run(context.Background(), cfg, goProfile())
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "London", matches[0].Posting.Location)
	// blocked postings are remembered so a config change later doesn't
	// resurface stale ads
	assert.True(t, tr.Seen.Contains("board", "1"))
}

func TestRunTermAgnosticSourceFetchedOnce(t *testing.T) {
	perTerm := always(raw("1", "Go Developer"))
	once := always(raw("9", "Go Developer"))

	reg := registryWith(t,
		&source.Source{ID: "board", Strategies: []source.Fetcher{perTerm}},
		&source.Source{ID: "digest", TermAgnostic: true, Strategies: []source.Fetcher{once}},
	)
	tr := newTestTrawler(t, reg)

	cfg := testCfg("board", "digest")
	cfg.Search.Terms = []string{"go developer", "platform engineer", "sre"}

	_, err := tr.Run(context.Background(), cfg, goProfile())
	require.NoError(t, err)
	assert.Equal(t, 3, perTerm.callCount())
	assert.Equal(t, 1, once.callCount())
}

func TestRunDuplicateAcrossTermsEmittedOnce(t *testing.T) {
	f := always(raw("1", "Go Developer"))
	reg := registryWith(t, &source.Source{ID: "board", Strategies: []source.Fetcher{f}})
	tr := newTestTrawler(t, reg)

	cfg := testCfg("board")
	cfg.Search.Terms = []string{"go developer", "golang"}

	matches, err := tr.Run(context.Background(), cfg, goProfile())
	require.NoError(t, err)
	assert.Len(t, matches, 1, "same posting surfaced by two terms must be emitted once")
	assert.Equal(t, 2, f.callCount())
}

func TestTestSourceProbeHasNoSideEffects(t *testing.T) {
	f := always(raw("1", "Go Developer"))
	reg := registryWith(t, &source.Source{ID: "board", BaseURL: "https://board.example", Strategies: []source.Fetcher{f}})
	tr := newTestTrawler(t, reg)

	res, err := tr.TestSource(context.Background(), testCfg("board"), "board", "")
	require.NoError(t, err)
	assert.True(t, res.OK)
	require.Len(t, res.Postings, 1)
	assert.Equal(t, "Go Developer", res.Postings[0].Title)

	// the probe never touches the dedup store
	assert.False(t, tr.Seen.Contains("board", "1"))
	assert.Equal(t, StatusIdle, tr.Progress.Snapshot().Status)

	_, err = tr.TestSource(context.Background(), testCfg("board"), "nope", "")
	assert.Error(t, err)
}
