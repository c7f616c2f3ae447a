package source

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	name  string
	raws  []RawPosting
	err   error
	calls int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(ctx context.Context, q Query) ([]RawPosting, error) {
	f.calls++
	return f.raws, f.err
}

func TestFetchPrefersFirstStrategy(t *testing.T) {
	api := &fakeFetcher{name: "api", raws: []RawPosting{{Title: "from api", URL: "https://x/1"}}}
	scrape := &fakeFetcher{name: "scrape", raws: []RawPosting{{Title: "from scrape", URL: "https://x/2"}}}

	s := &Source{ID: "board", Strategies: []Fetcher{api, scrape}}
	raws, err := s.Fetch(context.Background(), Query{Term: "go"})
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "from api", raws[0].Title)
	assert.Equal(t, 0, scrape.calls)
}

func TestFetchFallsThroughOnError(t *testing.T) {
	api := &fakeFetcher{name: "api", err: &StatusError{Source: "api", Code: 401}}
	scrape := &fakeFetcher{name: "scrape", raws: []RawPosting{{Title: "scraped", URL: "https://x/1"}}}

	s := &Source{ID: "board", Strategies: []Fetcher{api, scrape}}
	raws, err := s.Fetch(context.Background(), Query{Term: "go"})
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "scraped", raws[0].Title)
}

func TestFetchFallsThroughOnEmpty(t *testing.T) {
	api := &fakeFetcher{name: "api"} // no error, no results
	scrape := &fakeFetcher{name: "scrape", raws: []RawPosting{{Title: "scraped", URL: "https://x/1"}}}

	s := &Source{ID: "board", Strategies: []Fetcher{api, scrape}}
	raws, err := s.Fetch(context.Background(), Query{Term: "go"})
	require.NoError(t, err)
	assert.Len(t, raws, 1)
	assert.Equal(t, 1, api.calls)
}

func TestFetchReturnsLastErrorWhenAllFail(t *testing.T) {
	first := &fakeFetcher{name: "api", err: errors.New("boom")}
	last := &fakeFetcher{name: "scrape", err: &ParseError{Source: "scrape", What: "cards"}}

	s := &Source{ID: "board", Strategies: []Fetcher{first, last}}
	_, err := s.Fetch(context.Background(), Query{Term: "go"})
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestFetchHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeFetcher{name: "api", raws: []RawPosting{{Title: "x"}}}
	s := &Source{ID: "board", Strategies: []Fetcher{f}}
	_, err := s.Fetch(ctx, Query{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.calls)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&Source{ID: "b"}))
	require.NoError(t, r.Register(&Source{ID: "a"}))

	assert.Error(t, r.Register(&Source{ID: "a"}), "duplicate id")
	assert.Error(t, r.Register(&Source{}), "empty id")

	_, ok := r.Get("a")
	assert.True(t, ok)
	_, ok = r.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, r.IDs())
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"server error", &StatusError{Source: "x", Code: 503}, true},
		{"client error", &StatusError{Source: "x", Code: 403}, false},
		{"wrapped status", fmt.Errorf("fetch: %w", &StatusError{Source: "x", Code: 500}), true},
		{"parse drift", &ParseError{Source: "x", What: "cards"}, false},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"unknown", errors.New("connection reset"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}
