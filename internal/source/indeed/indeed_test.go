package indeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trawler-engine/internal/source"
)

func serve(t *testing.T, page string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchCards(t *testing.T) {
	page := `<html><body>
	<div class="job_seen_beacon">
	  <h2 class="jobTitle"><a data-jk="abc123" href="/rc/clk?jk=abc123">Go Developer</a></h2>
	  <span class="companyName">Acme</span>
	  <div class="companyLocation">London</div>
	  <div class="job-snippet">Backend Go role</div>
	</div>
	<div class="job_seen_beacon">
	  <h2 class="jobTitle"><a data-jk="abc123" href="/rc/clk?jk=abc123">Go Developer</a></h2>
	</div>
	</body></html>`
	srv := serve(t, page)

	s := New(nil)
	s.Base = srv.URL

	raws, err := s.Fetch(context.Background(), source.Query{Term: "go developer", Location: "London"})
	require.NoError(t, err)
	require.Len(t, raws, 1, "duplicate jk collapses")
	assert.Equal(t, "abc123", raws[0].ExternalID)
	assert.Equal(t, "Go Developer", raws[0].Title)
	assert.Equal(t, "Acme", raws[0].Company)
	assert.Equal(t, "London", raws[0].Location)
	assert.Equal(t, "Backend Go role", raws[0].Snippet)
}

func TestFetchDataJKFallback(t *testing.T) {
	srv := serve(t, `<html><body><a data-jk="zz9">Platform Engineer</a></body></html>`)

	s := New(nil)
	s.Base = srv.URL

	raws, err := s.Fetch(context.Background(), source.Query{Term: "platform"})
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "zz9", raws[0].ExternalID)
	assert.Equal(t, srv.URL+"/viewjob?jk=zz9", raws[0].URL)
}

func TestFetchBlockedIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := New(nil)
	s.Base = srv.URL

	_, err := s.Fetch(context.Background(), source.Query{Term: "x"})
	var se *source.StatusError
	require.ErrorAs(t, err, &se)
}

func TestFetchEmptyPageIsParseError(t *testing.T) {
	srv := serve(t, `<html><body></body></html>`)

	s := New(nil)
	s.Base = srv.URL

	_, err := s.Fetch(context.Background(), source.Query{Term: "x"})
	var pe *source.ParseError
	require.ErrorAs(t, err, &pe)
}
