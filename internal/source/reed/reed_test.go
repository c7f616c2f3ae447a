package reed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trawler-engine/internal/source"
)

func TestFetchCards(t *testing.T) {
	page := `<html><body>
	<article class="job-result" data-jobid="55501">
	  <h2><a href="/jobs/data-analyst/55501">Data Analyst</a></h2>
	  <div class="gtmJobListingPostedBy">Acme Recruitment</div>
	  <div class="job-metadata__item--location">Manchester</div>
	  <p class="job-result-description__details">Reporting and dashboards</p>
	</article>
	<article class="job-result" data-jobid="55501">
	  <h2><a href="/jobs/data-analyst/55501">Data Analyst</a></h2>
	</article>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "data analyst", r.URL.Query().Get("keywords"))
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	s := New(nil)
	s.Base = srv.URL

	raws, err := s.Fetch(context.Background(), source.Query{Term: "data analyst"})
	require.NoError(t, err)
	require.Len(t, raws, 1, "duplicate job id collapses")
	assert.Equal(t, "55501", raws[0].ExternalID)
	assert.Equal(t, "Data Analyst", raws[0].Title)
	assert.Equal(t, "Acme Recruitment", raws[0].Company)
	assert.Equal(t, "Manchester", raws[0].Location)
	assert.Equal(t, srv.URL+"/jobs/data-analyst/55501", raws[0].URL)
}

func TestFetchNoCardsIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>no results</p></body></html>`))
	}))
	defer srv.Close()

	s := New(nil)
	s.Base = srv.URL

	_, err := s.Fetch(context.Background(), source.Query{Term: "x"})
	var pe *source.ParseError
	require.ErrorAs(t, err, &pe)
}
