package linkedin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trawler-engine/internal/source"
)

func TestFetchGuestCards(t *testing.T) {
	page := `<html><body><ul>
	<li><div class="base-search-card">
	  <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/123456?refId=x&trk=guest"></a>
	  <h3 class="base-search-card__title">Data Analyst</h3>
	  <h4 class="base-search-card__subtitle">Acme Analytics</h4>
	  <span class="job-search-card__location">London, England</span>
	</div></li>
	<li><div class="base-search-card">
	  <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/123456?refId=y"></a>
	  <h3 class="base-search-card__title">Data Analyst</h3>
	</div></li>
	</ul></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "data analyst", r.URL.Query().Get("keywords"))
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	s := New(nil)
	s.Base = srv.URL

	raws, err := s.Fetch(context.Background(), source.Query{Term: "data analyst"})
	require.NoError(t, err)
	require.Len(t, raws, 1, "same job under two tracking params collapses")
	assert.Equal(t, "Data Analyst", raws[0].Title)
	assert.Equal(t, "Acme Analytics", raws[0].Company)
	assert.Equal(t, "London, England", raws[0].Location)
}

func TestFetchNoCardsIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="authwall">sign in</div></body></html>`))
	}))
	defer srv.Close()

	s := New(nil)
	s.Base = srv.URL

	_, err := s.Fetch(context.Background(), source.Query{Term: "x"})
	var pe *source.ParseError
	require.ErrorAs(t, err, &pe)
}
