package jsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trawler-engine/internal/source"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "rapid-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "data analyst London", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"job_id":"j1","job_title":"Data Analyst","employer_name":"Acme",
			 "job_city":"London","job_apply_link":"https://jobs.example/j1",
			 "job_description":"SQL","job_posted_at_datetime_utc":"2026-08-19T09:00:00Z"},
			{"job_id":"j2","job_title":"Remote Analyst","employer_name":"Beta",
			 "job_city":"","job_country":"UK","job_apply_link":"https://jobs.example/j2"},
			{"job_id":"j3","job_title":"No Link"}
		]}`))
	}))
	defer srv.Close()

	c := New("rapid-key", nil)
	c.Base = srv.URL

	raws, err := c.Fetch(context.Background(), source.Query{Term: "data analyst", Location: "London"})
	require.NoError(t, err)
	require.Len(t, raws, 2, "entry without apply link is dropped")
	assert.Equal(t, "j1", raws[0].ExternalID)
	require.NotNil(t, raws[0].PostedAt)
	// city absent: country stands in
	assert.Equal(t, "UK", raws[1].Location)
	assert.Nil(t, raws[1].PostedAt)
}

func TestFetchWithoutKey(t *testing.T) {
	c := New("", nil)
	_, err := c.Fetch(context.Background(), source.Query{Term: "x"})
	assert.Error(t, err)
}

func TestFetchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("k", nil)
	c.Base = srv.URL

	_, err := c.Fetch(context.Background(), source.Query{Term: "x"})
	var se *source.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}
