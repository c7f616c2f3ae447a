// Package jsearch queries the JSearch aggregator (Google for Jobs) over
// RapidAPI. API-only: there is no page to scrape, so missing credentials are a
// configuration error caught before a run starts.
package jsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trawler-engine/internal/source"
	"trawler-engine/internal/source/util"
)

const SourceID = "jsearch"

type Client struct {
	APIKey  string
	Base    string
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(apiKey string, limiter *util.HostLimiter) *Client {
	return &Client{
		APIKey:  apiKey,
		Base:    "https://jsearch.p.rapidapi.com",
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (c *Client) Name() string { return "jsearch-api" }

type jsearchJob struct {
	JobID       string `json:"job_id"`
	Title       string `json:"job_title"`
	Employer    string `json:"employer_name"`
	City        string `json:"job_city"`
	Country     string `json:"job_country"`
	ApplyLink   string `json:"job_apply_link"`
	Description string `json:"job_description"`
	PostedAtUTC string `json:"job_posted_at_datetime_utc"`
}

type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

func (c *Client) Fetch(ctx context.Context, q source.Query) ([]source.RawPosting, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("jsearch: api key not configured")
	}

	query := q.Term
	if q.Location != "" {
		query = q.Term + " " + q.Location
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("num_pages", "1")

	endpoint := c.Base + "/search?" + params.Encode()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	req.Header.Set("X-RapidAPI-Key", c.APIKey)
	req.Header.Set("X-RapidAPI-Host", "jsearch.p.rapidapi.com")
	req.Header.Set("Accept", "application/json")

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
			return nil, err
		}
	}
	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsearch get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, &source.StatusError{Source: c.Name(), Code: res.StatusCode}
	}

	var body jsearchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("jsearch decode: %w", err)
	}

	max := q.Limit
	if max <= 0 {
		max = 50
	}

	out := make([]source.RawPosting, 0, len(body.Data))
	for _, j := range body.Data {
		if len(out) >= max {
			break
		}
		if strings.TrimSpace(j.Title) == "" || strings.TrimSpace(j.ApplyLink) == "" {
			continue
		}
		loc := j.City
		if loc == "" {
			loc = j.Country
		}
		var postedAt *time.Time
		if t, err := time.Parse(time.RFC3339, j.PostedAtUTC); err == nil {
			postedAt = &t
		}
		out = append(out, source.RawPosting{
			ExternalID:  j.JobID,
			Title:       j.Title,
			Company:     j.Employer,
			Location:    loc,
			Description: j.Description,
			URL:         j.ApplyLink,
			PostedAt:    postedAt,
		})
	}
	return out, nil
}
