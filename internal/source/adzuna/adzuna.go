// Package adzuna covers the Adzuna board twice over: the documented search API
// (preferred when credentials exist) and the public search pages.
package adzuna

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

const SourceID = "adzuna"

// countryCodes maps location hints to Adzuna country endpoints.
var countryCodes = map[string]string{
	"uk": "gb", "united kingdom": "gb", "london": "gb",
	"spain": "es", "madrid": "es",
	"france": "fr", "paris": "fr",
	"germany": "de", "berlin": "de",
	"netherlands": "nl", "amsterdam": "nl",
}

func countryFor(location string) string {
	l := strings.ToLower(location)
	for hint, code := range countryCodes {
		if strings.Contains(l, hint) {
			return code
		}
	}
	return "gb"
}

type API struct {
	AppID  string
	AppKey string
	// Base is swapped out in tests.
	Base    string
	hc      *http.Client
	limiter *util.HostLimiter
}

func NewAPI(appID, appKey string, limiter *util.HostLimiter) *API {
	return &API{
		AppID:   appID,
		AppKey:  appKey,
		Base:    "https://api.adzuna.com/v1/api/jobs",
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (a *API) Name() string { return "adzuna-api" }

type apiResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Company struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	RedirectURL string `json:"redirect_url"`
	Description string `json:"description"`
	Created     string `json:"created"`
}

type apiResponse struct {
	Results []apiResult `json:"results"`
}

func (a *API) Fetch(ctx context.Context, q source.Query) ([]source.RawPosting, error) {
	if a.AppID == "" || a.AppKey == "" {
		return nil, fmt.Errorf("adzuna api: credentials not configured")
	}

	limit := q.Limit
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("app_id", a.AppID)
	params.Set("app_key", a.AppKey)
	params.Set("results_per_page", fmt.Sprint(limit))
	params.Set("what", q.Term)
	if q.Location != "" {
		params.Set("where", q.Location)
	}
	params.Set("content-type", "application/json")

	endpoint := fmt.Sprintf("%s/%s/search/1?%s", a.Base, countryFor(q.Location), params.Encode())

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	req.Header.Set("User-Agent", source.UserAgent)

	if a.limiter != nil {
		if err := a.limiter.WaitURL(ctx, endpoint); err != nil {
			return nil, err
		}
	}
	res, err := a.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adzuna api get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, &source.StatusError{Source: a.Name(), Code: res.StatusCode}
	}

	var body apiResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("adzuna api decode: %w", err)
	}

	out := make([]source.RawPosting, 0, len(body.Results))
	for _, r := range body.Results {
		if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.RedirectURL) == "" {
			continue
		}
		var postedAt *time.Time
		if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
			postedAt = &t
		}
		out = append(out, source.RawPosting{
			ExternalID:  r.ID,
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: r.Description,
			URL:         r.RedirectURL,
			PostedAt:    postedAt,
		})
	}
	return out, nil
}
