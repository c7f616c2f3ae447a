// Package indeed scrapes the Indeed UK search results page. Indeed has no
// public API and blocks aggressively; a 403 here is routine, not a bug.
package indeed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trawler-engine/internal/source"
	"trawler-engine/internal/source/util"
)

const SourceID = "indeed"

type Scraper struct {
	Base    string
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		Base:    "https://uk.indeed.com",
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "indeed-scrape" }

func (s *Scraper) Fetch(ctx context.Context, q source.Query) ([]source.RawPosting, error) {
	params := url.Values{}
	params.Set("q", q.Term)
	params.Set("sort", "date")
	if q.Location != "" {
		params.Set("l", q.Location)
	}
	searchURL := s.Base + "/jobs?" + params.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	req.Header.Set("User-Agent", source.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indeed get search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, &source.StatusError{Source: s.Name(), Code: res.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("indeed parse search html: %w", err)
	}

	max := q.Limit
	if max <= 0 {
		max = 50
	}

	var out []source.RawPosting
	seen := map[string]bool{}

	cards := doc.Find("div.job_seen_beacon, div.jobsearch-SerpJobCard, td.resultContent")
	cards.Each(func(_ int, card *goquery.Selection) {
		if len(out) >= max {
			return
		}
		p, ok := s.postingFromCard(card)
		if !ok {
			return
		}
		key := p.ExternalID
		if key == "" {
			key = p.URL
		}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	})

	// newer markup sometimes drops the card classes; fall back to data-jk
	// anchors directly
	if len(out) == 0 {
		doc.Find("a[data-jk]").Each(func(_ int, a *goquery.Selection) {
			if len(out) >= max {
				return
			}
			jk := a.AttrOr("data-jk", "")
			title := util.CleanText(a.Text())
			if jk == "" || util.LooksLikeJunkTitle(title) || seen[jk] {
				return
			}
			seen[jk] = true
			out = append(out, source.RawPosting{
				ExternalID: jk,
				Title:      title,
				URL:        s.Base + "/viewjob?jk=" + jk,
			})
		})
	}

	if len(out) == 0 {
		return nil, &source.ParseError{Source: s.Name(), What: "no job cards (div.job_seen_beacon) or data-jk anchors"}
	}
	return out, nil
}

func (s *Scraper) postingFromCard(card *goquery.Selection) (source.RawPosting, bool) {
	titleA := card.Find("h2.jobTitle a, h2 a, a[data-jk]").First()
	title := util.CleanText(titleA.Text())
	if title == "" {
		title = util.CleanText(card.Find("span[title]").First().AttrOr("title", ""))
	}
	href := titleA.AttrOr("href", "")
	abs := util.ResolveURL(s.Base, href)

	jk := titleA.AttrOr("data-jk", "")
	if jk == "" {
		jk = card.AttrOr("data-jk", "")
	}
	if jk != "" && abs == "" {
		abs = s.Base + "/viewjob?jk=" + jk
	}

	if title == "" || abs == "" || util.LooksLikeJunkTitle(title) {
		return source.RawPosting{}, false
	}

	loc := util.NormalizeLocation(card.Find("div.companyLocation, [data-testid='text-location']").First().Text())
	snippet := util.CleanText(card.Find("div.job-snippet, [data-testid='jobsnippet'], .summary").First().Text())

	return source.RawPosting{
		ExternalID: strings.TrimSpace(jk),
		Title:      title,
		Company:    util.CleanText(card.Find("span.companyName, [data-testid='company-name']").First().Text()),
		Location:   loc,
		Snippet:    snippet,
		URL:        abs,
	}, true
}
