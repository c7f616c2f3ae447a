// Package reed scrapes reed.co.uk search results.
package reed

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

const SourceID = "reed"

type Scraper struct {
	Base    string
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		Base:    "https://www.reed.co.uk",
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "reed-scrape" }

func (s *Scraper) Fetch(ctx context.Context, q source.Query) ([]source.RawPosting, error) {
	params := url.Values{}
	params.Set("keywords", q.Term)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	params.Set("sortBy", "Date")

	searchURL := s.Base + "/jobs?" + params.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	req.Header.Set("User-Agent", source.UserAgent)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")
	req.Header.Set("Referer", s.Base+"/")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reed get search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, &source.StatusError{Source: s.Name(), Code: res.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reed parse search html: %w", err)
	}

	max := q.Limit
	if max <= 0 {
		max = 50
	}

	var out []source.RawPosting
	seen := map[string]bool{}

	doc.Find("article.job-result, div.job-result-card, article[data-qa='job-card']").Each(func(_ int, card *goquery.Selection) {
		if len(out) >= max {
			return
		}

		a := card.Find("h2 a, h3 a, a.job-result-card__title").First()
		title := util.CleanText(a.Text())
		abs := util.ResolveURL(s.Base, a.AttrOr("href", ""))
		if title == "" || abs == "" || util.LooksLikeJunkTitle(title) {
			return
		}

		id := strings.TrimSpace(card.AttrOr("data-jobid", card.AttrOr("data-id", "")))
		key := id
		if key == "" {
			key = util.CanonicalURL(abs)
		}
		if seen[key] {
			return
		}
		seen[key] = true

		out = append(out, source.RawPosting{
			ExternalID: id,
			Title:      title,
			Company:    util.CleanText(card.Find(".gtmJobListingPostedBy, [class*='company']").First().Text()),
			Location:   util.NormalizeLocation(card.Find(".job-metadata__item--location, [class*='location']").First().Text()),
			Snippet:    util.CleanText(card.Find("p.job-result-description__details, [class*='description']").First().Text()),
			URL:        abs,
		})
	})

	if len(out) == 0 {
		return nil, &source.ParseError{Source: s.Name(), What: "no cards (article.job-result)"}
	}
	return out, nil
}
