// Package linkedin scrapes the public (guest) LinkedIn jobs search. Strict
// rate limits apply; failures here are soft by design.
package linkedin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"trawler-engine/internal/source"
	"trawler-engine/internal/source/util"
)

const SourceID = "linkedin"

type Scraper struct {
	Base    string
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		Base:    "https://www.linkedin.com",
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "linkedin-scrape" }

func (s *Scraper) Fetch(ctx context.Context, q source.Query) ([]source.RawPosting, error) {
	params := url.Values{}
	params.Set("keywords", q.Term)
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	params.Set("sortBy", "R")
	params.Set("f_TPR", "r86400") // last 24h keeps the guest page small

	searchURL := s.Base + "/jobs/search?" + params.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	req.Header.Set("User-Agent", source.UserAgent)

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("linkedin get search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, &source.StatusError{Source: s.Name(), Code: res.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin parse search html: %w", err)
	}

	max := q.Limit
	if max <= 0 {
		max = 50
	}

	var out []source.RawPosting
	seen := map[string]bool{}

	doc.Find("div.base-search-card, li div.base-card").Each(func(_ int, card *goquery.Selection) {
		if len(out) >= max {
			return
		}

		title := util.CleanText(card.Find("h3.base-search-card__title").First().Text())
		company := util.CleanText(card.Find("h4.base-search-card__subtitle").First().Text())
		href := card.Find("a.base-card__full-link").First().AttrOr("href", "")
		if href == "" {
			href = card.Find("a[href]").First().AttrOr("href", "")
		}
		abs := util.ResolveURL(s.Base, href)
		if title == "" || abs == "" || util.LooksLikeJunkTitle(title) || util.IsJunkURL(abs) {
			return
		}

		canon := util.CanonicalURL(abs)
		if seen[canon] {
			return
		}
		seen[canon] = true

		out = append(out, source.RawPosting{
			Title:    title,
			Company:  company,
			Location: util.NormalizeLocation(card.Find("span.job-search-card__location").First().Text()),
			Snippet:  util.CleanText(card.Find("p.job-search-card__description").First().Text()),
			URL:      abs,
		})
	})

	if len(out) == 0 {
		return nil, &source.ParseError{Source: s.Name(), What: "no cards (div.base-search-card)"}
	}
	return out, nil
}
