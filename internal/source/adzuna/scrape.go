package adzuna

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

type Scraper struct {
	Base    string
	hc      *http.Client
	limiter *util.HostLimiter
}

func NewScraper(limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		Base:    "https://www.adzuna.co.uk",
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "adzuna-scrape" }

func (s *Scraper) Fetch(ctx context.Context, q source.Query) ([]source.RawPosting, error) {
	params := url.Values{}
	params.Set("q", q.Term)
	if q.Location != "" {
		params.Set("w", q.Location)
	}
	searchURL := s.Base + "/search?" + params.Encode()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	req.Header.Set("User-Agent", source.UserAgent)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, searchURL); err != nil {
			return nil, err
		}
	}
	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adzuna get search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, &source.StatusError{Source: s.Name(), Code: res.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("adzuna parse search html: %w", err)
	}

	max := q.Limit
	if max <= 0 {
		max = 50
	}

	var out []source.RawPosting
	seen := map[string]bool{}

	// listing cards carry data-aid; fall back to anchor scanning when the
	// markup shifts
	doc.Find("article[data-aid], div[data-aid]").Each(func(_ int, card *goquery.Selection) {
		if len(out) >= max {
			return
		}
		p, ok := s.postingFromCard(card)
		if !ok || seen[p.URL] {
			return
		}
		seen[p.URL] = true
		out = append(out, p)
	})

	if len(out) == 0 {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			if len(out) >= max {
				return
			}
			href, _ := a.Attr("href")
			low := strings.ToLower(href)
			if !strings.Contains(low, "/jobs/details/") && !strings.Contains(low, "/ad/") {
				return
			}
			title := util.CleanText(a.Text())
			if util.LooksLikeJunkTitle(title) {
				return
			}
			abs := util.ResolveURL(s.Base, href)
			if abs == "" || util.IsJunkURL(abs) || seen[abs] {
				return
			}
			seen[abs] = true
			out = append(out, source.RawPosting{Title: title, URL: abs})
		})
	}

	if len(out) == 0 {
		return nil, &source.ParseError{Source: s.Name(), What: "no listing cards (article[data-aid]) or detail links"}
	}
	return out, nil
}

func (s *Scraper) postingFromCard(card *goquery.Selection) (source.RawPosting, bool) {
	a := card.Find("h2 a, h3 a, a[data-js='job-title']").First()
	title := util.CleanText(a.Text())
	href, _ := a.Attr("href")
	abs := util.ResolveURL(s.Base, href)
	if title == "" || abs == "" || util.LooksLikeJunkTitle(title) {
		return source.RawPosting{}, false
	}

	p := source.RawPosting{
		ExternalID: strings.TrimSpace(card.AttrOr("data-aid", "")),
		Title:      title,
		Company:    util.CleanText(card.Find(".ui-company, [class*='company']").First().Text()),
		Location:   util.NormalizeLocation(card.Find(".ui-location, [class*='location']").First().Text()),
		Snippet:    util.CleanText(card.Find(".max-snippet-height, [class*='snippet'], p").First().Text()),
		URL:        abs,
	}
	return p, true
}
