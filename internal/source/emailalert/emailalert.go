// Package emailalert turns LinkedIn job-alert digests sitting in an IMAP
// mailbox into raw postings. It is registered like any other board; the
// orchestrator cannot tell it apart from an HTTP source.
package emailalert

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trawler-engine/internal/config"
	"trawler-engine/internal/source"
	"trawler-engine/internal/source/util"
)

const SourceID = "emailalert"

var reJobID = regexp.MustCompile(`/jobs/view/(\d+)`)

type Fetcher struct {
	Cfg      config.EmailConfig
	Password string
	// MaxMessages caps how many unseen digests one run reads.
	MaxMessages int
}

func (f *Fetcher) Name() string { return "emailalert-imap" }

// Fetch scans unseen alert emails; the search term is ignored because the
// digest already reflects the alert configured at the provider.
func (f *Fetcher) Fetch(ctx context.Context, _ source.Query) ([]source.RawPosting, error) {
	addr := fmt.Sprintf("%s:%d", f.Cfg.IMAPHost, f.Cfg.IMAPPort)
	c, err := dialAndLogin(ctx, addr, f.Cfg.Username, f.Password)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Logout().Wait() }()

	msgs, err := fetchUnseen(ctx, c, f.Cfg.Mailbox, f.MaxMessages)
	if err != nil {
		return nil, err
	}

	var out []source.RawPosting
	seen := map[string]bool{}
	for _, m := range msgs {
		if !subjectMatches(m.Subject, f.Cfg.SearchSubjectAny) {
			continue
		}
		jobs, err := ParseAlertHTML(string(m.Raw))
		if err != nil {
			continue
		}
		for _, j := range jobs {
			key := j.ExternalID
			if key == "" {
				key = j.URL
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, j)
		}
	}
	return out, nil
}

func subjectMatches(subject string, any []string) bool {
	if len(any) == 0 {
		return true
	}
	low := strings.ToLower(subject)
	for _, s := range any {
		if strings.Contains(low, strings.ToLower(strings.TrimSpace(s))) {
			return true
		}
	}
	return false
}

// ParseAlertHTML merges every anchor pointing at the same job id into one
// posting, so a logo-only anchor seen first doesn't shadow the titled one.
func ParseAlertHTML(htmlBody string) ([]source.RawPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}

	byID := map[string]*source.RawPosting{}
	var order []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return
		}
		lh := strings.ToLower(href)
		if !strings.Contains(lh, "linkedin.com") {
			return
		}
		if !strings.Contains(lh, "/jobs/view/") && !strings.Contains(lh, "/comm/jobs/view/") {
			return
		}
		if util.IsJunkURL(lh) {
			return
		}

		jobURL := util.CanonicalURL(href)
		id := ""
		if m := reJobID.FindStringSubmatch(jobURL); len(m) == 2 {
			id = m[1]
		}
		key := id
		if key == "" {
			key = jobURL
		}

		p, ok := byID[key]
		if !ok {
			p = &source.RawPosting{ExternalID: id, URL: jobURL}
			byID[key] = p
			order = append(order, key)
		}

		if t := util.CleanText(a.Text()); betterTitle(t, p.Title) {
			p.Title = t
		}

		// the surrounding card usually carries "Company · Location" in a <p>
		card := a.Closest("table")
		if card.Length() == 0 {
			card = a.Closest("tr")
		}
		if card.Length() == 0 {
			card = a.Parent()
		}
		card.Find("p").Each(func(_ int, pEl *goquery.Selection) {
			t := util.CleanText(pEl.Text())
			if t == "" {
				return
			}
			if p.Company == "" && p.Location == "" && strings.Contains(t, " · ") {
				parts := strings.SplitN(t, " · ", 2)
				p.Company = strings.TrimSpace(parts[0])
				p.Location = util.NormalizeLocation(parts[1])
			}
		})
	})

	out := make([]source.RawPosting, 0, len(order))
	for _, key := range order {
		p := byID[key]
		if p.URL == "" || p.Title == "" {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func betterTitle(cand, cur string) bool {
	cand = strings.TrimSpace(cand)
	if cand == "" || util.LooksLikeJunkTitle(cand) {
		return false
	}
	return len(cand) > len(cur)
}
