// Package normalize maps every adapter's raw output onto the canonical
// Posting shape and mints stable identities for boards without native ids.
package normalize

import (
	"strings"

	"trawler-engine/internal/domain"
	"trawler-engine/internal/source"
	"trawler-engine/internal/source/util"
)

// Posting converts one raw posting. ok is false for unusable records
// (neither title nor url survived cleaning). Case is preserved: display wants
// it, and only the scorer folds case.
func Posting(sourceID, baseURL string, raw source.RawPosting) (domain.Posting, bool) {
	title := util.CleanText(raw.Title)
	abs := util.ResolveURL(baseURL, raw.URL)
	if title == "" && abs == "" {
		return domain.Posting{}, false
	}

	desc := util.CleanText(raw.Description)
	if desc == "" {
		desc = util.CleanText(raw.Snippet)
	}

	p := domain.Posting{
		SourceID:    sourceID,
		Title:       title,
		Company:     util.CleanText(raw.Company),
		Location:    util.NormalizeLocation(raw.Location),
		Description: desc,
		URL:         util.CanonicalURL(abs),
		PostedAt:    raw.PostedAt,
	}

	p.ExternalID = strings.TrimSpace(raw.ExternalID)
	if p.ExternalID == "" {
		p.ExternalID = Fingerprint(p.Title, p.Company, p.URL)
	}
	return p, true
}

// Fingerprint is the content-derived identity for postings without a native
// id. Inputs are whitespace-collapsed and case-folded first so the same ad
// re-fetched with different incidental formatting maps to the same key.
func Fingerprint(title, company, rawURL string) string {
	t := strings.ToLower(util.CleanText(title))
	c := strings.ToLower(util.CleanText(company))
	u := util.CanonicalURL(strings.TrimSpace(rawURL))
	return util.HashString(t + "|" + c + "|" + u)
}
