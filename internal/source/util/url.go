package util

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalURL lower-cases scheme/host, strips fragments and tracking params,
// and sorts the query so the same link always serializes the same way.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" {
			q.Del(k)
		}
	}

	// linkedin links carry one useful param; the rest is tracking noise
	if strings.Contains(u.Host, "linkedin.com") {
		keep := url.Values{}
		if v := q.Get("currentJobId"); v != "" {
			keep.Set("currentJobId", v)
		}
		q = keep
	}

	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ResolveURL makes href absolute against base. Returns href unchanged when it
// already is, or "" when neither parses.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if h.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}

// IsJunkURL flags unsubscribe/settings/tracking links that show up next to
// real posting links in listings and alert emails.
func IsJunkURL(u string) bool {
	lu := strings.ToLower(u)
	junks := []string{
		"unsubscribe",
		"preferences",
		"manage-preferences",
		"email-preferences",
		"privacy",
		"terms",
		"view-in-browser",
		"viewaswebpage",
		"tracking",
		"pixel",
		"beacon",
		"/alerts",
		"/settings",
		"/help",
		"/legal",
	}
	for _, j := range junks {
		if strings.Contains(lu, j) {
			return true
		}
	}
	return false
}
