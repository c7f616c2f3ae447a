package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// apiOnlySources have no scrape fallback; enabling one without credentials is
// a configuration error surfaced before the run starts, not mid-run.
var apiOnlySources = map[string]bool{
	"jsearch": true,
}

// CredentialLookup resolves missing credentials from outside the file
// (the OS keychain in production, a stub in tests).
type CredentialLookup func(sourceID string) (Credentials, bool)

// NormalizeAndValidate trims and dedupes list fields, then validates. The
// lookup may be nil, in which case only file-borne credentials count.
func NormalizeAndValidate(cfg Config, lookup CredentialLookup) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Terms = trimList(out.Search.Terms)
	out.Filters.LocationsAllow = trimList(out.Filters.LocationsAllow)
	out.Filters.LocationsBlock = trimList(out.Filters.LocationsBlock)
	out.Email.SearchSubjectAny = trimList(out.Email.SearchSubjectAny)

	if len(out.Search.Terms) == 0 {
		res.addErr("search.terms must have at least one term")
	}

	if out.Scoring.MinScore < 0 || out.Scoring.MinScore > 1 {
		res.addErr("scoring.min_score must be in [0,1], got %v", out.Scoring.MinScore)
	}

	w := out.WeightsOrDefault()
	if w.Skills < 0 || w.Keywords < 0 || w.Experience < 0 {
		res.addErr("scoring.weights must be non-negative")
	}
	if w.Skills+w.Keywords+w.Experience <= 0 {
		res.addErr("scoring.weights must sum to a positive value")
	}

	if len(out.EnabledSources()) == 0 && !out.Email.Enabled {
		res.addErr("no sources enabled")
	}

	for id, sc := range out.Sources {
		if !sc.Enabled || !apiOnlySources[id] {
			continue
		}
		creds := sc.Credentials
		if creds.Key == "" && lookup != nil {
			if found, ok := lookup(id); ok {
				creds = found
			}
		}
		if creds.Key == "" {
			res.addErr("source %q is API-only and enabled but has no credentials", id)
		}
	}

	if out.Email.Enabled {
		if strings.TrimSpace(out.Email.IMAPHost) == "" {
			res.addErr("email.imap_host is required when email.enabled=true")
		}
		if out.Email.IMAPPort == 0 {
			res.addErr("email.imap_port is required when email.enabled=true")
		}
		if strings.TrimSpace(out.Email.Username) == "" {
			res.addErr("email.username is required when email.enabled=true")
		}
		if len(out.Email.SearchSubjectAny) == 0 {
			res.addWarn("email.search_subject_any is empty; the alert mailbox scan may find nothing.")
		}
	}

	if out.Trawl.FetchTimeoutSeconds < 0 {
		res.addErr("trawl.fetch_timeout_seconds must be >= 0")
	}
	if out.Trawl.FetchTimeoutSeconds > 60 {
		res.addWarn("trawl.fetch_timeout_seconds is very high (%d); one slow board will drag the run.", out.Trawl.FetchTimeoutSeconds)
	}
	if out.Trawl.MaxParallel > 16 {
		res.addWarn("trawl.max_parallel=%d; boards throttle aggressive clients.", out.Trawl.MaxParallel)
	}

	blockSet := map[string]bool{}
	for _, b := range out.Filters.LocationsBlock {
		blockSet[strings.ToLower(b)] = true
	}
	for _, a := range out.Filters.LocationsAllow {
		if blockSet[strings.ToLower(a)] {
			res.addWarn("location appears in both allow and block: %q", a)
		}
	}

	return out, res
}
