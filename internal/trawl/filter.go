package trawl

import (
	"strings"

	"trawler-engine/internal/domain"
)

// locationAllowed applies the configured allow/block lists to one posting.
// Block wins over allow; an empty allow list admits everything. Matching is a
// case-insensitive substring check over location and title, because boards
// bury "Remote" and "Hybrid" in either field.
func locationAllowed(p domain.Posting, allow, block []string) bool {
	hay := strings.ToLower(p.Location + " " + p.Title)

	for _, b := range block {
		if b != "" && strings.Contains(hay, strings.ToLower(b)) {
			return false
		}
	}
	if len(allow) == 0 {
		return true
	}
	for _, a := range allow {
		if a != "" && strings.Contains(hay, strings.ToLower(a)) {
			return true
		}
	}
	// A posting with no location at all shouldn't silently vanish under an
	// allow filter; let the score decide.
	return strings.TrimSpace(p.Location) == ""
}
