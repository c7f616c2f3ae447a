// Package match scores postings against the candidate profile. Scoring is a
// pure function of (posting, profile, weights): no network, no shared state,
// same inputs always give the same score and breakdown.
package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"trawler-engine/internal/config"
	"trawler-engine/internal/domain"
	"trawler-engine/internal/profile"
)

type Scorer struct {
	Weights config.Weights
}

func NewScorer(w config.Weights) Scorer {
	return Scorer{Weights: w}
}

// Score computes the weighted relevance of a posting for the profile.
// Breakdown keeps the raw per-component values (pre-weight).
func (s Scorer) Score(p domain.Posting, prof profile.Profile) (float64, domain.ScoreBreakdown) {
	text := strings.ToLower(p.Title + " " + p.Description)

	var bd domain.ScoreBreakdown

	for _, skill := range prof.Skills {
		if containsWord(text, skill) {
			bd.MatchedSkills = append(bd.MatchedSkills, skill)
		}
	}
	bd.Skills = float64(len(bd.MatchedSkills)) / float64(max(1, len(prof.Skills)))

	for _, kw := range prof.Keywords {
		if containsWord(text, strings.ToLower(kw)) {
			bd.MatchedKeywords = append(bd.MatchedKeywords, kw)
		}
	}
	bd.Keywords = float64(len(bd.MatchedKeywords)) / float64(max(1, len(prof.Keywords)))

	bd.Experience = experienceComponent(text, prof.ExperienceYears)

	w := s.Weights
	score := w.Skills*bd.Skills + w.Keywords*bd.Keywords + w.Experience*bd.Experience
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, bd
}

// experienceComponent compares the profile's years against whatever figure
// the posting text yields. An unknown profile gets full credit rather than a
// penalty for an incomplete CV; so does a posting that states no requirement.
func experienceComponent(text string, years *int) float64 {
	if years == nil {
		return 1.0
	}
	required := ExtractRequiredYears(text)
	if required == 0 {
		return 1.0
	}
	cv := *years
	switch {
	case cv >= required:
		return 1.0
	case float64(cv) >= float64(required)*0.7:
		return 0.7
	default:
		return 0.3
	}
}

// containsWord reports whether needle occurs in text at word boundaries.
// "java" must not hit "javascript"; "data analyst" matches with any run of
// whitespace between the words. Both inputs are expected lower-cased.
func containsWord(text, needle string) bool {
	needle = strings.Join(strings.Fields(needle), " ")
	if needle == "" {
		return false
	}

	// multi-word needles: collapse the haystack's whitespace the same way
	if strings.Contains(needle, " ") {
		text = strings.Join(strings.Fields(text), " ")
	}

	for from := 0; ; {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
}

// The boundary checks decode whole runes: a single-byte cast would read one
// continuation byte of a multi-byte neighbour (é) as a non-letter and let
// "caf" match inside "café".
func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
