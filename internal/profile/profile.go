// Package profile holds the structured candidate model produced by the external
// CV-parsing step. The engine only consumes the parsed output; text extraction
// itself lives outside this process.
package profile

import (
	"encoding/json"
	"os"
	"strings"
)

// Profile is built once per run and immutable afterwards.
type Profile struct {
	// Skills are normalized: lower-cased, trimmed, deduplicated.
	Skills []string `json:"skills"`
	// Keywords keep document order (titles, role names from the CV).
	Keywords []string `json:"keywords"`
	// ExperienceYears is nil when the parser could not estimate it.
	ExperienceYears *int `json:"experience_years,omitempty"`
}

// New normalizes the raw parser output into a Profile.
func New(skills, keywords []string, experienceYears *int) Profile {
	return Profile{
		Skills:          normalizeSet(skills),
		Keywords:        normalizeSeq(keywords),
		ExperienceYears: experienceYears,
	}
}

// LoadFile reads the JSON handoff written by the CV parser.
func LoadFile(path string) (Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	var raw Profile
	if err := json.Unmarshal(b, &raw); err != nil {
		return Profile{}, err
	}
	return New(raw.Skills, raw.Keywords, raw.ExperienceYears), nil
}

func normalizeSet(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func normalizeSeq(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, trimmed)
	}
	return out
}
