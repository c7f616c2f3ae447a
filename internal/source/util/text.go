package util

import "strings"

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}

	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = strings.TrimSpace(loc)

	parts := strings.Split(loc, ",")
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		k := strings.ToLower(p)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return strings.Join(out, ", ")
}

func LooksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "" || strings.Contains(l, "view all") || strings.Contains(l, "apply now") || strings.Contains(l, "sign in")
}

// ExtractLocationFromLabeledText pulls the value after "Location:"-style labels
// in plain text (snippets, meta descriptions).
func ExtractLocationFromLabeledText(s string) string {
	low := strings.ToLower(s)

	labels := []string{
		"location:",
		"locations:",
		"job location:",
	}

	for _, lab := range labels {
		if i := strings.Index(low, lab); i >= 0 {
			start := i + len(lab)
			rest := strings.TrimSpace(s[start:])

			for _, cut := range []string{"\n", "\r", " | ", " · "} {
				if j := strings.Index(rest, cut); j >= 0 {
					rest = rest[:j]
				}
			}

			rest = CleanText(rest)
			if rest != "" && len(rest) <= 80 {
				return rest
			}
		}
	}
	return ""
}
