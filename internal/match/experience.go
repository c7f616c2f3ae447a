package match

import (
	"regexp"
	"strconv"
)

// Heuristic extraction of "N+ years experience" style requirements. Best
// effort only: postings word this every way imaginable, and a miss just means
// full experience credit.
var yearsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)\s*(?:of\s*)?(?:experience|exp)`),
	regexp.MustCompile(`(?:minimum|min\.?|at least)\s*(\d+)\s*(?:years?|yrs?)`),
}

// ExtractRequiredYears returns the first years-of-experience figure found in
// the (lower-cased) posting text, or 0 when none is stated.
func ExtractRequiredYears(text string) int {
	for _, re := range yearsPatterns {
		if m := re.FindStringSubmatch(text); len(m) == 2 {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n
			}
		}
	}
	return 0
}
