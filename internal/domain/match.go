package domain

// ScoreBreakdown keeps the raw (pre-weight) component values so a match is
// explainable, not just a number.
type ScoreBreakdown struct {
	Skills          float64  `json:"skills"`
	Keywords        float64  `json:"keywords"`
	Experience      float64  `json:"experience"`
	MatchedSkills   []string `json:"matched_skills,omitempty"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// Match is a posting that cleared the configured minimum score.
// Immutable once created.
type Match struct {
	Posting   Posting        `json:"posting"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}
