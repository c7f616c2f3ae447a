package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trawler-engine/internal/config"
	"trawler-engine/internal/domain"
	"trawler-engine/internal/profile"
)

func intPtr(n int) *int { return &n }

func TestScorePerfectMatch(t *testing.T) {
	s := NewScorer(config.DefaultWeights)
	prof := profile.New([]string{"python", "sql"}, []string{"data analyst"}, intPtr(3))

	p := domain.Posting{
		Title:       "Data Analyst",
		Description: "We need Python and SQL. 1+ years experience required.",
	}

	score, bd := s.Score(p, prof)
	assert.InDelta(t, 1.0, score, 1e-9)
	assert.ElementsMatch(t, []string{"python", "sql"}, bd.MatchedSkills)
	assert.Equal(t, []string{"data analyst"}, bd.MatchedKeywords)
	assert.Equal(t, 1.0, bd.Experience)
}

func TestScoreWordBoundaries(t *testing.T) {
	s := NewScorer(config.DefaultWeights)

	tests := []struct {
		name  string
		skill string
		text  string
		want  bool
	}{
		{"java not in javascript", "java", "Senior JavaScript Developer", false},
		{"java standalone", "java", "Senior Java Developer", true},
		{"java with punctuation", "java", "Java, Kotlin and Scala", true},
		{"go not inside django", "go", "Django backend role", false},
		{"multiword any whitespace", "data analyst", "Data\n  Analyst wanted", true},
		{"c-sharp like token", "sql", "MySQL tuning", false},
		{"prefix of accented word", "caf", "great café culture", false},
		{"accented word itself", "café", "great café culture", true},
		{"no boundary after accented rune", "style", "caféstyle", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prof := profile.New([]string{tt.skill}, nil, nil)
			p := domain.Posting{Title: tt.text}
			_, bd := s.Score(p, prof)
			got := len(bd.MatchedSkills) == 1
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreDeterministicAndBounded(t *testing.T) {
	s := NewScorer(config.Weights{Skills: 0.6, Keywords: 0.3, Experience: 0.1})
	prof := profile.New([]string{"go", "python", "kubernetes"}, []string{"platform", "sre"}, intPtr(2))
	p := domain.Posting{
		Title:       "Platform Engineer",
		Description: "Go and Kubernetes. Minimum 5 years experience.",
	}

	first, firstBD := s.Score(p, prof)
	for i := 0; i < 10; i++ {
		score, bd := s.Score(p, prof)
		require.Equal(t, first, score)
		require.Equal(t, firstBD, bd)
	}
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, 1.0)
}

func TestExperienceComponent(t *testing.T) {
	tests := []struct {
		name string
		text string
		cv   *int
		want float64
	}{
		{"no profile years", "5+ years experience", nil, 1.0},
		{"no requirement in text", "great team, flexible hours", intPtr(1), 1.0},
		{"meets requirement", "3 years experience required", intPtr(5), 1.0},
		{"close to requirement", "10 years of experience", intPtr(7), 0.7},
		{"far below requirement", "10 years experience", intPtr(1), 0.3},
		{"minimum phrasing", "minimum 4 years in the field... experience with Go", intPtr(4), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := experienceComponent(tt.text, tt.cv)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractRequiredYears(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"5+ years experience with Python", 5},
		{"3 years of experience", 3},
		{"at least 2 years experience", 2},
		{"minimum 7 yrs exp", 7},
		{"no numbers here", 0},
		{"founded 10 years ago", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractRequiredYears(tt.text), "text=%q", tt.text)
	}
}

func TestScoreEmptyProfileLists(t *testing.T) {
	s := NewScorer(config.DefaultWeights)
	prof := profile.New(nil, nil, nil)
	p := domain.Posting{Title: "Anything", Description: "whatever"}

	score, bd := s.Score(p, prof)
	// no skills or keywords configured: those components are zero, experience
	// gives full credit
	assert.Equal(t, 0.0, bd.Skills)
	assert.Equal(t, 0.0, bd.Keywords)
	assert.Equal(t, 1.0, bd.Experience)
	assert.InDelta(t, config.DefaultWeights.Experience, score, 1e-9)
}
