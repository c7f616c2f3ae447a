package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trawler-engine/internal/source"
)

func TestPostingKeepsNativeID(t *testing.T) {
	raw := source.RawPosting{
		ExternalID: " 12345 ",
		Title:      "  Data   Analyst ",
		Company:    "Acme Ltd",
		Location:   "London, London",
		Snippet:    "snippet text",
		URL:        "/jobs/details/12345",
	}

	p, ok := Posting("adzuna", "https://www.adzuna.co.uk", raw)
	require.True(t, ok)
	assert.Equal(t, "adzuna", p.SourceID)
	assert.Equal(t, "12345", p.ExternalID)
	assert.Equal(t, "Data Analyst", p.Title)
	assert.Equal(t, "London", p.Location)
	assert.Equal(t, "https://www.adzuna.co.uk/jobs/details/12345", p.URL)
	// no description: snippet stands in
	assert.Equal(t, "snippet text", p.Description)
}

func TestPostingMintsFingerprintWhenNoID(t *testing.T) {
	raw := source.RawPosting{
		Title:   "Platform Engineer",
		Company: "Initech",
		URL:     "https://example.com/job/1",
	}
	p, ok := Posting("indeed", "https://uk.indeed.com", raw)
	require.True(t, ok)
	assert.NotEmpty(t, p.ExternalID)
	assert.Equal(t, Fingerprint(p.Title, p.Company, p.URL), p.ExternalID)
}

func TestPostingDropsUnusableRecords(t *testing.T) {
	_, ok := Posting("reed", "https://www.reed.co.uk", source.RawPosting{
		Company:  "Ghost Co",
		Location: "Nowhere",
	})
	assert.False(t, ok)
}

func TestFingerprintStableUnderFormatting(t *testing.T) {
	a := Fingerprint("Data  Analyst", "ACME Ltd", "https://Example.com/job/9?utm_source=alert")
	b := Fingerprint("data analyst", "acme ltd", "https://example.com/job/9")
	assert.Equal(t, a, b)

	c := Fingerprint("Data Analyst", "Other Co", "https://example.com/job/9")
	assert.NotEqual(t, a, c)
}

func TestFingerprintDistinguishesURLs(t *testing.T) {
	a := Fingerprint("Engineer", "Acme", "https://example.com/job/1")
	b := Fingerprint("Engineer", "Acme", "https://example.com/job/2")
	assert.NotEqual(t, a, b)
}
