package domain

import "time"

// Posting is the canonical, post-normalization record for one job ad.
// (SourceID, ExternalID) uniquely identifies it for the life of the seen store.
type Posting struct {
	SourceID    string     `json:"source_id"`
	ExternalID  string     `json:"external_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
}

// Key returns the composite identity used by the seen store.
func (p Posting) Key() string {
	return p.SourceID + "|" + p.ExternalID
}
