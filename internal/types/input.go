package types

// ResolvedInput is the plain text a generation runs on, plus whatever
// metadata the source provided.
type ResolvedInput struct {
	Text               string `json:"text"`
	SourceIsRemotePage bool   `json:"source_is_remote_page"`
	JobTitle           string `json:"job_title,omitempty"`
	Employer           string `json:"employer,omitempty"`
	ListingID          string `json:"listing_id,omitempty"`
}
