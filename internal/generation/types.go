// Package generation builds prompts for the two generation shapes and runs
// them against the model with schema validation, retry and streaming.
package generation

// MatchAssessment scores how well a candidate fits one posting.
type MatchAssessment struct {
	MatchScore    float64  `json:"matchScore"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
}

// GeneratedSummary is the structured summary of a single posting.
type GeneratedSummary struct {
	TLDR                string           `json:"tldr"`
	KeyResponsibilities []string         `json:"keyResponsibilities,omitempty"`
	Requirements        []string         `json:"requirements,omitempty"`
	NiceToHaves         []string         `json:"niceToHaves,omitempty"`
	SalaryRange         string           `json:"salaryRange,omitempty"`
	MatchAssessment     *MatchAssessment `json:"matchAssessment,omitempty"`
	Caveats             []string         `json:"caveats,omitempty"`
}

// ComparisonPoint is one side-by-side fact, keyed by listing id.
type ComparisonPoint struct {
	Aspect string            `json:"aspect"`
	Values map[string]string `json:"values"`
}

// ListingMatch is the candidate fit for one listing in a comparison.
type ListingMatch struct {
	ListingID     string   `json:"listingId"`
	MatchScore    float64  `json:"matchScore"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
}

// GeneratedComparison compares two or three postings.
type GeneratedComparison struct {
	Summary              string            `json:"summary"`
	Similarities         []string          `json:"similarities"`
	Differences          []string          `json:"differences"`
	ComparisonPoints     []ComparisonPoint `json:"comparisonPoints,omitempty"`
	PerListingMatch      []ListingMatch    `json:"perListingMatch,omitempty"`
	RecommendedListingID string            `json:"recommendedListingId,omitempty"`
	RecommendationReason string            `json:"recommendationReason,omitempty"`
}
