package generation

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/jonathan/jobscout/internal/schemas"
	"github.com/jonathan/jobscout/internal/types"
)

// SummaryRequest builds the generation request for one posting.
func SummaryRequest(in types.ResolvedInput, cand *types.CandidateContext) Request[GeneratedSummary] {
	wantMatch := cand.HasSkills()
	return Request[GeneratedSummary]{
		Prompt: BuildSummaryPrompt(in, cand),
		Schema: schemas.GeneratedSummary,
		Check: func(s *GeneratedSummary) error {
			if !wantMatch {
				s.MatchAssessment = nil
				return nil
			}
			if s.MatchAssessment == nil {
				return fmt.Errorf("matchAssessment missing for candidate with skills")
			}
			s.MatchAssessment.MatchedSkills = nonNil(s.MatchAssessment.MatchedSkills)
			s.MatchAssessment.MissingSkills = nonNil(s.MatchAssessment.MissingSkills)
			return nil
		},
	}
}

// ComparisonRequest builds the generation request for 2 or 3 postings.
// Listing ids the model invents are dropped from the result and logged.
func ComparisonRequest(listings []ListingText, cand *types.CandidateContext, logger *slog.Logger) (Request[GeneratedComparison], error) {
	prompt, err := BuildComparisonPrompt(listings, cand)
	if err != nil {
		return Request[GeneratedComparison]{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	wantMatch := cand.HasSkills()

	return Request[GeneratedComparison]{
		Prompt: prompt,
		Schema: schemas.GeneratedComparison,
		Check: func(c *GeneratedComparison) error {
			discarded, err := ValidateComparison(c, ids, wantMatch)
			if len(discarded) > 0 {
				logger.Warn("discarded unknown listing ids from comparison", "ids", discarded, "valid", ids)
			}
			return err
		},
	}, nil
}

// ValidateComparison removes references to listing ids outside ids and returns
// the ids it discarded. An unknown recommendation is cleared along with its
// reason. When requireMatches is set, every id needs a perListingMatch entry;
// otherwise match entries are removed.
func ValidateComparison(c *GeneratedComparison, ids []string, requireMatches bool) ([]string, error) {
	var discarded []string
	valid := func(id string) bool { return slices.Contains(ids, id) }

	if c.RecommendedListingID != "" && !valid(c.RecommendedListingID) {
		discarded = append(discarded, c.RecommendedListingID)
		c.RecommendedListingID = ""
		c.RecommendationReason = ""
	}

	for i := range c.ComparisonPoints {
		for id := range c.ComparisonPoints[i].Values {
			if !valid(id) {
				discarded = append(discarded, id)
				delete(c.ComparisonPoints[i].Values, id)
			}
		}
	}

	if !requireMatches {
		c.PerListingMatch = nil
		return discarded, nil
	}

	seen := make(map[string]bool, len(ids))
	matches := make([]ListingMatch, 0, len(ids))
	for _, m := range c.PerListingMatch {
		if !valid(m.ListingID) {
			discarded = append(discarded, m.ListingID)
			continue
		}
		if seen[m.ListingID] {
			continue
		}
		seen[m.ListingID] = true
		m.MatchedSkills = nonNil(m.MatchedSkills)
		m.MissingSkills = nonNil(m.MissingSkills)
		matches = append(matches, m)
	}
	c.PerListingMatch = matches

	for _, id := range ids {
		if !seen[id] {
			return discarded, fmt.Errorf("perListingMatch missing listing %q", id)
		}
	}
	return discarded, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
