package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/jobscout/internal/prompts"
	"github.com/jonathan/jobscout/internal/types"
)

const promptFile = "generation.json"

// MaxComparisonListingChars caps each listing's text inside a comparison prompt.
const MaxComparisonListingChars = 12000

const summaryMatchField = `,
  "matchAssessment": {"matchScore": 0, "matchedSkills": ["string"], "missingSkills": ["string"]}`

const comparisonMatchField = `
  "perListingMatch": [{"listingId": "string", "matchScore": 0, "matchedSkills": ["string"], "missingSkills": ["string"]}],`

// ListingText is one resolved listing taking part in a comparison.
type ListingText struct {
	ID       string
	Title    string
	Employer string
	Text     string
}

// BuildSummaryPrompt assembles the instructions for summarizing one posting.
// Any candidate profile is included; match scoring is requested only when the
// candidate has skills.
func BuildSummaryPrompt(in types.ResolvedInput, cand *types.CandidateContext) string {
	matchField := ""
	if cand.HasSkills() {
		matchField = summaryMatchField
	}

	var sb strings.Builder
	sb.WriteString(prompts.Render(promptFile, "summary-instructions", map[string]string{
		"MatchField": matchField,
	}))
	if !cand.IsEmpty() {
		sb.WriteString(prompts.Render(promptFile, "candidate-profile", candidateData(cand)))
	}
	if cand.HasSkills() {
		sb.WriteString(prompts.Render(promptFile, "summary-match", nil))
	}
	sb.WriteString("\n\n")
	sb.WriteString(prompts.Render(promptFile, "summary-input", map[string]string{
		"Header": header(in.JobTitle, in.Employer),
		"Text":   in.Text,
	}))
	return sb.String()
}

// BuildComparisonPrompt assembles the instructions for comparing 2 or 3 postings.
// Listings keep the order they were given in.
func BuildComparisonPrompt(listings []ListingText, cand *types.CandidateContext) (string, error) {
	if len(listings) < MinComparisonListings || len(listings) > MaxComparisonListings {
		return "", ErrInvalidComparisonSize
	}

	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = strconv.Quote(l.ID)
	}
	idList := strings.Join(ids, ", ")

	matchField := ""
	if cand.HasSkills() {
		matchField = comparisonMatchField
	}

	var sb strings.Builder
	sb.WriteString(prompts.Render(promptFile, "comparison-instructions", map[string]string{
		"Count":      strconv.Itoa(len(listings)),
		"MatchField": matchField,
		"ListingIDs": idList,
	}))
	if cand.IsEmpty() {
		sb.WriteString(prompts.Render(promptFile, "comparison-general", nil))
	} else {
		sb.WriteString(prompts.Render(promptFile, "candidate-profile", candidateData(cand)))
		if cand.HasSkills() {
			sb.WriteString(prompts.Render(promptFile, "comparison-match", map[string]string{"ListingIDs": idList}))
		}
		sb.WriteString(prompts.Render(promptFile, "comparison-fit", nil))
	}
	sb.WriteString("\n")
	for _, l := range listings {
		sb.WriteString(prompts.Render(promptFile, "comparison-listing", map[string]string{
			"ListingID": l.ID,
			"Header":    header(l.Title, l.Employer),
			"Text":      truncate(l.Text, MaxComparisonListingChars),
		}))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func candidateData(cand *types.CandidateContext) map[string]string {
	skills := make([]string, 0, len(cand.Skills))
	for _, s := range cand.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	var details strings.Builder
	if len(skills) > 0 {
		details.WriteString("\n- Skills: ")
		details.WriteString(strings.Join(skills, ", "))
	}
	if cand.CurrentRole != "" {
		details.WriteString("\n- Current role: ")
		details.WriteString(cand.CurrentRole)
	}
	if cand.YearsOfExperience != nil {
		details.WriteString("\n- Years of professional experience: ")
		details.WriteString(strconv.FormatFloat(*cand.YearsOfExperience, 'f', -1, 64))
	}

	return map[string]string{"CandidateDetails": details.String()}
}

func header(title, employer string) string {
	var lines []string
	if title != "" {
		lines = append(lines, fmt.Sprintf("Job title: %s", title))
	}
	if employer != "" {
		lines = append(lines, fmt.Sprintf("Employer: %s", employer))
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
