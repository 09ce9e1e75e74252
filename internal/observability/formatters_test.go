package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/jobscout/internal/generation"
)

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSummary(&generation.GeneratedSummary{
		TLDR:         "Backend role on the payments team",
		Requirements: []string{"Go", "Postgres", "Kafka", "gRPC", "Docker", "Terraform", "AWS"},
		NiceToHaves:  []string{"Rust"},
		SalaryRange:  "$150k-$180k",
		MatchAssessment: &generation.MatchAssessment{
			MatchScore:    0.8,
			MatchedSkills: []string{"Go"},
			MissingSkills: []string{"Kafka"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "LISTING SUMMARY")
	assert.Contains(t, output, "Backend role on the payments team")
	assert.Contains(t, output, "$150k-$180k")
	assert.Contains(t, output, "• Docker")
	assert.NotContains(t, output, "• Terraform")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "Rust")
	assert.Contains(t, output, "Match:    80%")
	assert.Contains(t, output, "✗ Kafka")
	assert.NotContains(t, output, "Responsibilities")
}

func TestPrintSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(nil)
	assert.Empty(t, buf.String())
}

func TestPrintComparison(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintComparison(&generation.GeneratedComparison{
		Summary:      "Both are backend roles",
		Similarities: []string{"Go"},
		Differences:  []string{"Team size"},
		ComparisonPoints: []generation.ComparisonPoint{
			{Aspect: "Location", Values: map[string]string{"def": "Remote", "abc": "NYC"}},
		},
		PerListingMatch:      []generation.ListingMatch{{ListingID: "abc", MatchScore: 0.5}},
		RecommendedListingID: "abc",
		RecommendationReason: "Broader scope",
	})
	output := buf.String()

	assert.Contains(t, output, "LISTING COMPARISON")
	assert.Contains(t, output, "Both are backend roles")
	assert.Contains(t, output, "Team size")
	assert.Less(t, strings.Index(output, "abc: NYC"), strings.Index(output, "def: Remote"))
	assert.Contains(t, output, "abc  match 50%")
	assert.Contains(t, output, "Recommended: abc")
	assert.Contains(t, output, "Broader scope")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}
