// Package observability provides formatted output utilities for the CLI's
// human-readable mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/jobscout/internal/generation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// writeList writes a bulleted list capped at limit items.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

// PrintSummary outputs a human-readable listing summary.
func (p *Printer) PrintSummary(s *generation.GeneratedSummary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(s.TLDR + "\n\n")
	if s.SalaryRange != "" {
		sb.WriteString(fmt.Sprintf("Salary:   %s\n\n", s.SalaryRange))
	}
	writeList(&sb, "Responsibilities", s.KeyResponsibilities, maxItemsToShow)
	writeList(&sb, "Requirements", s.Requirements, maxItemsToShow)
	writeList(&sb, "Nice-to-haves", s.NiceToHaves, 3)
	writeList(&sb, "Caveats", s.Caveats, 3)

	if m := s.MatchAssessment; m != nil {
		sb.WriteString(fmt.Sprintf("Match:    %.0f%%\n", m.MatchScore*100))
		if len(m.MatchedSkills) > 0 {
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", strings.Join(m.MatchedSkills, ", ")))
		}
		if len(m.MissingSkills) > 0 {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", strings.Join(m.MissingSkills, ", ")))
		}
	}

	p.printBox("LISTING SUMMARY", strings.TrimRight(sb.String(), "\n"))
}

// PrintComparison outputs a human-readable comparison.
func (p *Printer) PrintComparison(c *generation.GeneratedComparison) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(c.Summary + "\n\n")
	writeList(&sb, "Similarities", c.Similarities, maxItemsToShow)
	writeList(&sb, "Differences", c.Differences, maxItemsToShow)

	for _, point := range c.ComparisonPoints {
		sb.WriteString(point.Aspect + ":\n")
		ids := make([]string, 0, len(point.Values))
		for id := range point.Values {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", id, point.Values[id]))
		}
		sb.WriteString("\n")
	}

	for _, m := range c.PerListingMatch {
		sb.WriteString(fmt.Sprintf("%s  match %.0f%%\n", m.ListingID, m.MatchScore*100))
	}
	if len(c.PerListingMatch) > 0 {
		sb.WriteString("\n")
	}

	if c.RecommendedListingID != "" {
		sb.WriteString(fmt.Sprintf("Recommended: %s\n", c.RecommendedListingID))
		if c.RecommendationReason != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", c.RecommendationReason))
		}
	}

	p.printBox("LISTING COMPARISON", strings.TrimRight(sb.String(), "\n"))
}
