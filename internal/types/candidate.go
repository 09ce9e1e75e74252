package types

import "strings"

// CandidateContext is a read-only snapshot of the requester's profile used to tailor generation.
type CandidateContext struct {
	Skills            []string `json:"skills"`
	CurrentRole       string   `json:"current_role,omitempty"`
	YearsOfExperience *float64 `json:"years_of_experience,omitempty"`
}

// HasSkills reports whether match scoring can be requested for this candidate.
func (c *CandidateContext) HasSkills() bool {
	if c == nil {
		return false
	}
	for _, s := range c.Skills {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the context carries nothing useful for prompting.
func (c *CandidateContext) IsEmpty() bool {
	if c == nil {
		return true
	}
	return !c.HasSkills() && strings.TrimSpace(c.CurrentRole) == "" && c.YearsOfExperience == nil
}
