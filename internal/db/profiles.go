package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/jobscout/internal/types"
)

// -----------------------------------------------------------------------------
// Candidate Profile Methods
// -----------------------------------------------------------------------------

// GetCandidateContext returns the requester's profile snapshot, or nil if the
// requester has no profile.
func (db *DB) GetCandidateContext(ctx context.Context, userID uuid.UUID) (*types.CandidateContext, error) {
	var c types.CandidateContext
	var skillsJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT skills, current_role, years_of_experience
		 FROM candidate_profiles WHERE user_id = $1`,
		userID,
	).Scan(&skillsJSON, &c.CurrentRole, &c.YearsOfExperience)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate profile: %w", err)
	}

	if skillsJSON != nil {
		_ = json.Unmarshal(skillsJSON, &c.Skills)
	}
	return &c, nil
}

// UpsertCandidateProfile creates or replaces a requester's profile.
func (db *DB) UpsertCandidateProfile(ctx context.Context, userID uuid.UUID, c *types.CandidateContext) error {
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("failed to marshal skills: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO candidate_profiles (user_id, skills, current_role, years_of_experience)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		     skills = $2, current_role = $3, years_of_experience = $4, updated_at = NOW()`,
		userID, skillsJSON, c.CurrentRole, c.YearsOfExperience,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert candidate profile: %w", err)
	}
	return nil
}
