// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"database/sql"
	"fmt"

	"ballotbox/models"
)

// Tally recomputes the per-candidate vote counts for an election straight
// from the vote table. Never cached or maintained incrementally: the
// ledger stays the single source of truth. Candidates with zero votes are
// included, in insertion order.
func Tally(db *sql.DB, electionID string) ([]models.CandidateTally, error) {
	rows, err := db.Query(`
		SELECT c.id, c.name, c.photo, COUNT(v.id)
		FROM candidate c
		LEFT JOIN vote v ON v.candidate_id = c.id
		WHERE c.election_id = $1
		GROUP BY c.id, c.name, c.photo, c.position
		ORDER BY c.position
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tally: %w", err)
	}
	defer rows.Close()

	results := []models.CandidateTally{}
	for rows.Next() {
		var entry models.CandidateTally
		if err := rows.Scan(&entry.CandidateID, &entry.Name, &entry.Photo, &entry.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan tally row: %w", err)
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}
