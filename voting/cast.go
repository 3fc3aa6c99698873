// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ballotbox/live"
	"ballotbox/models"
	"ballotbox/token"
)

var (
	ErrElectionNotFound  = errors.New("election not found")
	ErrNotStarted        = errors.New("election has not started")
	ErrEnded             = errors.New("election has ended")
	ErrCandidateNotFound = errors.New("candidate not found for this election")
)

// Publisher receives the recomputed tally after each successful cast.
// *live.Hub satisfies it.
type Publisher interface {
	Publish(electionID string, payload models.TallyPayload)
}

// Caster is the vote ledger: it validates a cast end-to-end, redeems the
// token and records the vote in one transaction, then publishes the fresh
// tally.
type Caster struct {
	db     *sql.DB
	tokens *token.Store
	pub    Publisher
}

func NewCaster(db *sql.DB, tokens *token.Store, pub Publisher) *Caster {
	return &Caster{db: db, tokens: tokens, pub: pub}
}

func (c *Caster) election(electionID string) (models.Election, error) {
	var e models.Election
	err := c.db.QueryRow(`
		SELECT id, title, start_at, end_at, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(&e.ID, &e.Title, &e.StartAt, &e.EndAt, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Election{}, ErrElectionNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}
	return e, nil
}

func windowErr(status WindowStatus) error {
	switch status {
	case WindowNotStarted:
		return ErrNotStarted
	case WindowEnded:
		return ErrEnded
	}
	return nil
}

// Ballot resolves the ballot-fetch path: election exists, window open,
// and the opaque token maps to an active token. Returns the election and
// its candidates.
func (c *Caster) Ballot(electionID, opaque string, now time.Time) (models.Election, []models.Candidate, error) {
	e, err := c.election(electionID)
	if err != nil {
		return models.Election{}, nil, err
	}

	if err := windowErr(CheckWindow(e.StartAt, e.EndAt, now)); err != nil {
		return models.Election{}, nil, err
	}

	if _, err := c.tokens.FindByObfuscated(electionID, opaque); err != nil {
		return models.Election{}, nil, err
	}

	rows, err := c.db.Query(`
		SELECT id, election_id, name, photo
		FROM candidate
		WHERE election_id = $1
		ORDER BY position
	`, electionID)
	if err != nil {
		return models.Election{}, nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var cand models.Candidate
		if err := rows.Scan(&cand.ID, &cand.ElectionID, &cand.Name, &cand.Photo); err != nil {
			return models.Election{}, nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, cand)
	}
	return e, candidates, rows.Err()
}

// Cast records one vote. Preconditions, first failure wins:
// election exists, window open, candidate belongs to the election, the
// opaque value maps to a real token, and that token redeems. Redemption
// and the vote insert commit together, so no vote exists without exactly
// one token flipped inactive - and the vote row itself records neither
// the token nor the voter.
func (c *Caster) Cast(electionID, opaque, candidateID string, now time.Time) (models.Vote, error) {
	e, err := c.election(electionID)
	if err != nil {
		return models.Vote{}, err
	}

	if err := windowErr(CheckWindow(e.StartAt, e.EndAt, now)); err != nil {
		return models.Vote{}, err
	}

	var exists bool
	err = c.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM candidate WHERE id = $1 AND election_id = $2)
	`, candidateID, electionID).Scan(&exists)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to check candidate: %w", err)
	}
	if !exists {
		return models.Vote{}, ErrCandidateNotFound
	}

	value, err := c.tokens.FindByObfuscated(electionID, opaque)
	if err != nil {
		return models.Vote{}, err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := token.Redeem(tx, electionID, value); err != nil {
		return models.Vote{}, err
	}

	vote := models.Vote{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		CandidateID: candidateID,
		CreatedAt:   now,
	}
	_, err = tx.Exec(`
		INSERT INTO vote (id, election_id, candidate_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, vote.ID, vote.ElectionID, vote.CandidateID, vote.CreatedAt)
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Vote{}, fmt.Errorf("failed to commit vote: %w", err)
	}

	c.publishTally(e)

	return vote, nil
}

// publishTally recomputes the election's tally and pushes it to live
// subscribers. The payload reflects at least the cast that triggered it.
func (c *Caster) publishTally(e models.Election) {
	if c.pub == nil {
		return
	}
	results, err := live.Tally(c.db, e.ID)
	if err != nil {
		slog.Error("failed to recompute tally", "error", err, "election_id", e.ID)
		return
	}
	c.pub.Publish(e.ID, models.TallyPayload{
		Election: models.ElectionSummary{UID: e.ID, Title: e.Title},
		Results:  results,
	})
}
