// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package token

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"ballotbox/models"
)

// issueAttempts bounds retries on token-value collisions. A collision
// needs two identical 122-bit random values, so one retry is already
// more than the lifetime of the deployment will see.
const issueAttempts = 5

const uniqueViolation = "23505"

// Store issues and tracks voting tokens for elections.
type Store struct {
	db     *sql.DB
	secret string
}

func NewStore(db *sql.DB, secret string) *Store {
	return &Store{db: db, secret: secret}
}

// Issue creates one token for the voter identity in the election.
// Returns ErrDuplicateVoter if the election already has a token for that
// identity. Token-value collisions are retried with a fresh value until
// uniqueness is confirmed by the primary key.
func (s *Store) Issue(electionID, voter, channel string) (models.VoteToken, error) {
	if channel == "" {
		channel = models.ChannelEmail
	}

	for i := 0; i < issueAttempts; i++ {
		value := NewValue()
		now := time.Now()
		_, err := s.db.Exec(`
			INSERT INTO vote_token (token, election_id, voter, channel, active, sent, created_at)
			VALUES ($1, $2, $3, $4, TRUE, FALSE, $5)
		`, value, electionID, voter, channel, now)

		if err == nil {
			return models.VoteToken{
				Value:      value,
				ElectionID: electionID,
				Voter:      voter,
				Channel:    channel,
				Active:     true,
				Sent:       false,
				CreatedAt:  now,
			}, nil
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if pqErr.Constraint == "vote_token_pkey" {
				// Token value collision: retry with a new random value
				continue
			}
			return models.VoteToken{}, ErrDuplicateVoter
		}
		return models.VoteToken{}, fmt.Errorf("failed to insert vote token: %w", err)
	}

	return models.VoteToken{}, errors.New("could not generate a unique token value")
}

// MarkSent flags a token as delivered. Idempotent: repeated calls leave
// sent=true with no further effect, and voting eligibility is untouched.
func (s *Store) MarkSent(value string) error {
	_, err := s.db.Exec(`UPDATE vote_token SET sent = TRUE WHERE token = $1`, value)
	if err != nil {
		return fmt.Errorf("failed to mark token sent: %w", err)
	}
	return nil
}

// Execer is the subset of *sql.DB and *sql.Tx that Redeem needs, so the
// redemption can join the caller's transaction.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// Redeem atomically deactivates a token. The conditional UPDATE is the
// only check: it affects exactly one row iff the token exists, belongs to
// the election, and is still active, so two concurrent redemptions of the
// same token produce exactly one success. A redeemed token can never be
// reactivated.
func Redeem(e Execer, electionID, value string) error {
	res, err := e.Exec(`
		UPDATE vote_token
		SET active = FALSE
		WHERE token = $1 AND election_id = $2 AND active = TRUE
	`, value, electionID)
	if err != nil {
		return fmt.Errorf("failed to redeem token: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read redeem result: %w", err)
	}
	if n != 1 {
		return ErrInvalidToken
	}
	return nil
}

// FindByObfuscated recovers the raw token value behind an opaque string by
// re-hashing the election's active tokens until one matches. Cost is
// linear in outstanding tokens; fine for contests of thousands of voters.
func (s *Store) FindByObfuscated(electionID, opaque string) (string, error) {
	rows, err := s.db.Query(`
		SELECT token FROM vote_token
		WHERE election_id = $1 AND active = TRUE
	`, electionID)
	if err != nil {
		return "", fmt.Errorf("failed to scan tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return "", fmt.Errorf("failed to scan token row: %w", err)
		}
		if MatchesObfuscated(s.secret, value, opaque) {
			return value, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to iterate tokens: %w", err)
	}

	return "", ErrInvalidToken
}

// ListByElection returns the election's tokens for the admin voter list.
func (s *Store) ListByElection(electionID string) ([]models.VoteToken, error) {
	rows, err := s.db.Query(`
		SELECT token, election_id, voter, channel, active, sent, created_at
		FROM vote_token
		WHERE election_id = $1
		ORDER BY created_at, token
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	tokens := []models.VoteToken{}
	for rows.Next() {
		var tk models.VoteToken
		if err := rows.Scan(&tk.Value, &tk.ElectionID, &tk.Voter, &tk.Channel, &tk.Active, &tk.Sent, &tk.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan token row: %w", err)
		}
		tokens = append(tokens, tk)
	}
	return tokens, rows.Err()
}

// DeleteByVoter removes a voter's token from an election. Returns
// sql.ErrNoRows when no token exists for that identity.
func (s *Store) DeleteByVoter(electionID, voter string) error {
	res, err := s.db.Exec(`
		DELETE FROM vote_token WHERE election_id = $1 AND voter = $2
	`, electionID, voter)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
