package models

import "time"

// Delivery channel constants
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Request types

type CreateElectionRequest struct {
	Title      string                   `json:"title"`
	StartAt    *time.Time               `json:"start_at,omitempty"`
	EndAt      *time.Time               `json:"end_at,omitempty"`
	Candidates []CreateCandidateRequest `json:"candidates,omitempty"`
}

type UpdateElectionRequest struct {
	Title   *string    `json:"title,omitempty"`
	StartAt *time.Time `json:"start_at,omitempty"`
	EndAt   *time.Time `json:"end_at,omitempty"`
}

type CreateCandidateRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

type UpdateCandidateRequest struct {
	Name  *string `json:"name,omitempty"`
	Photo *string `json:"photo,omitempty"`
}

type CreateTokenRequest struct {
	Voter   string `json:"voter"`
	Channel string `json:"channel,omitempty"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response types

type CreateElectionResponse struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
}

type CreateCandidateResponse struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Photo string `json:"photo,omitempty"`
}

type CreateTokenResponse struct {
	Voter   string `json:"voter"`
	Channel string `json:"channel"`
}

type ImportRowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type ImportTokensResponse struct {
	Created int              `json:"created"`
	Errors  []ImportRowError `json:"errors"`
}

type DeliveryError struct {
	Recipient string `json:"recipient"`
	Error     string `json:"error"`
}

type SendTokensResponse struct {
	Sent   int             `json:"sent"`
	Errors []DeliveryError `json:"errors"`
}

type CastVoteResponse struct {
	Message string `json:"message"`
}

type BallotResponse struct {
	Election   ElectionSummary `json:"election"`
	Candidates []Candidate     `json:"candidates"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type VoterEntry struct {
	Voter   string `json:"voter"`
	Channel string `json:"channel"`
	Active  bool   `json:"active"`
	Sent    bool   `json:"sent"`
}

type ElectionStats struct {
	ElectionUID       string  `json:"election_uid"`
	Title             string  `json:"title"`
	TotalVoters       int     `json:"total_voters"`
	TotalTokens       int     `json:"total_tokens"`
	VotesCast         int     `json:"votes_cast"`
	TotalCandidates   int     `json:"total_candidates"`
	ParticipationRate float64 `json:"participation_rate"`
}

// Domain types

type Election struct {
	ID        string     `json:"uid"`
	Title     string     `json:"title"`
	StartAt   *time.Time `json:"start_at,omitempty"`
	EndAt     *time.Time `json:"end_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type ElectionSummary struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
}

type Candidate struct {
	ID         string `json:"uid"`
	ElectionID string `json:"election_uid"`
	Name       string `json:"name"`
	Photo      string `json:"photo,omitempty"`
}

type VoteToken struct {
	Value      string    `json:"-"` // Never expose the raw token in JSON
	ElectionID string    `json:"election_uid"`
	Voter      string    `json:"voter"`
	Channel    string    `json:"channel"`
	Active     bool      `json:"active"`
	Sent       bool      `json:"sent"`
	CreatedAt  time.Time `json:"created_at"`
}

type Vote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_uid"`
	CandidateID string    `json:"candidate_uid"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tally types

type CandidateTally struct {
	CandidateID string `json:"candidate_uid"`
	Name        string `json:"name"`
	Photo       string `json:"photo,omitempty"`
	VoteCount   int    `json:"vote_count"`
}

type TallyPayload struct {
	Election ElectionSummary  `json:"election"`
	Results  []CandidateTally `json:"results"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
