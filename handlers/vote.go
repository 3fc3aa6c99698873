// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"ballotbox/cliparse"
	"ballotbox/live"
	"ballotbox/middleware"
	"ballotbox/models"
	"ballotbox/token"
	"ballotbox/voting"
)

type VoteHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	caster *voting.Caster
	hub    *live.Hub
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, caster *voting.Caster, hub *live.Hub) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg, caster: caster, hub: hub}
}

// voteError writes the voting-path error payload. The error field carries
// the failure kind so clients can tell "not open" from "bad link", while
// never revealing whether a given token exists.
func voteError(w http.ResponseWriter, status int, kind, message string) {
	middleware.JSONResponse(w, status, models.ErrorResponse{
		Error:   kind,
		Message: message,
	})
}

func writeVotingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voting.ErrElectionNotFound):
		voteError(w, http.StatusNotFound, "ElectionNotFound", "Election not found")
	case errors.Is(err, voting.ErrNotStarted):
		voteError(w, http.StatusForbidden, "NotStarted", "Election has not started yet")
	case errors.Is(err, voting.ErrEnded):
		voteError(w, http.StatusForbidden, "Ended", "Election has ended")
	case errors.Is(err, voting.ErrCandidateNotFound):
		voteError(w, http.StatusNotFound, "CandidateNotFound", "Candidate not found for this election")
	case errors.Is(err, token.ErrInvalidToken):
		// Covers never-issued, wrong-election, and already-used alike
		voteError(w, http.StatusForbidden, "InvalidToken", "Invalid or expired token")
	default:
		slog.Error("voting operation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
}

// GetBallot handles GET /api/v1/elections/:uid/vote/:opaque
// Returns the election and its candidates if the window is open and the
// opaque value maps to an active token.
func (h *VoteHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	opaque := r.PathValue("opaque")
	if electionID == "" || opaque == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid and token are required")
		return
	}

	election, candidates, err := h.caster.Ballot(electionID, opaque, time.Now())
	if err != nil {
		writeVotingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BallotResponse{
		Election:   models.ElectionSummary{UID: election.ID, Title: election.Title},
		Candidates: candidates,
	})
}

// CastVote handles POST /api/v1/elections/:uid/vote/:opaque
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	opaque := r.PathValue("opaque")
	if electionID == "" || opaque == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid and token are required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.CandidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "candidate_id required")
		return
	}

	vote, err := h.caster.Cast(electionID, opaque, req.CandidateID, time.Now())
	if err != nil {
		writeVotingError(w, err)
		return
	}

	slog.Info("vote recorded", "election_id", electionID, "vote_id", vote.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		Message: "vote recorded",
	})
}

// LiveResults handles GET /api/v1/elections/:uid/results/live
// Streams tally updates for one election as server-sent events. The first
// event is the current tally; later events arrive as votes are cast.
// Missed updates are not replayed.
func (h *VoteHandler) LiveResults(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	var title string
	err := h.db.QueryRow(`SELECT title FROM election WHERE id = $1`, electionID).Scan(&title)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates, cancel := h.hub.Subscribe(electionID)
	defer cancel()

	// Send the current tally up front so a reconnecting client does not
	// depend on replay.
	results, err := live.Tally(h.db, electionID)
	if err != nil {
		slog.Error("failed to compute initial tally", "error", err, "election_id", electionID)
		return
	}
	writeSSE(w, models.TallyPayload{
		Election: models.ElectionSummary{UID: electionID, Title: title},
		Results:  results,
	})
	flusher.Flush()

	for {
		select {
		case payload, ok := <-updates:
			if !ok {
				return
			}
			writeSSE(w, payload)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeSSE(w http.ResponseWriter, payload models.TallyPayload) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode tally payload", "error", err)
		return
	}
	w.Write([]byte("event: tally\ndata: "))
	w.Write(data)
	w.Write([]byte("\n\n"))
}
