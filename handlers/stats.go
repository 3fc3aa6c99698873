// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"ballotbox/cliparse"
	"ballotbox/middleware"
	"ballotbox/models"
)

type StatsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewStatsHandler(db *sql.DB, cfg cliparse.Config) *StatsHandler {
	return &StatsHandler{db: db, cfg: cfg}
}

// GetStats handles GET /api/v1/admin/stats
// One row per election: voter roll size, outstanding tokens, votes cast,
// candidate count, and participation as votes over issued tokens.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT e.id, e.title,
		       (SELECT COUNT(*) FROM vote_token t WHERE t.election_id = e.id),
		       (SELECT COUNT(*) FROM vote_token t WHERE t.election_id = e.id AND t.active),
		       (SELECT COUNT(*) FROM vote v WHERE v.election_id = e.id),
		       (SELECT COUNT(*) FROM candidate c WHERE c.election_id = e.id)
		FROM election e
		ORDER BY e.created_at DESC
	`)
	if err != nil {
		slog.Error("failed to query stats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	stats := []models.ElectionStats{}
	for rows.Next() {
		var s models.ElectionStats
		var activeTokens int
		if err := rows.Scan(&s.ElectionUID, &s.Title, &s.TotalVoters, &activeTokens, &s.VotesCast, &s.TotalCandidates); err != nil {
			slog.Error("failed to scan stats row", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		s.TotalTokens = activeTokens
		if s.TotalVoters > 0 {
			s.ParticipationRate = float64(s.VotesCast) / float64(s.TotalVoters)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate stats rows", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}
