// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ballotbox/cliparse"
	"ballotbox/live"
	"ballotbox/middleware"
	"ballotbox/models"
)

type ElectionHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewElectionHandler(db *sql.DB, cfg cliparse.Config) *ElectionHandler {
	return &ElectionHandler{db: db, cfg: cfg}
}

// ListElections handles GET /api/v1/admin/elections
func (h *ElectionHandler) ListElections(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, title, start_at, end_at, created_at
		FROM election
		ORDER BY created_at DESC
	`)
	if err != nil {
		slog.Error("failed to query elections", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(&e.ID, &e.Title, &e.StartAt, &e.EndAt, &e.CreatedAt); err != nil {
			slog.Error("failed to scan election", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		elections = append(elections, e)
	}

	middleware.JSONResponse(w, http.StatusOK, elections)
}

// CreateElection handles POST /api/v1/admin/elections
// Optionally creates candidates inline in the same transaction.
func (h *ElectionHandler) CreateElection(w http.ResponseWriter, r *http.Request) {
	var req models.CreateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.StartAt != nil && req.EndAt != nil && req.EndAt.Before(*req.StartAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_at must not precede start_at")
		return
	}
	for _, c := range req.Candidates {
		if c.Name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "candidate name is required")
			return
		}
	}

	electionID := uuid.NewString()

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO election (id, title, start_at, end_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, electionID, req.Title, req.StartAt, req.EndAt, time.Now())
	if err != nil {
		slog.Error("failed to insert election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	for _, c := range req.Candidates {
		_, err = tx.Exec(`
			INSERT INTO candidate (id, election_id, name, photo)
			VALUES ($1, $2, $3, $4)
		`, uuid.NewString(), electionID, c.Name, c.Photo)
		if err != nil {
			slog.Error("failed to insert candidate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create election")
		return
	}

	slog.Info("election created", "election_id", electionID, "title", req.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateElectionResponse{
		UID:   electionID,
		Title: req.Title,
	})
}

// GetElection handles GET /api/v1/admin/elections/:uid
func (h *ElectionHandler) GetElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	var e models.Election
	err := h.db.QueryRow(`
		SELECT id, title, start_at, end_at, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(&e.ID, &e.Title, &e.StartAt, &e.EndAt, &e.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, e)
}

// UpdateElection handles PUT /api/v1/admin/elections/:uid
// Only the provided fields change. The schedule may be edited even while
// voting is open; window checks always read the current bounds.
func (h *ElectionHandler) UpdateElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	var req models.UpdateElectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Title != nil && *req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title must not be empty")
		return
	}

	var e models.Election
	err := h.db.QueryRow(`
		SELECT id, title, start_at, end_at, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(&e.ID, &e.Title, &e.StartAt, &e.EndAt, &e.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.StartAt != nil {
		e.StartAt = req.StartAt
	}
	if req.EndAt != nil {
		e.EndAt = req.EndAt
	}
	if e.StartAt != nil && e.EndAt != nil && e.EndAt.Before(*e.StartAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "end_at must not precede start_at")
		return
	}

	_, err = h.db.Exec(`
		UPDATE election SET title = $1, start_at = $2, end_at = $3
		WHERE id = $4
	`, e.Title, e.StartAt, e.EndAt, electionID)
	if err != nil {
		slog.Error("failed to update election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update election")
		return
	}

	slog.Info("election updated", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusOK, e)
}

// DeleteElection handles DELETE /api/v1/admin/elections/:uid
// Candidates, tokens, and votes go with it.
func (h *ElectionHandler) DeleteElection(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	res, err := h.db.Exec(`DELETE FROM election WHERE id = $1`, electionID)
	if err != nil {
		slog.Error("failed to delete election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete election")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	slog.Info("election deleted", "election_id", electionID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "election deleted"})
}

// GetResults handles GET /api/v1/admin/elections/:uid/results
// Recomputes the tally from the vote rows on every call.
func (h *ElectionHandler) GetResults(w http.ResponseWriter, r *http.Request) {
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

	results, err := live.Tally(h.db, electionID)
	if err != nil {
		slog.Error("failed to compute tally", "error", err, "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TallyPayload{
		Election: models.ElectionSummary{UID: electionID, Title: title},
		Results:  results,
	})
}
