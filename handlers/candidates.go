// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ballotbox/cliparse"
	"ballotbox/middleware"
	"ballotbox/models"
	"ballotbox/voting"
)

// maxPhotoBytes caps candidate photo uploads at 5 MiB.
const maxPhotoBytes = 5 << 20

var (
	errInvalidForm  = errors.New("invalid multipart form")
	errBadPhotoType = errors.New("photo must be png, jpg, jpeg, or gif")
	errUploadFailed = errors.New("failed to store photo")
)

type CandidateHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewCandidateHandler(db *sql.DB, cfg cliparse.Config) *CandidateHandler {
	return &CandidateHandler{db: db, cfg: cfg}
}

// loadElectionForEdit loads an election and refuses the request when it is
// currently accepting votes. Candidate changes mid-vote would corrupt the
// tally's meaning, so the roster is frozen while the window is open.
func loadElectionForEdit(w http.ResponseWriter, db *sql.DB, electionID string) (models.Election, bool) {
	var e models.Election
	err := db.QueryRow(`
		SELECT id, title, start_at, end_at, created_at
		FROM election WHERE id = $1
	`, electionID).Scan(&e.ID, &e.Title, &e.StartAt, &e.EndAt, &e.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return models.Election{}, false
	}
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Election{}, false
	}
	if voting.ElectionActive(e.StartAt, e.EndAt, time.Now()) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Election is currently active")
		return models.Election{}, false
	}
	return e, true
}

// ListCandidates handles GET /api/v1/admin/elections/:uid/candidates
func (h *CandidateHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM election WHERE id = $1)`, electionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return
	}

	rows, err := h.db.Query(`
		SELECT id, election_id, name, photo
		FROM candidate
		WHERE election_id = $1
		ORDER BY position
	`, electionID)
	if err != nil {
		slog.Error("failed to query candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Photo); err != nil {
			slog.Error("failed to scan candidate", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		candidates = append(candidates, c)
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// CreateCandidate handles POST /api/v1/admin/elections/:uid/candidates
// Accepts either JSON or multipart form data; multipart may carry a photo
// file which is stored under the upload dir and served at /uploads/.
func (h *CandidateHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	if _, ok := loadElectionForEdit(w, h.db, electionID); !ok {
		return
	}

	var name, photo string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var err error
		name, photo, err = h.parseCandidateForm(r)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		var req models.CreateCandidateRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		name, photo = req.Name, req.Photo
	}

	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	candidateID := uuid.NewString()
	_, err := h.db.Exec(`
		INSERT INTO candidate (id, election_id, name, photo)
		VALUES ($1, $2, $3, $4)
	`, candidateID, electionID, name, photo)
	if err != nil {
		slog.Error("failed to insert candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	slog.Info("candidate created", "election_id", electionID, "candidate_id", candidateID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateCandidateResponse{
		UID:   candidateID,
		Name:  name,
		Photo: photo,
	})
}

// UpdateCandidate handles PUT /api/v1/admin/elections/:uid/candidates/:cuid
func (h *CandidateHandler) UpdateCandidate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	candidateID := r.PathValue("cuid")
	if electionID == "" || candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid and candidate uid are required")
		return
	}

	if _, ok := loadElectionForEdit(w, h.db, electionID); !ok {
		return
	}

	var c models.Candidate
	err := h.db.QueryRow(`
		SELECT id, election_id, name, photo
		FROM candidate WHERE id = $1 AND election_id = $2
	`, candidateID, electionID).Scan(&c.ID, &c.ElectionID, &c.Name, &c.Photo)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		slog.Error("failed to query candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		name, photo, err := h.parseCandidateForm(r)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		if name != "" {
			c.Name = name
		}
		if photo != "" {
			c.Photo = photo
		}
	} else {
		var req models.UpdateCandidateRequest
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Name != nil {
			if *req.Name == "" {
				middleware.ErrorResponse(w, http.StatusBadRequest, "name must not be empty")
				return
			}
			c.Name = *req.Name
		}
		if req.Photo != nil {
			c.Photo = *req.Photo
		}
	}

	_, err = h.db.Exec(`
		UPDATE candidate SET name = $1, photo = $2
		WHERE id = $3 AND election_id = $4
	`, c.Name, c.Photo, candidateID, electionID)
	if err != nil {
		slog.Error("failed to update candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update candidate")
		return
	}

	slog.Info("candidate updated", "election_id", electionID, "candidate_id", candidateID)

	middleware.JSONResponse(w, http.StatusOK, c)
}

// DeleteCandidate handles DELETE /api/v1/admin/elections/:uid/candidates/:cuid
func (h *CandidateHandler) DeleteCandidate(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	candidateID := r.PathValue("cuid")
	if electionID == "" || candidateID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid and candidate uid are required")
		return
	}

	if _, ok := loadElectionForEdit(w, h.db, electionID); !ok {
		return
	}

	res, err := h.db.Exec(`
		DELETE FROM candidate WHERE id = $1 AND election_id = $2
	`, candidateID, electionID)
	if err != nil {
		slog.Error("failed to delete candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}

	slog.Info("candidate deleted", "election_id", electionID, "candidate_id", candidateID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "candidate deleted"})
}

// parseCandidateForm reads a multipart candidate form: a "name" field and
// an optional "photo" file. The photo is written under the upload dir with
// a generated filename and the returned photo value is its public path.
func (h *CandidateHandler) parseCandidateForm(r *http.Request) (name, photo string, err error) {
	if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
		return "", "", errInvalidForm
	}
	name = r.FormValue("name")

	file, header, err := r.FormFile("photo")
	if err == http.ErrMissingFile {
		return name, "", nil
	}
	if err != nil {
		return "", "", errInvalidForm
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif":
	default:
		return "", "", errBadPhotoType
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		slog.Error("failed to create upload dir", "error", err)
		return "", "", errUploadFailed
	}

	filename := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.cfg.UploadDir, filename))
	if err != nil {
		slog.Error("failed to create upload file", "error", err)
		return "", "", errUploadFailed
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		slog.Error("failed to write upload file", "error", err)
		return "", "", errUploadFailed
	}

	return name, "/uploads/" + filename, nil
}
