// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"ballotbox/cliparse"
	"ballotbox/middleware"
	"ballotbox/models"
	"ballotbox/notify"
	"ballotbox/token"
)

type TokenHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	tokens   *token.Store
	dispatch *notify.Dispatcher
}

func NewTokenHandler(db *sql.DB, cfg cliparse.Config, tokens *token.Store, dispatch *notify.Dispatcher) *TokenHandler {
	return &TokenHandler{db: db, cfg: cfg, tokens: tokens, dispatch: dispatch}
}

func (h *TokenHandler) electionExists(w http.ResponseWriter, electionID string) bool {
	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM election WHERE id = $1)`, electionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return false
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return false
	}
	return true
}

// CreateToken handles POST /api/v1/admin/elections/:uid/tokens
// Issues one token for a voter identity. 409 if the identity already has
// one for this election.
func (h *TokenHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	var req models.CreateTokenRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Voter == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "voter is required")
		return
	}
	if req.Channel != "" && req.Channel != models.ChannelEmail && req.Channel != models.ChannelSMS {
		middleware.ErrorResponse(w, http.StatusBadRequest, "channel must be email or sms")
		return
	}

	if !h.electionExists(w, electionID) {
		return
	}

	tk, err := h.tokens.Issue(electionID, req.Voter, req.Channel)
	if errors.Is(err, token.ErrDuplicateVoter) {
		middleware.ErrorResponse(w, http.StatusConflict, "Voter already has a token for this election")
		return
	}
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	slog.Info("token issued", "election_id", electionID, "voter", req.Voter)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateTokenResponse{
		Voter:   tk.Voter,
		Channel: tk.Channel,
	})
}

// ImportTokens handles POST /api/v1/admin/elections/:uid/tokens/import
// Reads a CSV body whose first column is the voter identity and optional
// second column the channel. Bad rows are reported per line number; good
// rows are still imported.
func (h *TokenHandler) ImportTokens(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	if !h.electionExists(w, electionID) {
		return
	}

	body := io.Reader(r.Body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxPhotoBytes); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()
		body = file
	}

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	created := 0
	importErrors := []models.ImportRowError{}
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			importErrors = append(importErrors, models.ImportRowError{Line: line, Error: "malformed CSV row"})
			continue
		}

		voter := strings.TrimSpace(record[0])
		if voter == "" || strings.EqualFold(voter, "voter") || strings.EqualFold(voter, "identity") {
			// Blank line or header row
			continue
		}

		channel := ""
		if len(record) > 1 {
			channel = strings.ToLower(strings.TrimSpace(record[1]))
		}
		if channel != "" && channel != models.ChannelEmail && channel != models.ChannelSMS {
			importErrors = append(importErrors, models.ImportRowError{Line: line, Error: "channel must be email or sms"})
			continue
		}

		_, err = h.tokens.Issue(electionID, voter, channel)
		if errors.Is(err, token.ErrDuplicateVoter) {
			importErrors = append(importErrors, models.ImportRowError{Line: line, Error: "voter already has a token"})
			continue
		}
		if err != nil {
			slog.Error("failed to issue token during import", "error", err, "voter", voter)
			importErrors = append(importErrors, models.ImportRowError{Line: line, Error: "failed to issue token"})
			continue
		}
		created++
	}

	slog.Info("tokens imported", "election_id", electionID, "created", created, "errors", len(importErrors))

	middleware.JSONResponse(w, http.StatusOK, models.ImportTokensResponse{
		Created: created,
		Errors:  importErrors,
	})
}

type sendTokensRequest struct {
	Resend bool `json:"resend,omitempty"`
}

// SendTokens handles POST /api/v1/admin/elections/:uid/tokens/send
// Delivers each voter's personal voting link over their channel. Tokens
// already marked sent are skipped unless resend is set. A delivery failure
// is reported per recipient and leaves that token unmarked, so the batch
// can be rerun to retry just the failures.
func (h *TokenHandler) SendTokens(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	var req sendTokensRequest
	if r.ContentLength > 0 {
		if err := middleware.ParseJSONBody(r, &req); err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
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

	tokens, err := h.tokens.ListByElection(electionID)
	if err != nil {
		slog.Error("failed to list tokens", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sent := 0
	deliveryErrors := []models.DeliveryError{}
	for _, tk := range tokens {
		if tk.Sent && !req.Resend {
			continue
		}

		link := h.cfg.FrontendURL + "/elections/" + electionID + "/vote/" + token.Obfuscate(h.cfg.TokenSecret, tk.Value)
		message := fmt.Sprintf("Your voting link for %q: %s", title, link)

		notifier, err := h.dispatch.For(tk.Channel)
		if err != nil {
			deliveryErrors = append(deliveryErrors, models.DeliveryError{Recipient: tk.Voter, Error: err.Error()})
			continue
		}
		if err := notifier.Notify(tk.Voter, message); err != nil {
			slog.Warn("token delivery failed", "voter", tk.Voter, "channel", tk.Channel, "error", err)
			deliveryErrors = append(deliveryErrors, models.DeliveryError{Recipient: tk.Voter, Error: err.Error()})
			continue
		}

		if err := h.tokens.MarkSent(tk.Value); err != nil {
			slog.Error("failed to mark token sent", "error", err, "voter", tk.Voter)
			deliveryErrors = append(deliveryErrors, models.DeliveryError{Recipient: tk.Voter, Error: "delivered but not marked sent"})
			continue
		}
		sent++
	}

	slog.Info("tokens sent", "election_id", electionID, "sent", sent, "errors", len(deliveryErrors))

	middleware.JSONResponse(w, http.StatusOK, models.SendTokensResponse{
		Sent:   sent,
		Errors: deliveryErrors,
	})
}

// ListVoters handles GET /api/v1/admin/elections/:uid/voters
// Raw token values never leave the server; the list carries identity and
// status only.
func (h *TokenHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	if electionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid is required")
		return
	}

	if !h.electionExists(w, electionID) {
		return
	}

	tokens, err := h.tokens.ListByElection(electionID)
	if err != nil {
		slog.Error("failed to list tokens", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	voters := []models.VoterEntry{}
	for _, tk := range tokens {
		voters = append(voters, models.VoterEntry{
			Voter:   tk.Voter,
			Channel: tk.Channel,
			Active:  tk.Active,
			Sent:    tk.Sent,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// DeleteVoter handles DELETE /api/v1/admin/elections/:uid/voters/:identity
func (h *TokenHandler) DeleteVoter(w http.ResponseWriter, r *http.Request) {
	electionID := r.PathValue("uid")
	identity := r.PathValue("identity")
	if electionID == "" || identity == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "election uid and voter identity are required")
		return
	}

	err := h.tokens.DeleteByVoter(electionID, identity)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete voter token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voter")
		return
	}

	slog.Info("voter removed", "election_id", electionID, "voter", identity)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"message": "voter removed"})
}
