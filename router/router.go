// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"ballotbox/cliparse"
	"ballotbox/handlers"
	"ballotbox/live"
	"ballotbox/middleware"
	"ballotbox/notify"
	"ballotbox/token"
	"ballotbox/voting"
)

func NewRouter(conn *sql.DB, cfg cliparse.Config, hub *live.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	// Domain services
	tokens := token.NewStore(conn, cfg.TokenSecret)
	caster := voting.NewCaster(conn, tokens, hub)
	dispatch := &notify.Dispatcher{
		Email: &notify.Mailer{
			Host: cfg.MailHost,
			Port: cfg.MailPort,
			User: cfg.MailUser,
			Pass: cfg.MailPass,
			From: cfg.MailFrom,
		},
		SMS: &notify.SMSClient{
			APIURL:   cfg.SMSAPIURL,
			Username: cfg.SMSUser,
			Token:    cfg.SMSToken,
			Sender:   cfg.SMSSender,
		},
	}

	// Initialize handlers
	electionHandler := handlers.NewElectionHandler(conn, cfg)
	candidateHandler := handlers.NewCandidateHandler(conn, cfg)
	tokenHandler := handlers.NewTokenHandler(conn, cfg, tokens, dispatch)
	voteHandler := handlers.NewVoteHandler(conn, cfg, caster, hub)
	statsHandler := handlers.NewStatsHandler(conn, cfg)
	authHandler := handlers.NewAuthHandler(conn, cfg)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(conn, cfg, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voting operations (public, token-bearing links)
	mux.HandleFunc("GET /api/v1/elections/{uid}/vote/{opaque}", middleware.WithLogging(voteHandler.GetBallot))
	mux.HandleFunc("POST /api/v1/elections/{uid}/vote/{opaque}", middleware.WithLogging(voteHandler.CastVote))
	mux.HandleFunc("GET /api/v1/elections/{uid}/results/live", middleware.WithLogging(voteHandler.LiveResults))

	// Admin sessions
	mux.HandleFunc("POST /api/v1/admin/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /api/v1/admin/logout", middleware.WithLogging(authHandler.Logout))

	// Election management
	mux.HandleFunc("GET /api/v1/admin/elections", admin(electionHandler.ListElections))
	mux.HandleFunc("POST /api/v1/admin/elections", admin(electionHandler.CreateElection))
	mux.HandleFunc("GET /api/v1/admin/elections/{uid}", admin(electionHandler.GetElection))
	mux.HandleFunc("PUT /api/v1/admin/elections/{uid}", admin(electionHandler.UpdateElection))
	mux.HandleFunc("DELETE /api/v1/admin/elections/{uid}", admin(electionHandler.DeleteElection))
	mux.HandleFunc("GET /api/v1/admin/elections/{uid}/results", admin(electionHandler.GetResults))

	// Candidate management
	mux.HandleFunc("GET /api/v1/admin/elections/{uid}/candidates", admin(candidateHandler.ListCandidates))
	mux.HandleFunc("POST /api/v1/admin/elections/{uid}/candidates", admin(candidateHandler.CreateCandidate))
	mux.HandleFunc("PUT /api/v1/admin/elections/{uid}/candidates/{cuid}", admin(candidateHandler.UpdateCandidate))
	mux.HandleFunc("DELETE /api/v1/admin/elections/{uid}/candidates/{cuid}", admin(candidateHandler.DeleteCandidate))

	// Token issuance and delivery
	mux.HandleFunc("POST /api/v1/admin/elections/{uid}/tokens", admin(tokenHandler.CreateToken))
	mux.HandleFunc("POST /api/v1/admin/elections/{uid}/tokens/import", admin(tokenHandler.ImportTokens))
	mux.HandleFunc("POST /api/v1/admin/elections/{uid}/tokens/send", admin(tokenHandler.SendTokens))
	mux.HandleFunc("GET /api/v1/admin/elections/{uid}/voters", admin(tokenHandler.ListVoters))
	mux.HandleFunc("DELETE /api/v1/admin/elections/{uid}/voters/{identity}", admin(tokenHandler.DeleteVoter))

	// Statistics
	mux.HandleFunc("GET /api/v1/admin/stats", admin(statsHandler.GetStats))

	// Candidate photos
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ballotbox API v1"))
	})

	return mux
}
