// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the BallotBox API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, hub)

# Endpoints

Health:

	GET /health

Voting (public, token-bearing links):

	GET  /api/v1/elections/{uid}/vote/{opaque}  - Fetch ballot
	POST /api/v1/elections/{uid}/vote/{opaque}  - Cast vote
	GET  /api/v1/elections/{uid}/results/live   - Live tally stream (SSE)

Admin sessions:

	POST /api/v1/admin/login
	POST /api/v1/admin/logout

Election management (requires bearer token):

	GET    /api/v1/admin/elections
	POST   /api/v1/admin/elections
	GET    /api/v1/admin/elections/{uid}
	PUT    /api/v1/admin/elections/{uid}
	DELETE /api/v1/admin/elections/{uid}
	GET    /api/v1/admin/elections/{uid}/results

Candidates, tokens, voters (requires bearer token):

	GET    /api/v1/admin/elections/{uid}/candidates
	POST   /api/v1/admin/elections/{uid}/candidates
	PUT    /api/v1/admin/elections/{uid}/candidates/{cuid}
	DELETE /api/v1/admin/elections/{uid}/candidates/{cuid}
	POST   /api/v1/admin/elections/{uid}/tokens
	POST   /api/v1/admin/elections/{uid}/tokens/import
	POST   /api/v1/admin/elections/{uid}/tokens/send
	GET    /api/v1/admin/elections/{uid}/voters
	DELETE /api/v1/admin/elections/{uid}/voters/{identity}

Statistics:

	GET /api/v1/admin/stats

Static:

	GET /uploads/ - Candidate photos

# Handler Initialization

The router builds the domain services once and injects them into the
handlers:

	tokens := token.NewStore(db, cfg.TokenSecret)
	caster := voting.NewCaster(db, tokens, hub)
	voteHandler := handlers.NewVoteHandler(db, cfg, caster, hub)

Admin routes are wrapped by middleware.RequireAdmin, which validates the
session token and checks the revocation blocklist on every request.
*/
package router
