package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"ballotbox/live"
	"ballotbox/models"
	"ballotbox/testutil"
)

// TestConcurrentCastSameToken fires many simultaneous casts with one token.
// The conditional redemption update must let exactly one through.
func TestConcurrentCastSameToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	mux, _ := newVoteTestServer(t, db, live.NewHub())

	electionID := testutil.OpenTestElection(t, db, "Race Test")
	candidateID := testutil.AddTestCandidate(t, db, electionID, "Alice")
	raw := testutil.IssueTestToken(t, db, electionID, "racer@example.com")
	opaque := testutil.ObfuscateTestToken(cfg, raw)

	const attempts = 20

	var wg sync.WaitGroup
	var successes, rejections, unexpected int64

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/api/v1/elections/"+electionID+"/vote/"+opaque,
				models.CastVoteRequest{CandidateID: candidateID}, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			switch w.Code {
			case http.StatusCreated:
				atomic.AddInt64(&successes, 1)
			case http.StatusForbidden:
				atomic.AddInt64(&rejections, 1)
			default:
				atomic.AddInt64(&unexpected, 1)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Errorf("Expected exactly 1 successful cast, got %d", successes)
	}
	if rejections != attempts-1 {
		t.Errorf("Expected %d rejections, got %d", attempts-1, rejections)
	}
	if unexpected != 0 {
		t.Errorf("Got %d unexpected status codes", unexpected)
	}

	if n := testutil.CountVotes(t, db, electionID); n != 1 {
		t.Errorf("Expected exactly 1 vote row, got %d", n)
	}
	if testutil.TokenActive(t, db, raw) {
		t.Error("Token should be inactive after the race")
	}
}

// TestConcurrentCastDistinctTokens runs parallel casts from separate voters;
// all must land.
func TestConcurrentCastDistinctTokens(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	mux, _ := newVoteTestServer(t, db, live.NewHub())

	electionID := testutil.OpenTestElection(t, db, "Parallel Voters")
	candidateID := testutil.AddTestCandidate(t, db, electionID, "Alice")

	const voters = 15
	opaques := make([]string, voters)
	for i := 0; i < voters; i++ {
		raw := testutil.IssueTestToken(t, db, electionID, fmt.Sprintf("voter%d@example.com", i))
		opaques[i] = testutil.ObfuscateTestToken(cfg, raw)
	}

	var wg sync.WaitGroup
	var successes int64

	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(opaque string) {
			defer wg.Done()

			req := testutil.MakeRequest("POST", "/api/v1/elections/"+electionID+"/vote/"+opaque,
				models.CastVoteRequest{CandidateID: candidateID}, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code == http.StatusCreated {
				atomic.AddInt64(&successes, 1)
			} else {
				t.Errorf("Cast failed with status %d: %s", w.Code, w.Body.String())
			}
		}(opaques[i])
	}
	wg.Wait()

	if successes != voters {
		t.Errorf("Expected %d successful casts, got %d", voters, successes)
	}
	if n := testutil.CountVotes(t, db, electionID); n != voters {
		t.Errorf("Expected %d vote rows, got %d", voters, n)
	}
}
