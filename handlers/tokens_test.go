package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ballotbox/models"
	"ballotbox/notify"
	"ballotbox/testutil"
	"ballotbox/token"
)

// stubNotifier records deliveries and can be told to fail.
type stubNotifier struct {
	delivered []string
	fail      bool
}

func (s *stubNotifier) Notify(recipient, message string) error {
	if s.fail {
		return errors.New("delivery refused")
	}
	s.delivered = append(s.delivered, recipient)
	return nil
}

func TestCreateToken(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cfg := getTestConfig()
	tokens := token.NewStore(conn, cfg.TokenSecret)
	handler := NewTokenHandler(conn, cfg, tokens, &notify.Dispatcher{})

	electionID := testutil.CreateTestElection(t, conn, "Token Test", nil, nil)

	t.Run("issues a token", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/tokens",
			models.CreateTokenRequest{Voter: "alice@example.com"}, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.CreateToken(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateTokenResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Voter != "alice@example.com" || resp.Channel != models.ChannelEmail {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})

	t.Run("duplicate voter is a conflict", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/tokens",
			models.CreateTokenRequest{Voter: "alice@example.com"}, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.CreateToken(w, req)

		testutil.AssertStatus(t, w, http.StatusConflict)
	})

	t.Run("same voter in another election is fine", func(t *testing.T) {
		other := testutil.CreateTestElection(t, conn, "Other", nil, nil)
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+other+"/tokens",
			models.CreateTokenRequest{Voter: "alice@example.com", Channel: models.ChannelSMS}, nil)
		req.SetPathValue("uid", other)
		w := httptest.NewRecorder()
		handler.CreateToken(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
	})

	t.Run("bad channel", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/tokens",
			models.CreateTokenRequest{Voter: "bob@example.com", Channel: "pigeon"}, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.CreateToken(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestImportTokens(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cfg := getTestConfig()
	tokens := token.NewStore(conn, cfg.TokenSecret)
	handler := NewTokenHandler(conn, cfg, tokens, &notify.Dispatcher{})

	electionID := testutil.CreateTestElection(t, conn, "Import Test", nil, nil)
	testutil.IssueTestToken(t, conn, electionID, "taken@example.com")

	csvBody := strings.Join([]string{
		"voter,channel",
		"one@example.com,email",
		"two@example.com,sms",
		"taken@example.com,email",
		"three@example.com,carrier-pigeon",
		"four@example.com",
		"",
	}, "\n")

	req := httptest.NewRequest("POST", "/api/v1/admin/elections/"+electionID+"/tokens/import",
		strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	req.SetPathValue("uid", electionID)
	w := httptest.NewRecorder()
	handler.ImportTokens(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.ImportTokensResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Created != 3 {
		t.Errorf("Expected 3 created, got %d", resp.Created)
	}
	// Duplicate voter and bad channel each report a row error
	if len(resp.Errors) != 2 {
		t.Fatalf("Expected 2 row errors, got %d: %+v", len(resp.Errors), resp.Errors)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote_token WHERE election_id = $1`, electionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count tokens: %v", err)
	}
	if count != 4 { // pre-existing + 3 imported
		t.Errorf("Expected 4 tokens, got %d", count)
	}
}

func TestSendTokens(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cfg := getTestConfig()
	tokens := token.NewStore(conn, cfg.TokenSecret)

	electionID := testutil.CreateTestElection(t, conn, "Send Test", nil, nil)
	testutil.IssueTestToken(t, conn, electionID, "alice@example.com")
	testutil.IssueTestToken(t, conn, electionID, "bob@example.com")

	email := &stubNotifier{}
	handler := NewTokenHandler(conn, cfg, tokens, &notify.Dispatcher{Email: email})

	send := func() models.SendTokensResponse {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/tokens/send", nil, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.SendTokens(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.SendTokensResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	t.Run("first batch delivers everyone", func(t *testing.T) {
		resp := send()
		if resp.Sent != 2 || len(resp.Errors) != 0 {
			t.Errorf("Unexpected response: %+v", resp)
		}
		if len(email.delivered) != 2 {
			t.Errorf("Expected 2 deliveries, got %d", len(email.delivered))
		}
	})

	t.Run("second batch skips already-sent tokens", func(t *testing.T) {
		resp := send()
		if resp.Sent != 0 {
			t.Errorf("Expected 0 sent, got %d", resp.Sent)
		}
	})

	t.Run("resend forces redelivery", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/tokens/send",
			map[string]bool{"resend": true}, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.SendTokens(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.SendTokensResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Sent != 2 {
			t.Errorf("Expected 2 resent, got %d", resp.Sent)
		}
	})
}

func TestSendTokensReportsFailures(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cfg := getTestConfig()
	tokens := token.NewStore(conn, cfg.TokenSecret)

	electionID := testutil.CreateTestElection(t, conn, "Failing Send", nil, nil)
	rawAlice := testutil.IssueTestToken(t, conn, electionID, "alice@example.com")

	// SMS voter with no SMS notifier configured
	if _, err := tokens.Issue(electionID, "+15551234567", models.ChannelSMS); err != nil {
		t.Fatalf("Failed to issue sms token: %v", err)
	}

	email := &stubNotifier{fail: true}
	handler := NewTokenHandler(conn, cfg, tokens, &notify.Dispatcher{Email: email})

	req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/tokens/send", nil, nil)
	req.SetPathValue("uid", electionID)
	w := httptest.NewRecorder()
	handler.SendTokens(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SendTokensResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.Sent != 0 {
		t.Errorf("Expected 0 sent, got %d", resp.Sent)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("Expected 2 delivery errors, got %d: %+v", len(resp.Errors), resp.Errors)
	}

	// Failed deliveries must not mark the token sent
	var sent bool
	if err := conn.QueryRow(`SELECT sent FROM vote_token WHERE token = $1`, rawAlice).Scan(&sent); err != nil {
		t.Fatalf("Failed to query token: %v", err)
	}
	if sent {
		t.Error("Token should not be marked sent after a failed delivery")
	}
}

func TestListAndDeleteVoters(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cfg := getTestConfig()
	tokens := token.NewStore(conn, cfg.TokenSecret)
	handler := NewTokenHandler(conn, cfg, tokens, &notify.Dispatcher{})

	electionID := testutil.CreateTestElection(t, conn, "Roll Test", nil, nil)
	testutil.IssueTestToken(t, conn, electionID, "alice@example.com")
	testutil.IssueTestToken(t, conn, electionID, "bob@example.com")

	t.Run("list shows identity and status, never the raw token", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/api/v1/admin/elections/"+electionID+"/voters", nil, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.ListVoters(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp []models.VoterEntry
		testutil.AssertJSON(t, w, &resp)
		if len(resp) != 2 {
			t.Fatalf("Expected 2 voters, got %d", len(resp))
		}
		if !resp[0].Active || resp[0].Sent {
			t.Errorf("Unexpected voter status: %+v", resp[0])
		}
		if strings.Contains(w.Body.String(), `"token"`) {
			t.Error("Voter list must not leak token values")
		}
	})

	t.Run("delete removes the voter's token", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/api/v1/admin/elections/"+electionID+"/voters/bob@example.com", nil, nil)
		req.SetPathValue("uid", electionID)
		req.SetPathValue("identity", "bob@example.com")
		w := httptest.NewRecorder()
		handler.DeleteVoter(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var count int
		if err := conn.QueryRow(`SELECT COUNT(*) FROM vote_token WHERE election_id = $1`, electionID).Scan(&count); err != nil {
			t.Fatalf("Failed to count tokens: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 token left, got %d", count)
		}
	})

	t.Run("deleting an unknown voter 404s", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/api/v1/admin/elections/"+electionID+"/voters/ghost@example.com", nil, nil)
		req.SetPathValue("uid", electionID)
		req.SetPathValue("identity", "ghost@example.com")
		w := httptest.NewRecorder()
		handler.DeleteVoter(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}
