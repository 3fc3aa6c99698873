package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ballotbox/models"
	"ballotbox/testutil"
)

func TestCreateCandidate(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewCandidateHandler(conn, getTestConfig())

	electionID := testutil.CreateTestElection(t, conn, "Roster Test", nil, nil)

	t.Run("json create", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/candidates",
			models.CreateCandidateRequest{Name: "Alice"}, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.CreateCandidate(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateCandidateResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.UID == "" || resp.Name != "Alice" {
			t.Errorf("Unexpected response: %+v", resp)
		}
	})

	t.Run("missing name", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/candidates",
			models.CreateCandidateRequest{}, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.CreateCandidate(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unknown election", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/nope/candidates",
			models.CreateCandidateRequest{Name: "Ghost"}, nil)
		req.SetPathValue("uid", "nope")
		w := httptest.NewRecorder()
		handler.CreateCandidate(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestCandidatePhotoUpload(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	cfg := getTestConfig()
	cfg.UploadDir = t.TempDir()
	handler := NewCandidateHandler(conn, cfg)

	electionID := testutil.CreateTestElection(t, conn, "Photo Test", nil, nil)

	buildForm := func(filename string) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField("name", "Alice")
		fw, _ := mw.CreateFormFile("photo", filename)
		fw.Write([]byte("fake image bytes"))
		mw.Close()
		return &buf, mw.FormDataContentType()
	}

	t.Run("accepted photo is stored and served path returned", func(t *testing.T) {
		body, contentType := buildForm("portrait.png")
		req := httptest.NewRequest("POST", "/api/v1/admin/elections/"+electionID+"/candidates", body)
		req.Header.Set("Content-Type", contentType)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.CreateCandidate(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)

		var resp models.CreateCandidateResponse
		testutil.AssertJSON(t, w, &resp)
		if !strings.HasPrefix(resp.Photo, "/uploads/") || !strings.HasSuffix(resp.Photo, ".png") {
			t.Errorf("Unexpected photo path: %s", resp.Photo)
		}

		stored := filepath.Join(cfg.UploadDir, strings.TrimPrefix(resp.Photo, "/uploads/"))
		if _, err := os.Stat(stored); err != nil {
			t.Errorf("Photo file not written: %v", err)
		}
	})

	t.Run("disallowed extension is refused", func(t *testing.T) {
		body, contentType := buildForm("script.exe")
		req := httptest.NewRequest("POST", "/api/v1/admin/elections/"+electionID+"/candidates", body)
		req.Header.Set("Content-Type", contentType)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.CreateCandidate(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestCandidateFrozenWhileActive(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewCandidateHandler(conn, getTestConfig())

	electionID := testutil.OpenTestElection(t, conn, "Live Election")
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Alice")

	t.Run("create refused", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/api/v1/admin/elections/"+electionID+"/candidates",
			models.CreateCandidateRequest{Name: "Latecomer"}, nil)
		req.SetPathValue("uid", electionID)
		w := httptest.NewRecorder()
		handler.CreateCandidate(w, req)
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("update refused", func(t *testing.T) {
		name := "Renamed"
		req := testutil.MakeRequest("PUT", "/api/v1/admin/elections/"+electionID+"/candidates/"+candidateID,
			models.UpdateCandidateRequest{Name: &name}, nil)
		req.SetPathValue("uid", electionID)
		req.SetPathValue("cuid", candidateID)
		w := httptest.NewRecorder()
		handler.UpdateCandidate(w, req)
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("delete refused", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/api/v1/admin/elections/"+electionID+"/candidates/"+candidateID, nil, nil)
		req.SetPathValue("uid", electionID)
		req.SetPathValue("cuid", candidateID)
		w := httptest.NewRecorder()
		handler.DeleteCandidate(w, req)
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	// The roster is untouched
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM candidate WHERE election_id = $1`, electionID).Scan(&count); err != nil {
		t.Fatalf("Failed to count candidates: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 candidate, got %d", count)
	}
}

func TestUpdateAndDeleteCandidate(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	handler := NewCandidateHandler(conn, getTestConfig())

	electionID := testutil.CreateTestElection(t, conn, "Editable", nil, nil)
	candidateID := testutil.AddTestCandidate(t, conn, electionID, "Alice")

	t.Run("rename", func(t *testing.T) {
		name := "Alicia"
		req := testutil.MakeRequest("PUT", "/api/v1/admin/elections/"+electionID+"/candidates/"+candidateID,
			models.UpdateCandidateRequest{Name: &name}, nil)
		req.SetPathValue("uid", electionID)
		req.SetPathValue("cuid", candidateID)
		w := httptest.NewRecorder()
		handler.UpdateCandidate(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.Candidate
		testutil.AssertJSON(t, w, &resp)
		if resp.Name != "Alicia" {
			t.Errorf("Expected Alicia, got %s", resp.Name)
		}
	})

	t.Run("wrong election 404s", func(t *testing.T) {
		other := testutil.CreateTestElection(t, conn, "Other", nil, nil)
		name := "Nope"
		req := testutil.MakeRequest("PUT", "/api/v1/admin/elections/"+other+"/candidates/"+candidateID,
			models.UpdateCandidateRequest{Name: &name}, nil)
		req.SetPathValue("uid", other)
		req.SetPathValue("cuid", candidateID)
		w := httptest.NewRecorder()
		handler.UpdateCandidate(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/api/v1/admin/elections/"+electionID+"/candidates/"+candidateID, nil, nil)
		req.SetPathValue("uid", electionID)
		req.SetPathValue("cuid", candidateID)
		w := httptest.NewRecorder()
		handler.DeleteCandidate(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var count int
		if err := conn.QueryRow(`SELECT COUNT(*) FROM candidate WHERE id = $1`, candidateID).Scan(&count); err != nil {
			t.Fatalf("Failed to count candidates: %v", err)
		}
		if count != 0 {
			t.Error("Candidate should be gone")
		}
	})
}
