package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pixelcutlabs/propellic-pulse/internal/middleware"
	"github.com/pixelcutlabs/propellic-pulse/internal/models"
)

func newTestServer(t *testing.T, store Store) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewRouter(store).Register(mux)
	srv := httptest.NewServer(middleware.WithAuth(mux))
	t.Cleanup(srv.Close)
	return srv
}

func openTestCycle(store Store) *models.Cycle {
	now := time.Now().UTC()
	c := &models.Cycle{
		ID:       "C1",
		Year:     now.Year(),
		Month:    int(now.Month()),
		StartsAt: now.Add(-24 * time.Hour),
		EndsAt:   now.Add(24 * time.Hour),
		IsActive: true,
	}
	store.AddCycle(c)
	return c
}

func postJSON(t *testing.T, url string, body map[string]any, out any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestSubmitEndpoint(t *testing.T) {
	store := NewMemoryStore()
	c := openTestCycle(store)
	srv := newTestServer(t, store)

	var out struct {
		Success    bool   `json:"success"`
		ResponseID string `json:"response_id"`
	}
	resp := postJSON(t, srv.URL+"/api/submit", map[string]any{
		"cycle_id": c.ID,
		"score":    9,
		"answers":  []string{"Great onboarding"},
	}, &out)
	if resp.StatusCode != http.StatusOK || !out.Success || out.ResponseID == "" {
		t.Fatalf("submit failed: status=%d out=%+v", resp.StatusCode, out)
	}

	// same client, same day: duplicate
	resp = postJSON(t, srv.URL+"/api/submit", map[string]any{
		"cycle_id": c.ID,
		"score":    5,
	}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate submit status=%d, want 409", resp.StatusCode)
	}

	if got := len(store.ListResponses()); got != 1 {
		t.Fatalf("stored responses=%d, want 1", got)
	}
}

func TestSubmitHoneypotEndpoint(t *testing.T) {
	store := NewMemoryStore()
	c := openTestCycle(store)
	srv := newTestServer(t, store)

	var out struct {
		Success    bool   `json:"success"`
		ResponseID string `json:"response_id"`
	}
	resp := postJSON(t, srv.URL+"/api/submit", map[string]any{
		"cycle_id": c.ID,
		"score":    9,
		"website":  "http://spam.example",
	}, &out)
	if resp.StatusCode != http.StatusOK || !out.Success {
		t.Fatalf("honeypot must look like success: status=%d out=%+v", resp.StatusCode, out)
	}
	if out.ResponseID != "" || len(store.ListResponses()) != 0 {
		t.Fatalf("honeypot submission must not persist")
	}
}

func TestSubmitClosedCycleEndpoint(t *testing.T) {
	store := NewMemoryStore()
	store.AddCycle(&models.Cycle{
		ID:       "OLD",
		Year:     2020,
		Month:    1,
		StartsAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC),
		IsActive: true,
	})
	srv := newTestServer(t, store)

	resp := postJSON(t, srv.URL+"/api/submit", map[string]any{"cycle_id": "OLD", "score": 3}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("closed cycle status=%d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/api/submit", map[string]any{"cycle_id": "missing", "score": 3}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown cycle status=%d, want 404", resp.StatusCode)
	}
}

func TestCyclesBootstrapOnGet(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestServer(t, store)

	resp, err := http.Get(srv.URL + "/api/cycles")
	if err != nil {
		t.Fatalf("GET cycles: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var out struct {
		Cycles []struct {
			Period        string `json:"period"`
			IsActive      bool   `json:"is_active"`
			ResponseCount int    `json:"response_count"`
		} `json:"cycles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Cycles) != 1 || !out.Cycles[0].IsActive {
		t.Fatalf("expected one bootstrapped active cycle: %+v", out.Cycles)
	}
	if len(store.ListDepartments()) != 4 {
		t.Fatalf("departments should bootstrap alongside cycles")
	}
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	store := NewMemoryStore()
	srv := newTestServer(t, store)

	resp := postJSON(t, srv.URL+"/api/cycles", map[string]any{"year": 2025}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("POST cycles without token status=%d, want 401", resp.StatusCode)
	}

	r, err := http.Get(srv.URL + "/api/export.csv?cycle=all")
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	_ = r.Body.Close()
	if r.StatusCode != http.StatusUnauthorized {
		t.Fatalf("export without token status=%d, want 401", r.StatusCode)
	}

	patch, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/cycles/C1", strings.NewReader(`{"is_active":false}`))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	pr, err := http.DefaultClient.Do(patch)
	if err != nil {
		t.Fatalf("PATCH cycle: %v", err)
	}
	_ = pr.Body.Close()
	if pr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("PATCH cycle without token status=%d, want 401", pr.StatusCode)
	}
}

func TestExportEndpoint(t *testing.T) {
	store := NewMemoryStore()
	c := openTestCycle(store)
	if err := store.AddResponse(&models.Response{
		ID: "R1", CycleID: c.ID, Score: 9, Name: "Sam",
		SubmissionHash: strings.Repeat("ab", 32),
		CreatedAt:      time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed response: %v", err)
	}
	srv := newTestServer(t, store)

	var reg struct {
		Token string `json:"token"`
	}
	postJSON(t, srv.URL+"/api/auth/register", map[string]any{
		"email":    "admin@propellic.com",
		"password": "Secret123!",
	}, &reg)
	if reg.Token == "" {
		t.Fatalf("register did not return token")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/export.csv?cycle=all", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET export: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status=%d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type=%q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "propellic_pulse_all_") {
		t.Fatalf("content disposition=%q", cd)
	}
	recs, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		t.Fatalf("parse exported csv: %v", err)
	}
	if len(recs) != 2 || recs[1][2] != "Sam" {
		t.Fatalf("unexpected export payload: %v", recs)
	}
}

func TestStatsEndpoint(t *testing.T) {
	store := NewMemoryStore()
	c := openTestCycle(store)
	_ = store.AddResponse(&models.Response{
		ID: "R1", CycleID: c.ID, Score: 10,
		SubmissionHash: strings.Repeat("cd", 32),
		CreatedAt:      time.Now().UTC(),
	})
	srv := newTestServer(t, store)

	resp, err := http.Get(srv.URL + "/api/stats?cycle=all")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	var out struct {
		Summary struct {
			Count int `json:"count"`
			ENPS  int `json:"enps"`
		} `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Summary.Count != 1 || out.Summary.ENPS != 100 {
		t.Fatalf("unexpected summary: %+v", out.Summary)
	}

	bad, err := http.Get(srv.URL + "/api/stats?cycle=bogus")
	if err != nil {
		t.Fatalf("GET stats bogus: %v", err)
	}
	_ = bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("bogus scope status=%d, want 400", bad.StatusCode)
	}
}
