package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/ironlog/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler
// functions keyed by path. Verifies the HTTP client sends correct paths and
// query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestListSessions verifies session list parsing.
func TestListSessions(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.WorkoutSession{
				{ID: "s1", Date: "2025-05-02", Title: "Upper Push"},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].Title != "Upper Push" {
		t.Errorf("title=%q, want Upper Push", sessions[0].Title)
	}
}

// TestGetSession verifies single-session parsing and path escaping.
func TestGetSession(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions/s1": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.WorkoutSession{
				ID: "s1", Date: "2025-05-02",
				Exercises: []models.ExercisePlan{{ID: "e1", Name: "Bench"}},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	session, err := client.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(session.Exercises) != 1 || session.Exercises[0].Name != "Bench" {
		t.Errorf("exercises=%+v, want one Bench plan", session.Exercises)
	}
}

// TestTrainingVolume verifies the date-range query params and map response.
func TestTrainingVolume(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/volume": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("start"); got != "2025-05-01" {
				t.Errorf("start=%q, want 2025-05-01", got)
			}
			if got := r.URL.Query().Get("end"); got != "2025-05-31" {
				t.Errorf("end=%q, want 2025-05-31", got)
			}
			writeTestJSON(t, w, map[string]float64{"2025-05-02": 2500})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	volume, err := client.TrainingVolume(context.Background(), "2025-05-01", "2025-05-31")
	if err != nil {
		t.Fatal(err)
	}
	if volume["2025-05-02"] != 2500 {
		t.Errorf("volume=%v, want 2500 on 2025-05-02", volume)
	}
}

// TestPersonalRecords verifies the PR map endpoint.
func TestPersonalRecords(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/prs": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, map[string]float64{"Barbell Bench Press": 117})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	prs, err := client.PersonalRecords(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if prs["Barbell Bench Press"] != 117 {
		t.Errorf("prs=%v, want Barbell Bench Press: 117", prs)
	}
}

// TestHTTPClientServerError verifies the client returns an error on non-200
// responses.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/templates": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"store down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	if _, err := client.ListTemplates(context.Background()); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

// TestValidDate verifies date parameter validation.
func TestValidDate(t *testing.T) {
	if err := validDate(""); err != nil {
		t.Errorf("empty date should be allowed, got %v", err)
	}
	if err := validDate("2025-05-02"); err != nil {
		t.Errorf("valid date rejected: %v", err)
	}
	if err := validDate("05/02/2025"); err == nil {
		t.Error("expected error for wrong format")
	}
}
