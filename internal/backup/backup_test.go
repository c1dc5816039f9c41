package backup

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// TestRoundTrip verifies Export → Parse reproduces an identical
// sessions/templates/PR triple.
func TestRoundTrip(t *testing.T) {
	completedAt := time.Date(2025, 5, 2, 19, 0, 0, 0, time.UTC)
	sessions := []models.WorkoutSession{
		{
			ID: "s1", Date: "2025-05-02", Title: "Push", IsCompleted: true, CompletedAt: &completedAt,
			Exercises: []models.ExercisePlan{
				{ID: "e1", Name: "Bench", TargetWeight: 100, CurrentPR: 117, TargetSets: 5, TargetReps: 5,
					Sets: []models.SetRecord{
						{ID: "set1", Kind: models.SetWarmup, Weight: 50, Reps: 10, Completed: true},
						{ID: "set2", Kind: models.SetWorking, Weight: 100, Reps: 5, Completed: true},
					}},
			},
		},
	}
	templates := []models.WorkoutTemplate{
		{ID: "tpl-1", Name: "Push", Exercises: []models.ExerciseTemplate{
			{ID: "te-1", Name: "Bench", DefaultSets: 5, DefaultReps: 5},
		}},
	}
	prs := map[string]float64{"Bench": 117}

	data, err := Export(sessions, templates, prs, time.Date(2025, 5, 3, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("export error: %v", err)
	}

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if !reflect.DeepEqual(doc.Sessions, sessions) {
		t.Errorf("sessions round trip mismatch:\n got %+v\nwant %+v", doc.Sessions, sessions)
	}
	if !reflect.DeepEqual(doc.Templates, templates) {
		t.Errorf("templates round trip mismatch:\n got %+v\nwant %+v", doc.Templates, templates)
	}
	if !reflect.DeepEqual(doc.SavedPRs, prs) {
		t.Errorf("prs round trip mismatch: got %v, want %v", doc.SavedPRs, prs)
	}
	if doc.AppVersion != Version {
		t.Errorf("appVersion = %q, want %q", doc.AppVersion, Version)
	}
}

// TestExportEmptyState verifies an export of a fresh install is still a
// valid, importable document.
func TestExportEmptyState(t *testing.T) {
	data, err := Export(nil, nil, nil, time.Now())
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if doc.Sessions == nil || doc.Templates == nil {
		t.Error("exported document must carry explicit (empty) collections")
	}
}

// TestParseMalformed verifies a document with neither sessions nor
// templates is rejected.
func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`{"savedPRs": {"Bench": 100}, "appVersion": "1.0"}`))
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

// TestParsePartial verifies a document with only one of the two required
// collections is accepted — import is per-field.
func TestParsePartial(t *testing.T) {
	doc, err := Parse([]byte(`{"templates": []}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Templates == nil {
		t.Error("templates should be present (empty)")
	}
	if doc.Sessions != nil {
		t.Error("sessions should be absent (nil)")
	}
}

// TestParseInvalidJSON verifies garbage input errors rather than yielding a
// zero document.
func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

// TestFilename verifies the date-stamped export name.
func TestFilename(t *testing.T) {
	got := Filename(time.Date(2025, 5, 3, 23, 59, 0, 0, time.UTC))
	if want := "ironlog_backup_2025-05-03.json"; got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}
}
