package models

import (
	"time"

	"github.com/google/uuid"
)

// SetKind classifies a logged set. Values match the wire format used by
// backup files, so exports from older clients import cleanly.
type SetKind string

const (
	SetWarmup  SetKind = "WARMUP"
	SetWorking SetKind = "WORKING"
	SetDrop    SetKind = "DROP"
	SetFailure SetKind = "FAILURE"
)

// SetRecord is a single planned or performed set. Identity is fixed at
// creation; weight, reps and completed are mutated in place by the owning
// exercise plan. Order within an exercise's set list is the planned
// performance order.
type SetRecord struct {
	ID        string   `json:"id"`
	Kind      SetKind  `json:"type"`
	Weight    float64  `json:"weight"`
	Reps      int      `json:"reps"`
	RPE       *float64 `json:"rpe,omitempty"`
	Completed bool     `json:"completed"`
}

// ExercisePlan is one exercise within a session. CurrentPR is a snapshot of
// the PR map taken at plan creation or rename time, not a live reference —
// the user may overwrite it per-session to plan against a hypothetical 1RM.
type ExercisePlan struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	TargetWeight float64     `json:"targetWeight"`
	CurrentPR    float64     `json:"currentPR"`
	TargetReps   int         `json:"targetReps"`
	TargetSets   int         `json:"targetSets"`
	Notes        string      `json:"notes,omitempty"`
	Sets         []SetRecord `json:"sets"`
}

// WorkoutSession is a planned or completed workout. CompletedAt is non-nil
// exactly when IsCompleted is true.
type WorkoutSession struct {
	ID          string         `json:"id"`
	Date        string         `json:"date"` // YYYY-MM-DD
	Title       string         `json:"title"`
	Exercises   []ExercisePlan `json:"exercises"`
	IsCompleted bool           `json:"isCompleted"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// ExerciseTemplate is one entry in a workout template.
type ExerciseTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DefaultSets int    `json:"defaultSets"`
	DefaultReps int    `json:"defaultReps"`
}

// WorkoutTemplate is a reusable named exercise list used to seed new
// sessions. Session activity never mutates a template.
type WorkoutTemplate struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Exercises []ExerciseTemplate `json:"exercises"`
}

// NewID returns a fresh identifier for sessions, exercises and sets.
func NewID() string {
	return uuid.NewString()
}

// ParseDate parses the session's calendar date. Sessions carry no time of
// day; sorting and range queries use midnight UTC.
func (s *WorkoutSession) ParseDate() (time.Time, error) {
	return time.Parse("2006-01-02", s.Date)
}

// HasWorkingSets reports whether the plan already contains any working set.
func (e *ExercisePlan) HasWorkingSets() bool {
	for _, set := range e.Sets {
		if set.Kind == SetWorking {
			return true
		}
	}
	return false
}

// FindExercise returns the plan with the given id, or nil.
func (s *WorkoutSession) FindExercise(exerciseID string) *ExercisePlan {
	for i := range s.Exercises {
		if s.Exercises[i].ID == exerciseID {
			return &s.Exercises[i]
		}
	}
	return nil
}

// FindSet returns the set with the given id, or nil.
func (e *ExercisePlan) FindSet(setID string) *SetRecord {
	for i := range e.Sets {
		if e.Sets[i].ID == setID {
			return &e.Sets[i]
		}
	}
	return nil
}

// Volume is the session's total tonnage: Σ weight × reps over completed
// working sets.
func (s *WorkoutSession) Volume() float64 {
	var total float64
	for _, ex := range s.Exercises {
		for _, set := range ex.Sets {
			if set.Completed && set.Kind == SetWorking {
				total += set.Weight * float64(set.Reps)
			}
		}
	}
	return total
}

// Clone returns a deep copy of the session. Stores hand out clones so
// callers can't mutate persisted state behind the engine's back.
func (s *WorkoutSession) Clone() *WorkoutSession {
	c := *s
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	c.Exercises = make([]ExercisePlan, len(s.Exercises))
	for i, ex := range s.Exercises {
		ce := ex
		ce.Sets = make([]SetRecord, len(ex.Sets))
		for j, set := range ex.Sets {
			if set.RPE != nil {
				rpe := *set.RPE
				set.RPE = &rpe
			}
			ce.Sets[j] = set
		}
		c.Exercises[i] = ce
	}
	return &c
}
