// Package engine implements the session lifecycle: creation from templates,
// plan mutation, set-completion side effects, and completion with PR
// reconciliation. All functions operate on a session the caller owns;
// persistence and locking are the tracker's concern.
package engine

import (
	"time"

	"github.com/claude/ironlog/internal/models"
)

// Rest durations suggested when a set transitions to completed. Heavy
// working sets (five reps or fewer) get a full strength rest; higher-rep
// work recovers faster.
const (
	RestWarmup       = 60 * time.Second
	RestHeavyWorking = 180 * time.Second
	RestLightWorking = 90 * time.Second

	heavyRepCutoff = 5
)

// CreateSession builds a new open session from a template. Target weights
// start at zero — the template carries set/rep schemes, not loads — and each
// exercise's PR snapshot is seeded from the PR map (0 when absent).
func CreateSession(tpl *models.WorkoutTemplate, date string, prs map[string]float64) *models.WorkoutSession {
	session := &models.WorkoutSession{
		ID:        models.NewID(),
		Date:      date,
		Title:     tpl.Name,
		Exercises: make([]models.ExercisePlan, 0, len(tpl.Exercises)),
	}
	for _, ex := range tpl.Exercises {
		session.Exercises = append(session.Exercises, models.ExercisePlan{
			ID:         models.NewID(),
			Name:       ex.Name,
			CurrentPR:  prs[ex.Name],
			TargetReps: ex.DefaultReps,
			TargetSets: ex.DefaultSets,
			Sets:       []models.SetRecord{},
		})
	}
	return session
}

// RefreshPRs updates each exercise's PR snapshot from the PR map, but only
// where the snapshot is unset. A non-zero snapshot may be a deliberate
// manual override and is never clobbered. Called when re-entering an open
// session so PRs earned in other sessions flow in.
func RefreshPRs(session *models.WorkoutSession, prs map[string]float64) {
	for i := range session.Exercises {
		if session.Exercises[i].CurrentPR == 0 {
			session.Exercises[i].CurrentPR = prs[session.Exercises[i].Name]
		}
	}
}

// RenameExercise changes an exercise's name and resets its PR snapshot to
// the stored PR for the new name (0 when absent). Keeping the old snapshot
// would let a stale PR leak across exercise identities.
func RenameExercise(session *models.WorkoutSession, exerciseID, newName string, prs map[string]float64) bool {
	ex := session.FindExercise(exerciseID)
	if ex == nil {
		return false
	}
	ex.Name = newName
	ex.CurrentPR = prs[newName]
	return true
}

// AddExercise appends a fresh plan with the given name and scheme to the
// session and returns it.
func AddExercise(session *models.WorkoutSession, name string, targetWeight float64, targetSets, targetReps int) *models.ExercisePlan {
	session.Exercises = append(session.Exercises, models.ExercisePlan{
		ID:           models.NewID(),
		Name:         name,
		TargetWeight: targetWeight,
		TargetSets:   targetSets,
		TargetReps:   targetReps,
		Sets:         []models.SetRecord{},
	})
	return &session.Exercises[len(session.Exercises)-1]
}

// PopulateWorkingSets synthesizes working sets for every exercise that has
// none yet and a positive target, prefilled from the exercise's targets.
// Idempotent: an exercise with any existing working set is left untouched,
// so re-entering the logger never duplicates sets. Returns the number of
// sets added.
func PopulateWorkingSets(session *models.WorkoutSession) int {
	added := 0
	for i := range session.Exercises {
		ex := &session.Exercises[i]
		if ex.HasWorkingSets() || ex.TargetSets <= 0 {
			continue
		}
		for n := 0; n < ex.TargetSets; n++ {
			ex.Sets = append(ex.Sets, models.SetRecord{
				ID:     models.NewID(),
				Kind:   models.SetWorking,
				Weight: ex.TargetWeight,
				Reps:   ex.TargetReps,
			})
			added++
		}
	}
	return added
}

// AddSet inserts a manually entered set. Warmup sets slot in before the
// first working set so the display order stays warmups-first; all other
// kinds append.
func AddSet(session *models.WorkoutSession, exerciseID string, set models.SetRecord) bool {
	ex := session.FindExercise(exerciseID)
	if ex == nil {
		return false
	}
	if set.ID == "" {
		set.ID = models.NewID()
	}
	if set.Kind == models.SetWarmup {
		for i, existing := range ex.Sets {
			if existing.Kind == models.SetWorking {
				ex.Sets = append(ex.Sets[:i], append([]models.SetRecord{set}, ex.Sets[i:]...)...)
				return true
			}
		}
	}
	ex.Sets = append(ex.Sets, set)
	return true
}

// UpdateSet overwrites a set's weight and reps, clamping negatives to zero.
func UpdateSet(session *models.WorkoutSession, exerciseID, setID string, weight float64, reps int) bool {
	ex := session.FindExercise(exerciseID)
	if ex == nil {
		return false
	}
	set := ex.FindSet(setID)
	if set == nil {
		return false
	}
	set.Weight = max(weight, 0)
	set.Reps = max(reps, 0)
	return true
}

// RemoveSet deletes a set from an exercise.
func RemoveSet(session *models.WorkoutSession, exerciseID, setID string) bool {
	ex := session.FindExercise(exerciseID)
	if ex == nil {
		return false
	}
	for i, set := range ex.Sets {
		if set.ID == setID {
			ex.Sets = append(ex.Sets[:i], ex.Sets[i+1:]...)
			return true
		}
	}
	return false
}

// ApplyWarmupSets replaces the exercise's warmup sets with the advisor's
// output, preserving all non-warmup sets after them in their existing order.
func ApplyWarmupSets(session *models.WorkoutSession, exerciseID string, warmups []models.SetRecord) bool {
	ex := session.FindExercise(exerciseID)
	if ex == nil {
		return false
	}
	kept := make([]models.SetRecord, 0, len(ex.Sets))
	for _, set := range ex.Sets {
		if set.Kind != models.SetWarmup {
			kept = append(kept, set)
		}
	}
	ex.Sets = append(append([]models.SetRecord{}, warmups...), kept...)
	return true
}

// CompleteSet toggles a set's completed flag. Only the false→true
// transition yields a rest suggestion; un-completing a set never starts a
// timer. Drop and failure sets get no timer regardless.
func CompleteSet(session *models.WorkoutSession, exerciseID, setID string) (rest time.Duration, completed, ok bool) {
	ex := session.FindExercise(exerciseID)
	if ex == nil {
		return 0, false, false
	}
	set := ex.FindSet(setID)
	if set == nil {
		return 0, false, false
	}
	set.Completed = !set.Completed
	if !set.Completed {
		return 0, false, true
	}
	switch set.Kind {
	case models.SetWarmup:
		rest = RestWarmup
	case models.SetWorking:
		if set.Reps <= heavyRepCutoff {
			rest = RestHeavyWorking
		} else {
			rest = RestLightWorking
		}
	}
	return rest, true, true
}

// Finish stamps the session completed and reconciles PRs: for each exercise
// the best rounded e1RM over completed working sets raises the stored PR
// when it strictly exceeds it. Returns the updated PR map (a copy) and the
// number of PRs raised. Finishing is fail-safe — the session is stamped
// complete before any PR math runs, so a bad exercise can't block it.
func Finish(session *models.WorkoutSession, prs map[string]float64, now time.Time) (map[string]float64, int) {
	session.IsCompleted = true
	session.CompletedAt = &now

	updated := make(map[string]float64, len(prs))
	for name, pr := range prs {
		updated[name] = pr
	}
	raised := 0
	for i := range session.Exercises {
		ex := &session.Exercises[i]
		if best := ex.BestOneRM(); best > updated[ex.Name] {
			updated[ex.Name] = best
			raised++
		}
	}
	return updated, raised
}
