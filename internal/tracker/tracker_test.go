package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/claude/ironlog/internal/backup"
	"github.com/claude/ironlog/internal/engine"
	"github.com/claude/ironlog/internal/models"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	sessions  []models.WorkoutSession
	templates []models.WorkoutTemplate
	prs       map[string]float64
}

func (m *memStore) LoadSessions(ctx context.Context) ([]models.WorkoutSession, error) {
	return m.sessions, nil
}

func (m *memStore) SaveSessions(ctx context.Context, sessions []models.WorkoutSession) error {
	m.sessions = append([]models.WorkoutSession(nil), sessions...)
	return nil
}

func (m *memStore) LoadTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	return m.templates, nil
}

func (m *memStore) SaveTemplates(ctx context.Context, templates []models.WorkoutTemplate) error {
	m.templates = append([]models.WorkoutTemplate(nil), templates...)
	return nil
}

func (m *memStore) LoadPRs(ctx context.Context) (map[string]float64, error) {
	return m.prs, nil
}

func (m *memStore) SavePRs(ctx context.Context, prs map[string]float64) error {
	m.prs = prs
	return nil
}

func (m *memStore) Close() error { return nil }

// failStore errors on every read.
type failStore struct{ memStore }

var errStore = errors.New("store down")

func (f *failStore) LoadSessions(ctx context.Context) ([]models.WorkoutSession, error) {
	return nil, errStore
}

func (f *failStore) LoadTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	return nil, errStore
}

func (f *failStore) LoadPRs(ctx context.Context) (map[string]float64, error) {
	return nil, errStore
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, store *memStore) *Service {
	t.Helper()
	svc, err := New(context.Background(), store, engine.RampAdvisor{}, discardLogger())
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	t.Cleanup(func() { svc.Timer().Stop() })
	return svc
}

// TestNewSeedsDefaultTemplates verifies a first run installs and persists
// the built-in templates.
func TestNewSeedsDefaultTemplates(t *testing.T) {
	store := &memStore{}
	svc := newTestService(t, store)

	templates := svc.Templates()
	if len(templates) != 2 {
		t.Fatalf("got %d templates, want 2 defaults", len(templates))
	}
	if len(store.templates) != 2 {
		t.Errorf("defaults not persisted: store has %d", len(store.templates))
	}
}

// TestNewSkipsSeedingWhenTemplatesExist verifies existing templates are
// never overwritten with defaults.
func TestNewSkipsSeedingWhenTemplatesExist(t *testing.T) {
	store := &memStore{templates: []models.WorkoutTemplate{{ID: "mine", Name: "Legs"}}}
	svc := newTestService(t, store)

	templates := svc.Templates()
	if len(templates) != 1 || templates[0].ID != "mine" {
		t.Errorf("templates = %+v, want only the stored one", templates)
	}
}

// TestNewUnreadableStore verifies the service still starts, with empty
// collections, when every slot read fails.
func TestNewUnreadableStore(t *testing.T) {
	svc, err := New(context.Background(), &failStore{}, engine.RampAdvisor{}, discardLogger())
	if err != nil {
		t.Fatalf("service must start despite read failures, got %v", err)
	}
	defer svc.Timer().Stop()
	if n := len(svc.Sessions()); n != 0 {
		t.Errorf("got %d sessions, want 0", n)
	}
	if n := len(svc.Templates()); n != 2 {
		t.Errorf("got %d templates, want the 2 seeded defaults", n)
	}
}

// TestCreateSessionUnknownTemplate verifies an unknown template id is a
// silent no-op.
func TestCreateSessionUnknownTemplate(t *testing.T) {
	svc := newTestService(t, &memStore{})
	if sess := svc.CreateSession(context.Background(), "2025-05-02", "no-such"); sess != nil {
		t.Errorf("got session %+v, want nil", sess)
	}
	if n := len(svc.Sessions()); n != 0 {
		t.Errorf("got %d sessions, want 0", n)
	}
}

// TestWorkoutLifecycle runs the full path: create from template, start the
// logger, log five heavy bench sets, finish, and confirm the earned PR
// reaches a second open session on entry.
func TestWorkoutLifecycle(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := newTestService(t, store)

	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")
	if sess == nil {
		t.Fatal("session not created")
	}
	if sess.Title != "Upper Push" || len(sess.Exercises) != 3 {
		t.Fatalf("unexpected session shape: %+v", sess)
	}

	other := svc.CreateSession(ctx, "2025-05-09", "tpl-push")
	if other == nil {
		t.Fatal("second session not created")
	}

	sess, err := svc.StartLogger(ctx, sess.ID)
	if err != nil {
		t.Fatalf("starting logger: %v", err)
	}
	bench := sess.Exercises[0]
	if bench.Name != "Barbell Bench Press" || len(bench.Sets) != 5 {
		t.Fatalf("bench not populated: %+v", bench)
	}

	for _, set := range bench.Sets {
		if err := svc.UpdateSet(ctx, sess.ID, bench.ID, set.ID, 100, 5); err != nil {
			t.Fatalf("updating set: %v", err)
		}
		rest, completed, err := svc.CompleteSet(ctx, sess.ID, bench.ID, set.ID)
		if err != nil {
			t.Fatalf("completing set: %v", err)
		}
		if !completed || rest != 180 {
			t.Errorf("complete set: rest=%d completed=%v, want 180s heavy rest", rest, completed)
		}
	}

	finished, raised, err := svc.FinishSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("finishing: %v", err)
	}
	if !finished.IsCompleted || finished.CompletedAt == nil {
		t.Error("finished session not stamped")
	}
	if raised != 1 {
		t.Errorf("raised = %d, want 1", raised)
	}
	// 100 kg x 5 reps, Epley: 100 * (1 + 5/30) rounds to 117.
	if pr := svc.PersonalRecords()["Barbell Bench Press"]; pr != 117 {
		t.Errorf("stored PR = %v, want 117", pr)
	}
	if store.prs["Barbell Bench Press"] != 117 {
		t.Errorf("PR not persisted: %v", store.prs)
	}

	// The other session was created before the PR existed; entering it
	// refreshes the snapshot.
	entered, ok := svc.EnterSession(ctx, other.ID)
	if !ok {
		t.Fatal("other session not found")
	}
	if entered.Exercises[0].CurrentPR != 117 {
		t.Errorf("entered snapshot = %v, want 117", entered.Exercises[0].CurrentPR)
	}

	// Display order: the open session first, then the completed one.
	all := svc.Sessions()
	if len(all) != 2 || all[0].ID != other.ID || all[1].ID != sess.ID {
		t.Errorf("unexpected display order: %v, %v", all[0].ID, all[1].ID)
	}
}

// TestUpdateExerciseRename verifies renaming an exercise resets its PR
// snapshot to the stored PR for the new name.
func TestUpdateExerciseRename(t *testing.T) {
	ctx := context.Background()
	store := &memStore{prs: map[string]float64{"Incline Bench Press": 90}}
	svc := newTestService(t, store)

	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")
	plan := sess.Exercises[0]
	plan.Name = "Incline Bench Press"
	plan.CurrentPR = 117 // must be replaced, not kept

	if err := svc.UpdateExercise(ctx, sess.ID, plan); err != nil {
		t.Fatalf("updating exercise: %v", err)
	}
	got, _ := svc.Session(sess.ID)
	if got.Exercises[0].CurrentPR != 90 {
		t.Errorf("snapshot after rename = %v, want 90", got.Exercises[0].CurrentPR)
	}
}

// TestGenerateWarmup verifies the ramp advisor's sets land on the exercise.
func TestGenerateWarmup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memStore{})

	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")
	plan := sess.Exercises[0]
	plan.TargetWeight = 100
	if err := svc.UpdateExercise(ctx, sess.ID, plan); err != nil {
		t.Fatalf("setting target weight: %v", err)
	}

	updated, err := svc.GenerateWarmup(ctx, sess.ID, plan.ID)
	if err != nil {
		t.Fatalf("generating warmup: %v", err)
	}
	sets := updated.Exercises[0].Sets
	if len(sets) != 3 {
		t.Fatalf("got %d sets, want 3 warmups", len(sets))
	}
	for i, want := range []float64{50, 70, 90} {
		if sets[i].Kind != models.SetWarmup || sets[i].Weight != want {
			t.Errorf("warmup %d = %+v, want %v kg warmup", i, sets[i], want)
		}
	}
}

// hookAdvisor returns canned warm-up sets and runs a hook during the first
// in-flight request, simulating work racing with the advisor call.
type hookAdvisor struct {
	calls int
	hook  func()
}

func (a *hookAdvisor) Suggest(ctx context.Context, name string, targetWeight, currentPR float64) ([]models.SetRecord, error) {
	a.calls++
	id := "first"
	if a.calls > 1 {
		id = "second"
	}
	if a.calls == 1 && a.hook != nil {
		a.hook()
	}
	return []models.SetRecord{{ID: id, Kind: models.SetWarmup, Weight: 40, Reps: 10}}, nil
}

// TestGenerateWarmupSuperseded verifies that when a newer warm-up request
// lands while the first is in flight, the first response is dropped and the
// newer one stands.
func TestGenerateWarmupSuperseded(t *testing.T) {
	ctx := context.Background()
	advisor := &hookAdvisor{}
	svc, err := New(ctx, &memStore{}, advisor, discardLogger())
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	defer svc.Timer().Stop()

	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")
	exID := sess.Exercises[0].ID

	advisor.hook = func() {
		if _, err := svc.GenerateWarmup(ctx, sess.ID, exID); err != nil {
			t.Errorf("newer request failed: %v", err)
		}
	}

	if _, err := svc.GenerateWarmup(ctx, sess.ID, exID); !errors.Is(err, ErrStaleWarmup) {
		t.Fatalf("first request: err = %v, want ErrStaleWarmup", err)
	}

	got, _ := svc.Session(sess.ID)
	sets := got.Exercises[0].Sets
	if len(sets) != 1 || sets[0].ID != "second" {
		t.Errorf("sets = %+v, want only the newer response", sets)
	}
}

// TestGenerateWarmupSessionDeleted verifies a response for a session deleted
// mid-request is dropped.
func TestGenerateWarmupSessionDeleted(t *testing.T) {
	ctx := context.Background()
	advisor := &hookAdvisor{}
	svc, err := New(ctx, &memStore{}, advisor, discardLogger())
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	defer svc.Timer().Stop()

	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")
	advisor.hook = func() { svc.DeleteSession(ctx, sess.ID) }

	if _, err := svc.GenerateWarmup(ctx, sess.ID, sess.Exercises[0].ID); !errors.Is(err, ErrStaleWarmup) {
		t.Errorf("err = %v, want ErrStaleWarmup", err)
	}
}

// TestBackupRoundTrip exports the full state and imports it into a fresh
// service.
func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memStore{})

	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")
	data, err := svc.ExportBackup()
	if err != nil {
		t.Fatalf("exporting: %v", err)
	}

	fresh := newTestService(t, &memStore{})
	if _, err := fresh.ImportBackup(ctx, data); err != nil {
		t.Fatalf("importing: %v", err)
	}
	if _, ok := fresh.Session(sess.ID); !ok {
		t.Error("imported session missing")
	}
	if n := len(fresh.Templates()); n != 2 {
		t.Errorf("got %d templates after import, want 2", n)
	}
}

// TestImportMalformedLeavesState verifies a rejected document changes
// nothing.
func TestImportMalformedLeavesState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memStore{})
	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")

	_, err := svc.ImportBackup(ctx, []byte(`{"savedPRs": {}}`))
	if !errors.Is(err, backup.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if _, ok := svc.Session(sess.ID); !ok {
		t.Error("existing session lost on rejected import")
	}
}

// TestDeleteSession covers removal and the not-found case.
func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memStore{})
	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")

	if !svc.DeleteSession(ctx, sess.ID) {
		t.Error("delete reported not found")
	}
	if svc.DeleteSession(ctx, sess.ID) {
		t.Error("second delete reported success")
	}
	if n := len(svc.Sessions()); n != 0 {
		t.Errorf("got %d sessions after delete, want 0", n)
	}
}

// TestVolumeByDate verifies tonnage aggregation and range filtering.
func TestVolumeByDate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &memStore{})

	sess := svc.CreateSession(ctx, "2025-05-02", "tpl-push")
	started, err := svc.StartLogger(ctx, sess.ID)
	if err != nil {
		t.Fatalf("starting logger: %v", err)
	}
	bench := started.Exercises[0]
	set := bench.Sets[0]
	if err := svc.UpdateSet(ctx, sess.ID, bench.ID, set.ID, 100, 5); err != nil {
		t.Fatalf("updating set: %v", err)
	}
	if _, _, err := svc.CompleteSet(ctx, sess.ID, bench.ID, set.ID); err != nil {
		t.Fatalf("completing set: %v", err)
	}

	if got := svc.VolumeByDate("", "")["2025-05-02"]; got != 500 {
		t.Errorf("volume = %v, want 500", got)
	}
	if got := svc.VolumeByDate("2025-05-03", ""); len(got) != 0 {
		t.Errorf("out-of-range volume = %v, want empty", got)
	}
}
