// Package tracker wires the stores, the session engine, the warm-up advisor
// and the single rest timer into one service. All mutations run under one
// lock and persist their collection before returning, so the stores only
// ever see fully-formed replacement values.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/ironlog/internal/backup"
	"github.com/claude/ironlog/internal/engine"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/storage"
)

// ErrSessionNotFound is returned for operations on unknown session ids.
var ErrSessionNotFound = errors.New("tracker: session not found")

// ErrExerciseNotFound is returned for operations on unknown exercise ids.
var ErrExerciseNotFound = errors.New("tracker: exercise not found")

// ErrSetNotFound is returned for operations on unknown set ids.
var ErrSetNotFound = errors.New("tracker: set not found")

// ErrStaleWarmup marks an advisor response that arrived after a newer
// request for the same exercise, or after the session went away. The
// response is dropped; last write wins.
var ErrStaleWarmup = errors.New("tracker: warmup response superseded")

// Service owns the in-memory user data and the rest timer.
type Service struct {
	store   storage.Store
	advisor engine.WarmupAdvisor
	timer   *engine.RestTimer
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	sessions  []models.WorkoutSession
	templates []models.WorkoutTemplate
	prs       map[string]float64

	// Latest outstanding warm-up request token per exercise id. A response
	// only applies while its token is still current.
	warmupTokens map[string]string
}

// New loads all three slots and seeds default templates on first run. A
// corrupt or unreadable slot is logged and treated as empty so the service
// always starts.
func New(ctx context.Context, store storage.Store, advisor engine.WarmupAdvisor, log *slog.Logger) (*Service, error) {
	s := &Service{
		store:        store,
		advisor:      advisor,
		timer:        engine.NewRestTimer(),
		log:          log,
		now:          time.Now,
		prs:          map[string]float64{},
		warmupTokens: map[string]string{},
	}

	sessions, err := store.LoadSessions(ctx)
	if err != nil {
		log.Warn("sessions slot unreadable, starting empty", "error", err)
	} else {
		s.sessions = sessions
	}

	templates, err := store.LoadTemplates(ctx)
	if err != nil {
		log.Warn("templates slot unreadable, starting empty", "error", err)
	} else {
		s.templates = templates
	}

	prs, err := store.LoadPRs(ctx)
	if err != nil {
		log.Warn("pr slot unreadable, starting empty", "error", err)
	} else if prs != nil {
		s.prs = prs
	}

	if len(s.templates) == 0 {
		s.templates = models.DefaultTemplates()
		if err := store.SaveTemplates(ctx, s.templates); err != nil {
			log.Warn("seeding default templates failed", "error", err)
		} else {
			log.Info("seeded default templates", "count", len(s.templates))
		}
	}

	return s, nil
}

// Timer returns the rest timer, for direct start/extend/stop commands.
func (s *Service) Timer() *engine.RestTimer {
	return s.timer
}

// Sessions returns all sessions in display order: open ascending by date,
// completed descending.
func (s *Service) Sessions() []models.WorkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WorkoutSession, 0, len(s.sessions))
	for i := range s.sessions {
		out = append(out, *s.sessions[i].Clone())
	}
	storage.SortSessions(out)
	return out
}

// Session returns a copy of one session.
func (s *Service) Session(id string) (*models.WorkoutSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(id)
	if sess == nil {
		return nil, false
	}
	return sess.Clone(), true
}

// Templates returns all workout templates.
func (s *Service) Templates() []models.WorkoutTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WorkoutTemplate(nil), s.templates...)
}

// PersonalRecords returns a copy of the PR map.
func (s *Service) PersonalRecords() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.prs))
	for name, pr := range s.prs {
		out[name] = pr
	}
	return out
}

// CreateSession instantiates a session from a template. An unknown template
// id is a silent no-op: no session is created and no error is returned —
// the caller's UI is responsible for offering only real templates.
func (s *Service) CreateSession(ctx context.Context, date, templateID string) *models.WorkoutSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tpl *models.WorkoutTemplate
	for i := range s.templates {
		if s.templates[i].ID == templateID {
			tpl = &s.templates[i]
			break
		}
	}
	if tpl == nil {
		s.log.Debug("create session: unknown template", "template_id", templateID)
		return nil
	}

	session := engine.CreateSession(tpl, date, s.prs)
	s.sessions = append(s.sessions, *session)
	s.persistSessions(ctx)
	return session.Clone()
}

// EnterSession loads a session for viewing or editing. Open sessions get
// their PR snapshots refreshed from the PR map wherever unset, so a PR
// earned by finishing another session reaches a still-open plan.
func (s *Service) EnterSession(ctx context.Context, id string) (*models.WorkoutSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(id)
	if sess == nil {
		return nil, false
	}
	if !sess.IsCompleted {
		engine.RefreshPRs(sess, s.prs)
		s.persistSessions(ctx)
	}
	return sess.Clone(), true
}

// UpdateSession replaces a session wholesale (the "save progress" path).
// Unknown ids are rejected; the session keeps its identity.
func (s *Service) UpdateSession(ctx context.Context, updated *models.WorkoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == updated.ID {
			s.sessions[i] = *updated.Clone()
			s.persistSessions(ctx)
			return nil
		}
	}
	return ErrSessionNotFound
}

// UpdateExercise replaces one exercise plan within a session. A rename
// resets the plan's PR snapshot to the stored PR for the new name, so a
// stale PR never survives an identity change.
func (s *Service) UpdateExercise(ctx context.Context, sessionID string, plan models.ExercisePlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	existing := sess.FindExercise(plan.ID)
	if existing == nil {
		return ErrExerciseNotFound
	}
	if existing.Name != plan.Name {
		plan.CurrentPR = s.prs[plan.Name]
	}
	*existing = plan
	s.persistSessions(ctx)
	return nil
}

// AddExercise appends a new exercise plan to a session.
func (s *Service) AddExercise(ctx context.Context, sessionID, name string, targetWeight float64, targetSets, targetReps int) (*models.ExercisePlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(sessionID)
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	plan := engine.AddExercise(sess, name, targetWeight, targetSets, targetReps)
	s.persistSessions(ctx)
	out := *plan
	out.Sets = append([]models.SetRecord(nil), plan.Sets...)
	return &out, nil
}

// AddSet inserts a manually entered set into an exercise.
func (s *Service) AddSet(ctx context.Context, sessionID, exerciseID string, set models.SetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	if !engine.AddSet(sess, exerciseID, set) {
		return ErrExerciseNotFound
	}
	s.persistSessions(ctx)
	return nil
}

// UpdateSet overwrites a set's weight and reps.
func (s *Service) UpdateSet(ctx context.Context, sessionID, exerciseID, setID string, weight float64, reps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	if !engine.UpdateSet(sess, exerciseID, setID, weight, reps) {
		return ErrSetNotFound
	}
	s.persistSessions(ctx)
	return nil
}

// RemoveSet deletes a set from an exercise.
func (s *Service) RemoveSet(ctx context.Context, sessionID, exerciseID, setID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	if !engine.RemoveSet(sess, exerciseID, setID) {
		return ErrSetNotFound
	}
	s.persistSessions(ctx)
	return nil
}

// StartLogger moves a session from planning to logging, synthesizing
// working sets from each exercise's targets. Safe to call repeatedly.
func (s *Service) StartLogger(ctx context.Context, id string) (*models.WorkoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(id)
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if added := engine.PopulateWorkingSets(sess); added > 0 {
		s.log.Debug("populated working sets", "session", id, "added", added)
	}
	s.persistSessions(ctx)
	return sess.Clone(), nil
}

// CompleteSet toggles a set's completed flag. On the transition to
// completed it starts the rest timer with the engine's suggested duration
// and returns the duration in seconds (0 when no timer applies).
func (s *Service) CompleteSet(ctx context.Context, sessionID, exerciseID, setID string) (restSeconds int, completed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(sessionID)
	if sess == nil {
		return 0, false, ErrSessionNotFound
	}
	rest, completed, ok := engine.CompleteSet(sess, exerciseID, setID)
	if !ok {
		return 0, false, ErrSetNotFound
	}
	if rest > 0 {
		s.timer.Start(rest)
	}
	s.persistSessions(ctx)
	return int(rest / time.Second), completed, nil
}

// GenerateWarmup asks the advisor for warm-up sets and applies them to the
// exercise, replacing existing warmups. The advisor call runs outside the
// lock; a response only applies while its request is still the exercise's
// latest and the session still exists, otherwise ErrStaleWarmup.
func (s *Service) GenerateWarmup(ctx context.Context, sessionID, exerciseID string) (*models.WorkoutSession, error) {
	s.mu.Lock()
	sess := s.find(sessionID)
	if sess == nil {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	ex := sess.FindExercise(exerciseID)
	if ex == nil {
		s.mu.Unlock()
		return nil, ErrExerciseNotFound
	}
	name, weight, pr := ex.Name, ex.TargetWeight, ex.CurrentPR
	token := models.NewID()
	s.warmupTokens[exerciseID] = token
	s.mu.Unlock()

	warmups, err := s.advisor.Suggest(ctx, name, weight, pr)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.warmupTokens[exerciseID] != token {
		return nil, ErrStaleWarmup
	}
	delete(s.warmupTokens, exerciseID)
	sess = s.find(sessionID)
	if sess == nil || !engine.ApplyWarmupSets(sess, exerciseID, warmups) {
		return nil, ErrStaleWarmup
	}
	s.persistSessions(ctx)
	return sess.Clone(), nil
}

// FinishSession stamps the session completed and reconciles PRs. Completion
// is the hard guarantee: a failure anywhere in the PR math is logged and
// swallowed, and the session is stamped regardless. The completed session
// and the PR map are persisted together.
func (s *Service) FinishSession(ctx context.Context, id string) (*models.WorkoutSession, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(id)
	if sess == nil {
		return nil, 0, ErrSessionNotFound
	}

	now := s.now()
	updatedPRs, raised := s.prs, 0
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("pr reconciliation failed, finishing anyway", "session", id, "panic", r)
			}
		}()
		updatedPRs, raised = engine.Finish(sess, s.prs, now)
	}()
	if !sess.IsCompleted {
		sess.IsCompleted = true
		sess.CompletedAt = &now
	}
	s.prs = updatedPRs

	s.persistSessions(ctx)
	s.persistPRs(ctx)
	if raised > 0 {
		s.log.Info("personal records raised", "session", id, "count", raised)
	}
	return sess.Clone(), raised, nil
}

// DeleteSession removes a session irreversibly. Confirmation is the
// caller's concern.
func (s *Service) DeleteSession(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			for _, ex := range s.sessions[i].Exercises {
				delete(s.warmupTokens, ex.ID)
			}
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			s.persistSessions(ctx)
			return true
		}
	}
	return false
}

func (s *Service) find(id string) *models.WorkoutSession {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return &s.sessions[i]
		}
	}
	return nil
}

// Persistence is fire-and-forget after each committed transition: a write
// failure is logged, never surfaced, and the in-memory state stands.
func (s *Service) persistSessions(ctx context.Context) {
	if err := s.store.SaveSessions(ctx, s.sessions); err != nil {
		s.log.Error("persisting sessions failed", "error", err)
	}
}

func (s *Service) persistTemplates(ctx context.Context) {
	if err := s.store.SaveTemplates(ctx, s.templates); err != nil {
		s.log.Error("persisting templates failed", "error", err)
	}
}

func (s *Service) persistPRs(ctx context.Context) {
	if err := s.store.SavePRs(ctx, s.prs); err != nil {
		s.log.Error("persisting prs failed", "error", err)
	}
}

// CreateTemplate adds a new empty template and returns it.
func (s *Service) CreateTemplate(ctx context.Context, name string) models.WorkoutTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl := models.WorkoutTemplate{
		ID:        models.NewID(),
		Name:      name,
		Exercises: []models.ExerciseTemplate{},
	}
	s.templates = append(s.templates, tpl)
	s.persistTemplates(ctx)
	return tpl
}

// UpdateTemplate replaces a template wholesale. Sessions already created
// from it are unaffected — templates seed sessions one way only.
func (s *Service) UpdateTemplate(ctx context.Context, updated models.WorkoutTemplate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == updated.ID {
			s.templates[i] = updated
			s.persistTemplates(ctx)
			return true
		}
	}
	return false
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			s.persistTemplates(ctx)
			return true
		}
	}
	return false
}

// ExportBackup serializes the full current snapshot.
func (s *Service) ExportBackup() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return backup.Export(s.sessions, s.templates, s.prs, s.now())
}

// ImportBackup validates a backup document and applies it. Each top-level
// field present in the document overwrites the corresponding collection
// wholesale; absent fields are left alone. A malformed document leaves all
// state untouched.
func (s *Service) ImportBackup(ctx context.Context, data []byte) (*models.Backup, error) {
	doc, err := backup.Parse(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Sessions != nil {
		s.sessions = doc.Sessions
		s.persistSessions(ctx)
	}
	if doc.Templates != nil {
		s.templates = doc.Templates
		s.persistTemplates(ctx)
	}
	if doc.SavedPRs != nil {
		s.prs = doc.SavedPRs
		s.persistPRs(ctx)
	}
	return doc, nil
}

// VolumeByDate sums completed working-set tonnage per session date over an
// inclusive date range. Used by the MCP training-volume tool.
func (s *Service) VolumeByDate(start, end string) map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]float64{}
	for i := range s.sessions {
		sess := &s.sessions[i]
		if start != "" && sess.Date < start {
			continue
		}
		if end != "" && sess.Date > end {
			continue
		}
		if v := sess.Volume(); v > 0 {
			out[sess.Date] += v
		}
	}
	return out
}
