package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeTrackerError maps the tracker's sentinel errors to HTTP statuses.
func writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrSessionNotFound),
		errors.Is(err, tracker.ErrExerciseNotFound),
		errors.Is(err, tracker.ErrSetNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tracker.ErrStaleWarmup):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Sessions())
}

func (s *Server) handleEnterSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.svc.EnterSession(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date       string `json:"date"`
		TemplateID string `json:"templateId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	session := s.svc.CreateSession(r.Context(), req.Date, req.TemplateID)
	if session == nil {
		// Unknown template is a no-op in the engine; surface it here so
		// API clients aren't left guessing.
		writeError(w, http.StatusNotFound, "template not found")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var session models.WorkoutSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	session.ID = chi.URLParam(r, "id")
	if err := s.svc.UpdateSession(r.Context(), &session); err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.svc.DeleteSession(r.Context(), chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStartLogger(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.StartLogger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	session, raised, err := s.svc.FinishSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session":   session,
		"prsRaised": raised,
	})
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string  `json:"name"`
		TargetWeight float64 `json:"targetWeight"`
		TargetSets   int     `json:"targetSets"`
		TargetReps   int     `json:"targetReps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	plan, err := s.svc.AddExercise(r.Context(), chi.URLParam(r, "id"), req.Name, req.TargetWeight, req.TargetSets, req.TargetReps)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var plan models.ExercisePlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	plan.ID = chi.URLParam(r, "exerciseID")
	if err := s.svc.UpdateExercise(r.Context(), chi.URLParam(r, "id"), plan); err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleGenerateWarmup(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.GenerateWarmup(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "exerciseID"))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	var set models.SetRecord
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if set.Kind == "" {
		set.Kind = models.SetWorking
	}
	set.ID = ""
	set.Completed = false
	if err := s.svc.AddSet(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "exerciseID"), set); err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weight float64 `json:"weight"`
		Reps   int     `json:"reps"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	err := s.svc.UpdateSet(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "exerciseID"), chi.URLParam(r, "setID"), req.Weight, req.Reps)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	err := s.svc.RemoveSet(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "exerciseID"), chi.URLParam(r, "setID"))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleCompleteSet(w http.ResponseWriter, r *http.Request) {
	restSeconds, completed, err := s.svc.CompleteSet(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "exerciseID"), chi.URLParam(r, "setID"))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"completed":   completed,
		"restSeconds": restSeconds,
		"timer":       s.svc.Timer().State(),
	})
}

func (s *Server) handlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.PersonalRecords())
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	writeJSON(w, http.StatusOK, s.svc.VolumeByDate(start, end))
}

func (s *Server) handleTimer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Timer().State())
}

func (s *Server) handleExtendTimer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	s.svc.Timer().Extend(req.Seconds)
	writeJSON(w, http.StatusOK, s.svc.Timer().State())
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	s.svc.Timer().Stop()
	writeJSON(w, http.StatusOK, s.svc.Timer().State())
}
