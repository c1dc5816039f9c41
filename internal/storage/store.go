// Package storage persists the three user-data collections — sessions,
// templates and the PR map — as independently keyed slots. Each slot is read
// once at startup and rewritten whole after every committed mutation; no
// backend ever applies a partial patch.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/claude/ironlog/internal/models"
)

// Slot keys shared by all backends.
const (
	slotSessions  = "sessions"
	slotTemplates = "templates"
	slotPRs       = "prs"
)

// Store is the persistence boundary. Load methods return empty collections
// for slots that have never been written.
type Store interface {
	LoadSessions(ctx context.Context) ([]models.WorkoutSession, error)
	SaveSessions(ctx context.Context, sessions []models.WorkoutSession) error
	LoadTemplates(ctx context.Context) ([]models.WorkoutTemplate, error)
	SaveTemplates(ctx context.Context, templates []models.WorkoutTemplate) error
	LoadPRs(ctx context.Context) (map[string]float64, error)
	SavePRs(ctx context.Context, prs map[string]float64) error
	Close() error
}

// slotStore is the primitive all backends implement: get returns the raw
// slot value and whether it exists.
type slotStore interface {
	getSlot(ctx context.Context, key string) ([]byte, bool, error)
	putSlot(ctx context.Context, key string, value []byte) error
}

func loadSlot(ctx context.Context, s slotStore, key string, dst any) error {
	raw, ok, err := s.getSlot(ctx, key)
	if err != nil {
		return fmt.Errorf("reading slot %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decoding slot %s: %w", key, err)
	}
	return nil
}

func saveSlot(ctx context.Context, s slotStore, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding slot %s: %w", key, err)
	}
	if err := s.putSlot(ctx, key, raw); err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

// SortSessions orders sessions for display: open sessions first, ascending
// by date; completed sessions after, descending by date. Recomputed on read
// rather than stored sorted.
func SortSessions(sessions []models.WorkoutSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		if a.IsCompleted {
			return a.Date > b.Date
		}
		return a.Date < b.Date
	})
}
