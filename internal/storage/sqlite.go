package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claude/ironlog/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the default backend: a single-file SQLite database holding
// one row per slot. Suited to the single-user, local deployment.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at dir/ironlog.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "ironlog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating slots table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) getSlot(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) putSlot(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

// LoadSessions reads the sessions slot.
func (s *SQLiteStore) LoadSessions(ctx context.Context) ([]models.WorkoutSession, error) {
	var sessions []models.WorkoutSession
	if err := loadSlot(ctx, s, slotSessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SaveSessions rewrites the sessions slot.
func (s *SQLiteStore) SaveSessions(ctx context.Context, sessions []models.WorkoutSession) error {
	return saveSlot(ctx, s, slotSessions, sessions)
}

// LoadTemplates reads the templates slot.
func (s *SQLiteStore) LoadTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	var templates []models.WorkoutTemplate
	if err := loadSlot(ctx, s, slotTemplates, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// SaveTemplates rewrites the templates slot.
func (s *SQLiteStore) SaveTemplates(ctx context.Context, templates []models.WorkoutTemplate) error {
	return saveSlot(ctx, s, slotTemplates, templates)
}

// LoadPRs reads the PR map slot.
func (s *SQLiteStore) LoadPRs(ctx context.Context) (map[string]float64, error) {
	prs := map[string]float64{}
	if err := loadSlot(ctx, s, slotPRs, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// SavePRs rewrites the PR map slot.
func (s *SQLiteStore) SavePRs(ctx context.Context, prs map[string]float64) error {
	return saveSlot(ctx, s, slotPRs, prs)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
