package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/ironlog/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the slots in a Postgres table, for deployments that
// point multiple devices at one shared server.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres connects a pool and verifies the database is reachable.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func (s *PostgresStore) getSlot(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM slots WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *PostgresStore) putSlot(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO slots (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	return err
}

// LoadSessions reads the sessions slot.
func (s *PostgresStore) LoadSessions(ctx context.Context) ([]models.WorkoutSession, error) {
	var sessions []models.WorkoutSession
	if err := loadSlot(ctx, s, slotSessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// SaveSessions rewrites the sessions slot.
func (s *PostgresStore) SaveSessions(ctx context.Context, sessions []models.WorkoutSession) error {
	return saveSlot(ctx, s, slotSessions, sessions)
}

// LoadTemplates reads the templates slot.
func (s *PostgresStore) LoadTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	var templates []models.WorkoutTemplate
	if err := loadSlot(ctx, s, slotTemplates, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// SaveTemplates rewrites the templates slot.
func (s *PostgresStore) SaveTemplates(ctx context.Context, templates []models.WorkoutTemplate) error {
	return saveSlot(ctx, s, slotTemplates, templates)
}

// LoadPRs reads the PR map slot.
func (s *PostgresStore) LoadPRs(ctx context.Context) (map[string]float64, error) {
	prs := map[string]float64{}
	if err := loadSlot(ctx, s, slotPRs, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// SavePRs rewrites the PR map slot.
func (s *PostgresStore) SavePRs(ctx context.Context, prs map[string]float64) error {
	return saveSlot(ctx, s, slotPRs, prs)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
