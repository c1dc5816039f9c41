package mcp

import (
	"context"
	"fmt"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. LocalSource (in-process
// tracker) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	ListSessions(ctx context.Context) ([]models.WorkoutSession, error)
	GetSession(ctx context.Context, id string) (*models.WorkoutSession, error)
	ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error)
	PersonalRecords(ctx context.Context) (map[string]float64, error)
	TrainingVolume(ctx context.Context, start, end string) (map[string]float64, error)
}

// LocalSource serves MCP tools from an in-process tracker service.
type LocalSource struct {
	svc *tracker.Service
}

var _ DataSource = (*LocalSource)(nil)

// NewLocalSource wraps a tracker service.
func NewLocalSource(svc *tracker.Service) *LocalSource {
	return &LocalSource{svc: svc}
}

func (l *LocalSource) ListSessions(context.Context) ([]models.WorkoutSession, error) {
	return l.svc.Sessions(), nil
}

func (l *LocalSource) GetSession(_ context.Context, id string) (*models.WorkoutSession, error) {
	session, ok := l.svc.Session(id)
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return session, nil
}

func (l *LocalSource) ListTemplates(context.Context) ([]models.WorkoutTemplate, error) {
	return l.svc.Templates(), nil
}

func (l *LocalSource) PersonalRecords(context.Context) (map[string]float64, error) {
	return l.svc.PersonalRecords(), nil
}

func (l *LocalSource) TrainingVolume(_ context.Context, start, end string) (map[string]float64, error) {
	return l.svc.VolumeByDate(start, end), nil
}
