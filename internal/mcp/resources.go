package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/ironlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) upcomingSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sessions, err := h.ds.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	upcoming := []models.WorkoutSession{}
	for _, s := range sessions {
		if !s.IsCompleted {
			upcoming = append(upcoming, s)
		}
	}
	return jsonResource(req.Params.URI, upcoming)
}

func (h *handlers) personalRecords(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	prs, err := h.ds.PersonalRecords(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, prs)
}

func (h *handlers) templateCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	templates, err := h.ds.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []models.WorkoutTemplate{}
	}
	return jsonResource(req.Params.URI, templates)
}
