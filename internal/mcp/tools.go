package mcp

import (
	"context"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// validDate checks a YYYY-MM-DD parameter; empty is allowed (open range).
func validDate(s string) error {
	if s == "" {
		return nil
	}
	_, err := time.Parse("2006-01-02", s)
	return err
}

// --- Tool definitions ---

var toolListSessions = mcp.NewTool("list_sessions",
	mcp.WithDescription("List workout sessions. Open sessions come first in date order, completed sessions after, newest first."),
	mcp.WithString("status", mcp.Description("Filter: 'open', 'completed', or 'all'. Defaults to 'all'."), mcp.Enum("open", "completed", "all")),
)

var toolGetSession = mcp.NewTool("get_session",
	mcp.WithDescription("Get one workout session with all exercises and sets, including completion state and total volume."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Session ID")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Get the best known estimated one-rep max (e1RM) per exercise name."),
)

var toolGetTrainingVolume = mcp.NewTool("get_training_volume",
	mcp.WithDescription("Sum completed working-set tonnage (weight × reps) per session date over a date range."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Open-ended when omitted.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Open-ended when omitted.")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List workout templates with their exercises and default set/rep schemes."),
)

// --- Tool handlers ---

func (h *handlers) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "all")

	sessions, err := h.ds.ListSessions(ctx)
	if err != nil {
		h.log.Error("mcp list_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if status != "all" {
		wantCompleted := status == "completed"
		filtered := sessions[:0]
		for _, s := range sessions {
			if s.IsCompleted == wantCompleted {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	session, err := h.ds.GetSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"session": session,
		"volume":  session.Volume(),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prs, err := h.ds.PersonalRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(prs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := req.GetString("start", "")
	end := req.GetString("end", "")
	if err := validDate(start); err != nil {
		return mcp.NewToolResultError("invalid start date: " + err.Error()), nil
	}
	if err := validDate(end); err != nil {
		return mcp.NewToolResultError("invalid end date: " + err.Error()), nil
	}

	volume, err := h.ds.TrainingVolume(ctx, start, end)
	if err != nil {
		h.log.Error("mcp get_training_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(volume)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.ds.ListTemplates(ctx)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if templates == nil {
		templates = []models.WorkoutTemplate{}
	}

	result, err := mcp.NewToolResultJSON(templates)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
