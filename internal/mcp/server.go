package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronLog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronLog workout tracker. Query training sessions, personal records, templates, and training volume."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListSessions, Handler: h.listSessions},
		server.ServerTool{Tool: toolGetSession, Handler: h.getSession},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetTrainingVolume, Handler: h.getTrainingVolume},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resUpcomingSessions, Handler: h.upcomingSessions},
		server.ServerResource{Resource: resPersonalRecords, Handler: h.personalRecords},
		server.ServerResource{Resource: resTemplateCatalog, Handler: h.templateCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resUpcomingSessions = mcp.NewResource(
	"ironlog://upcoming_sessions",
	"Upcoming Sessions",
	mcp.WithResourceDescription("Planned workout sessions that have not been completed yet, in date order"),
	mcp.WithMIMEType("application/json"),
)

var resPersonalRecords = mcp.NewResource(
	"ironlog://personal_records",
	"Personal Records",
	mcp.WithResourceDescription("Best known estimated one-rep max per exercise"),
	mcp.WithMIMEType("application/json"),
)

var resTemplateCatalog = mcp.NewResource(
	"ironlog://template_catalog",
	"Template Catalog",
	mcp.WithResourceDescription("All workout templates with their default set/rep schemes"),
	mcp.WithMIMEType("application/json"),
)
