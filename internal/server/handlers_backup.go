package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/claude/ironlog/internal/backup"
)

// maxImportSize caps backup uploads at 32 MiB. Years of sessions stay well
// under a megabyte.
const maxImportSize = 32 << 20

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.ExportBackup()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.Filename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}

	doc, err := s.svc.ImportBackup(r.Context(), data)
	if err != nil {
		if errors.Is(err, backup.ErrMalformed) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid backup: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions":   len(doc.Sessions),
		"templates":  len(doc.Templates),
		"prs":        len(doc.SavedPRs),
		"exportDate": doc.ExportDate,
	})
}
