// Package backup reads and writes the portable JSON snapshot of all user
// data. Export always captures the full current state; import is
// all-or-nothing per top-level field, with no field-level merging.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// Version is written into every exported document.
const Version = "1.0"

// ErrMalformed marks a document carrying neither sessions nor templates.
// Such a file can't be a real backup and importing it would only destroy
// data.
var ErrMalformed = errors.New("backup: document has neither sessions nor templates")

// Export serializes a full snapshot of the three collections.
func Export(sessions []models.WorkoutSession, templates []models.WorkoutTemplate, prs map[string]float64, now time.Time) ([]byte, error) {
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	if templates == nil {
		templates = []models.WorkoutTemplate{}
	}
	if prs == nil {
		prs = map[string]float64{}
	}
	doc := models.Backup{
		Sessions:   sessions,
		Templates:  templates,
		SavedPRs:   prs,
		ExportDate: now.UTC(),
		AppVersion: Version,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding backup: %w", err)
	}
	return data, nil
}

// Parse decodes and validates a backup document. A document missing both
// the sessions and templates fields is rejected as malformed; a present but
// empty list is valid.
func Parse(data []byte) (*models.Backup, error) {
	var doc models.Backup
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding backup: %w", err)
	}
	if doc.Sessions == nil && doc.Templates == nil {
		return nil, ErrMalformed
	}
	return &doc, nil
}

// Filename returns the conventional export file name for the given day.
func Filename(now time.Time) string {
	return fmt.Sprintf("ironlog_backup_%s.json", now.Format("2006-01-02"))
}
