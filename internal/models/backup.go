package models

import "time"

// Backup is the portable JSON snapshot of all user data. A nil Sessions or
// Templates slice means the field was absent from the document, which import
// validation distinguishes from an explicitly empty list.
type Backup struct {
	Sessions   []WorkoutSession   `json:"sessions"`
	Templates  []WorkoutTemplate  `json:"templates"`
	SavedPRs   map[string]float64 `json:"savedPRs"`
	ExportDate time.Time          `json:"exportDate"`
	AppVersion string             `json:"appVersion"`
}
