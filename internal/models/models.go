// Package models defines the database entity types.
package models

// Extraction states recorded for a fetch.
const (
	ExtractionPending = "pending"
	ExtractionOK      = "ok"
	ExtractionFailed  = "failed"
)

// Fetch records one downloaded database archive.
type Fetch struct {
	ID               int64
	Name             string
	CurrentVersion   string
	ArchivePath      string
	Size             int64
	SHA256           string
	FetchedAt        int64
	ExtractionStatus string
	ExtractionError  *string
	FinishedAt       *int64
}
