// Package api defines the payloads exchanged with the citybus service and
// printed by the CLI.
package api

import "encoding/json"

// BusPosition is a single live position record. Its shape belongs to the
// remote service and is passed through untouched.
type BusPosition = json.RawMessage

// HeaderCurrentVersion is the response header naming the archive version.
const HeaderCurrentVersion = "current-version"

const (
	// CitiesDB is the database listing every city. It is served from the
	// country path rather than a per-city one.
	CitiesDB = "cities"
	// CountryDB names the country-wide path segment and password prefix.
	CountryDB = "ukraine"
)

// DatabaseResponse summarises a completed database download.
type DatabaseResponse struct {
	Name           string `json:"name"`
	CurrentVersion string `json:"current_version"`
	Archive        string `json:"archive"`
	OutputDir      string `json:"output_dir"`
	Size           int64  `json:"size"`
	SHA256         string `json:"sha256"`
	TaskID         string `json:"task_id"`
	Extraction     string `json:"extraction"`
	Error          string `json:"error,omitempty"`
}

// FetchInfo is one entry of the fetch history.
type FetchInfo struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	CurrentVersion string  `json:"current_version"`
	Archive        string  `json:"archive"`
	Size           int64   `json:"size"`
	SHA256         string  `json:"sha256"`
	FetchedAt      string  `json:"fetched_at"`
	Extraction     string  `json:"extraction"`
	Error          *string `json:"error,omitempty"`
}
