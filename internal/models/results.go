// Package models defines the data structures for validation result events.
package models

const (
	EventFileValidated = "species.file.validated"
	EventRunCompleted  = "species.run.completed"
)

// Violation is one schema violation inside a species file.
type Violation struct {
	Path    string `json:"path"`
	Keyword string `json:"keyword,omitempty"`
	Message string `json:"message"`
}

// FileValidated reports the outcome of validating a single species file.
type FileValidated struct {
	EventType  string      `json:"eventType"`
	File       string      `json:"file"`
	Schema     string      `json:"schema"`
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
	Timestamp  int64       `json:"timestamp"`
}

// RunCompleted summarizes a whole validation run.
type RunCompleted struct {
	EventType    string `json:"eventType"`
	Schema       string `json:"schema"`
	SpeciesDir   string `json:"speciesDir"`
	FilesChecked int    `json:"filesChecked"`
	FilesInvalid int    `json:"filesInvalid"`
	ErrorCount   int    `json:"errorCount"`
	Success      bool   `json:"success"`
	DurationMs   int64  `json:"durationMs"`
	Timestamp    int64  `json:"timestamp"`
}
