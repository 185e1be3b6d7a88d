package models

import "time"

// ExportDocument is the versioned JSON snapshot of a user's data graph.
// Sensitive fields (password hashes, session tokens) never appear here.
type ExportDocument struct {
	SchemaVersion string          `json:"schema_version"`
	ExportedAt    time.Time       `json:"exported_at"`
	User          UserInfo        `json:"user"`
	Programs      []ExportProgram `json:"programs"`
}

// ExportProgram is a program with its owned modules.
type ExportProgram struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	Name      string         `json:"name"`
	Level     string         `json:"level"`
	StartDate *time.Time     `json:"start_date"`
	EndDate   *time.Time     `json:"end_date"`
	Modules   []ExportModule `json:"modules"`
}

// ExportModule is a module with its instructor projection.
type ExportModule struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Semester   int     `json:"semester"`
	Hours      int     `json:"hours"`
	Credits    int     `json:"credits"`
	Instructor *string `json:"instructor"`
}
