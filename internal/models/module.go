package models

import "time"

// Module is a teaching unit within a program.
type Module struct {
	ID             string    `db:"id" json:"id"`
	ProgramID      string    `db:"program_id" json:"program_id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	Semester       int       `db:"semester" json:"semester"`
	Hours          int       `db:"hours" json:"hours"`
	Credits        int       `db:"credits" json:"credits"`
	InstructorID   *string   `db:"instructor_id" json:"instructor_id"`
	InstructorName *string   `db:"instructor_name" json:"instructor_name,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ModuleFilter defines filters supported by list endpoints.
type ModuleFilter struct {
	ProgramID string
	Semester  *int
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
