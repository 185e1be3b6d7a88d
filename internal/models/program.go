package models

import "time"

// Program models an academic curriculum owning modules, activities and
// indicators.
type Program struct {
	ID        string     `db:"id" json:"id"`
	Code      string     `db:"code" json:"code"`
	Name      string     `db:"name" json:"name"`
	Level     string     `db:"level" json:"level"`
	StartDate *time.Time `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date"`
	OwnerID   string     `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// ProgramFilter defines filters supported by list endpoints.
type ProgramFilter struct {
	Level     string
	OwnerID   string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ProgramRef is the shallow projection embedded in related entities.
type ProgramRef struct {
	Code string `db:"program_code" json:"code"`
	Name string `db:"program_name" json:"name"`
}
