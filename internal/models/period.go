package models

import "time"

// Period models an academic term window. At most one period may be
// active at any time across the whole collection.
type Period struct {
	ID             string     `db:"id" json:"id"`
	Label          string     `db:"label" json:"label"`
	AcademicYear   string     `db:"academic_year" json:"academic_year"`
	Semester1Start *time.Time `db:"semester1_start" json:"semester1_start"`
	Semester1End   *time.Time `db:"semester1_end" json:"semester1_end"`
	Semester2Start *time.Time `db:"semester2_start" json:"semester2_start"`
	Semester2End   *time.Time `db:"semester2_end" json:"semester2_end"`
	HolidaysStart  *time.Time `db:"holidays_start" json:"holidays_start"`
	HolidaysEnd    *time.Time `db:"holidays_end" json:"holidays_end"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// PeriodFilter defines filters supported by list endpoints.
type PeriodFilter struct {
	AcademicYear string
	IsActive     *bool
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
