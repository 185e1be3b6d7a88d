package models

import "time"

// ActivityType categorises planned academic events.
type ActivityType string

const (
	ActivityTypeCourse   ActivityType = "COURSE"
	ActivityTypeExam     ActivityType = "EXAM"
	ActivityTypeMeeting  ActivityType = "MEETING"
	ActivityTypeDefense  ActivityType = "DEFENSE"
	ActivityTypeWorkshop ActivityType = "WORKSHOP"
)

// Activity is a planned academic event belonging to one program and one
// period. Rows returned by list/get carry shallow program and period
// projections for presentation.
type Activity struct {
	ID          string       `db:"id" json:"id"`
	ProgramID   string       `db:"program_id" json:"program_id"`
	PeriodID    string       `db:"period_id" json:"period_id"`
	Name        string       `db:"name" json:"name"`
	Type        ActivityType `db:"type" json:"type"`
	PlannedDate *time.Time   `db:"planned_date" json:"planned_date"`
	ActualDate  *time.Time   `db:"actual_date" json:"actual_date"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`

	ProgramCode *string `db:"program_code" json:"program_code,omitempty"`
	ProgramName *string `db:"program_name" json:"program_name,omitempty"`
	PeriodLabel *string `db:"period_label" json:"period_label,omitempty"`
}

// ActivityFilter defines filters supported by list endpoints.
type ActivityFilter struct {
	ProgramID string
	PeriodID  string
	Type      ActivityType
	Page      int
	PageSize  int
}
