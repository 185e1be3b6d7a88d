package models

import "time"

// IndicatorPeriodicity is how often an indicator is collected.
type IndicatorPeriodicity string

const (
	PeriodicityMonthly   IndicatorPeriodicity = "MONTHLY"
	PeriodicityQuarterly IndicatorPeriodicity = "QUARTERLY"
	PeriodicitySemester  IndicatorPeriodicity = "SEMESTER"
	PeriodicityAnnual    IndicatorPeriodicity = "ANNUAL"
)

// Indicator is a KPI tracked per program and period, optionally owned by
// a responsible user.
type Indicator struct {
	ID             string               `db:"id" json:"id"`
	ProgramID      string               `db:"program_id" json:"program_id"`
	PeriodID       string               `db:"period_id" json:"period_id"`
	ResponsibleID  *string              `db:"responsible_id" json:"responsible_id"`
	Name           string               `db:"name" json:"name"`
	TargetValue    float64              `db:"target_value" json:"target_value"`
	ActualValue    float64              `db:"actual_value" json:"actual_value"`
	Periodicity    IndicatorPeriodicity `db:"periodicity" json:"periodicity"`
	Unit           string               `db:"unit" json:"unit"`
	CollectionDate *time.Time           `db:"collection_date" json:"collection_date"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`

	ProgramCode     *string `db:"program_code" json:"program_code,omitempty"`
	ProgramName     *string `db:"program_name" json:"program_name,omitempty"`
	ResponsibleName *string `db:"responsible_name" json:"responsible_name,omitempty"`
}

// IndicatorFilter defines filters supported by list endpoints.
type IndicatorFilter struct {
	ProgramID     string
	PeriodID      string
	ResponsibleID string
	Page          int
	PageSize      int
}
