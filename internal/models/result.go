package models

import "time"

// ResultStatus captures the outcome of a module for a student.
type ResultStatus string

const (
	ResultStatusPending   ResultStatus = "PENDING"
	ResultStatusValidated ResultStatus = "VALIDATED"
	ResultStatusFailed    ResultStatus = "FAILED"
	ResultStatusDeferred  ResultStatus = "DEFERRED"
)

// Result is a student's per-module outcome record. AttendanceRate is
// derived: presences / (presences + absences) * 100, zero when both
// counts are zero. It is recomputed in the same write whenever either
// count changes.
type Result struct {
	ID             string       `db:"id" json:"id"`
	ModuleID       string       `db:"module_id" json:"module_id"`
	StudentID      string       `db:"student_id" json:"student_id"`
	CCScore        *float64     `db:"cc_score" json:"cc_score"`
	ExamScore      *float64     `db:"exam_score" json:"exam_score"`
	FinalScore     *float64     `db:"final_score" json:"final_score"`
	Status         ResultStatus `db:"status" json:"status"`
	Mention        *string      `db:"mention" json:"mention"`
	Presences      int          `db:"presences" json:"presences"`
	Absences       int          `db:"absences" json:"absences"`
	AttendanceRate float64      `db:"attendance_rate" json:"attendance_rate"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at" json:"updated_at"`

	ModuleCode  *string `db:"module_code" json:"module_code,omitempty"`
	ModuleName  *string `db:"module_name" json:"module_name,omitempty"`
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
}

// AttendanceRate computes the derived attendance percentage, guarding
// the zero/zero case.
func AttendanceRate(presences, absences int) float64 {
	total := presences + absences
	if total == 0 {
		return 0
	}
	return float64(presences) / float64(total) * 100
}

// ResultFilter defines filters supported by list endpoints.
type ResultFilter struct {
	ModuleID  string
	StudentID string
	Status    ResultStatus
	Page      int
	PageSize  int
}
