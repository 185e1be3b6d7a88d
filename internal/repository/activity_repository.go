package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/acadplan-api/internal/models"
)

const activityColumns = `a.id, a.program_id, a.period_id, a.name, a.type, a.planned_date, a.actual_date, a.created_at, a.updated_at, p.code AS program_code, p.name AS program_name, pe.label AS period_label`

const activityJoins = `FROM activities a
	LEFT JOIN programs p ON p.id = a.program_id
	LEFT JOIN periods pe ON pe.id = a.period_id`

// ActivityRepository manages persistence for planned academic events.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// List returns activities matching filters, ordered by planned date
// ascending, along with total count.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	base := activityJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("a.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.PeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("a.period_id = $%d", len(args)+1))
		args = append(args, filter.PeriodID)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("a.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY a.planned_date ASC NULLS LAST LIMIT %d OFFSET %d", activityColumns, base, size, offset)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list activities: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	return activities, total, nil
}

// FindByID fetches an activity with its related projections.
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1", activityColumns, activityJoins)
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create inserts a new activity record.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = now
	}
	activity.UpdatedAt = now

	const query = `INSERT INTO activities (id, program_id, period_id, name, type, planned_date, actual_date, created_at, updated_at)
		VALUES (:id, :program_id, :period_id, :name, :type, :planned_date, :actual_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// Update modifies an existing activity record.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()
	const query = `UPDATE activities SET program_id = :program_id, period_id = :period_id, name = :name, type = :type, planned_date = :planned_date, actual_date = :actual_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, activity); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}

// Delete removes an activity permanently. Unknown ids report sql.ErrNoRows.
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByProgram returns the program's activities ordered by planned date.
func (r *ActivityRepository) ListByProgram(ctx context.Context, programID string) ([]models.Activity, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.program_id = $1 ORDER BY a.planned_date ASC NULLS LAST", activityColumns, activityJoins)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, programID); err != nil {
		return nil, fmt.Errorf("list program activities: %w", err)
	}
	return activities, nil
}
