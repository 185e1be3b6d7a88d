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

const indicatorColumns = `i.id, i.program_id, i.period_id, i.responsible_id, i.name, i.target_value, i.actual_value, i.periodicity, i.unit, i.collection_date, i.created_at, i.updated_at, p.code AS program_code, p.name AS program_name, u.full_name AS responsible_name`

const indicatorJoins = `FROM indicators i
	LEFT JOIN programs p ON p.id = i.program_id
	LEFT JOIN users u ON u.id = i.responsible_id`

// IndicatorRepository manages persistence for program KPIs.
type IndicatorRepository struct {
	db *sqlx.DB
}

// NewIndicatorRepository constructs an IndicatorRepository.
func NewIndicatorRepository(db *sqlx.DB) *IndicatorRepository {
	return &IndicatorRepository{db: db}
}

// List returns indicators matching filters, newest first, along with
// total count.
func (r *IndicatorRepository) List(ctx context.Context, filter models.IndicatorFilter) ([]models.Indicator, int, error) {
	base := indicatorJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("i.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.PeriodID != "" {
		conditions = append(conditions, fmt.Sprintf("i.period_id = $%d", len(args)+1))
		args = append(args, filter.PeriodID)
	}
	if filter.ResponsibleID != "" {
		conditions = append(conditions, fmt.Sprintf("i.responsible_id = $%d", len(args)+1))
		args = append(args, filter.ResponsibleID)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY i.created_at DESC LIMIT %d OFFSET %d", indicatorColumns, base, size, offset)
	var indicators []models.Indicator
	if err := r.db.SelectContext(ctx, &indicators, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list indicators: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count indicators: %w", err)
	}

	return indicators, total, nil
}

// FindByID fetches an indicator with its related projections.
func (r *IndicatorRepository) FindByID(ctx context.Context, id string) (*models.Indicator, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE i.id = $1", indicatorColumns, indicatorJoins)
	var indicator models.Indicator
	if err := r.db.GetContext(ctx, &indicator, query, id); err != nil {
		return nil, err
	}
	return &indicator, nil
}

// Create inserts a new indicator record.
func (r *IndicatorRepository) Create(ctx context.Context, indicator *models.Indicator) error {
	if indicator.ID == "" {
		indicator.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if indicator.CreatedAt.IsZero() {
		indicator.CreatedAt = now
	}
	indicator.UpdatedAt = now

	const query = `INSERT INTO indicators (id, program_id, period_id, responsible_id, name, target_value, actual_value, periodicity, unit, collection_date, created_at, updated_at)
		VALUES (:id, :program_id, :period_id, :responsible_id, :name, :target_value, :actual_value, :periodicity, :unit, :collection_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, indicator); err != nil {
		return fmt.Errorf("create indicator: %w", err)
	}
	return nil
}

// Update modifies an existing indicator record.
func (r *IndicatorRepository) Update(ctx context.Context, indicator *models.Indicator) error {
	indicator.UpdatedAt = time.Now().UTC()
	const query = `UPDATE indicators SET program_id = :program_id, period_id = :period_id, responsible_id = :responsible_id, name = :name, target_value = :target_value, actual_value = :actual_value, periodicity = :periodicity, unit = :unit, collection_date = :collection_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, indicator); err != nil {
		return fmt.Errorf("update indicator: %w", err)
	}
	return nil
}

// Delete removes an indicator permanently. Unknown ids report sql.ErrNoRows.
func (r *IndicatorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM indicators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete indicator: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByProgram returns the program's indicators, newest first.
func (r *IndicatorRepository) ListByProgram(ctx context.Context, programID string) ([]models.Indicator, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE i.program_id = $1 ORDER BY i.created_at DESC", indicatorColumns, indicatorJoins)
	var indicators []models.Indicator
	if err := r.db.SelectContext(ctx, &indicators, query, programID); err != nil {
		return nil, fmt.Errorf("list program indicators: %w", err)
	}
	return indicators, nil
}
