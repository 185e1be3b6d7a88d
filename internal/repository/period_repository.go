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

const periodColumns = "id, label, academic_year, semester1_start, semester1_end, semester2_start, semester2_end, holidays_start, holidays_end, is_active, created_at, updated_at"

// PeriodRepository handles persistence for academic periods. Writes that
// activate a period run the deactivation sweep and the activation inside
// one transaction so no reader ever observes two active periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository instantiates a period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns periods matching provided filters.
func (r *PeriodRepository) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error) {
	base := "FROM periods WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"label":         true,
		"academic_year": true,
		"created_at":    true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", periodColumns, base, sortBy, order, size, offset)

	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list periods: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count periods: %w", err)
	}

	return periods, total, nil
}

// FindByID loads a period by identifier.
func (r *PeriodRepository) FindByID(ctx context.Context, id string) (*models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE id = $1", periodColumns)
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// FindActive returns the currently active period.
func (r *PeriodRepository) FindActive(ctx context.Context) (*models.Period, error) {
	query := fmt.Sprintf("SELECT %s FROM periods WHERE is_active = TRUE LIMIT 1", periodColumns)
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query); err != nil {
		return nil, err
	}
	return &period, nil
}

const insertPeriodQuery = `INSERT INTO periods (id, label, academic_year, semester1_start, semester1_end, semester2_start, semester2_end, holidays_start, holidays_end, is_active, created_at, updated_at)
	VALUES (:id, :label, :academic_year, :semester1_start, :semester1_end, :semester2_start, :semester2_end, :holidays_start, :holidays_end, :is_active, :created_at, :updated_at)`

// Create inserts a new period record. When the period is created active,
// every other active period is deactivated in the same transaction.
func (r *PeriodRepository) Create(ctx context.Context, period *models.Period) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if period.CreatedAt.IsZero() {
		period.CreatedAt = now
	}
	period.UpdatedAt = now

	if !period.IsActive {
		if _, err := r.db.NamedExecContext(ctx, insertPeriodQuery, period); err != nil {
			return fmt.Errorf("create period: %w", err)
		}
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create period tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE periods SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE`, now); err != nil {
		return fmt.Errorf("deactivate other periods: %w", err)
	}
	if _, err = tx.NamedExecContext(ctx, insertPeriodQuery, period); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create period tx: %w", err)
	}
	return nil
}

const updatePeriodQuery = `UPDATE periods SET label = :label, academic_year = :academic_year, semester1_start = :semester1_start, semester1_end = :semester1_end, semester2_start = :semester2_start, semester2_end = :semester2_end, holidays_start = :holidays_start, holidays_end = :holidays_end, is_active = :is_active, updated_at = :updated_at WHERE id = :id`

// Update modifies an existing period. When the update marks the period
// active, other active periods are deactivated in the same transaction.
func (r *PeriodRepository) Update(ctx context.Context, period *models.Period) error {
	period.UpdatedAt = time.Now().UTC()

	if !period.IsActive {
		if _, err := r.db.NamedExecContext(ctx, updatePeriodQuery, period); err != nil {
			return fmt.Errorf("update period: %w", err)
		}
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update period tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE periods SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2`, period.UpdatedAt, period.ID); err != nil {
		return fmt.Errorf("deactivate other periods: %w", err)
	}
	if _, err = tx.NamedExecContext(ctx, updatePeriodQuery, period); err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update period tx: %w", err)
	}
	return nil
}

// SetActive marks the provided period as active and deactivates the rest.
func (r *PeriodRepository) SetActive(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set active tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE periods SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("deactivate other periods: %w", err)
	}

	var res sql.Result
	if res, err = tx.ExecContext(ctx, `UPDATE periods SET is_active = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("activate period: %w", err)
	}
	if affected, raErr := res.RowsAffected(); raErr == nil && affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit set active tx: %w", err)
	}
	return nil
}

// Delete removes a period permanently. Unknown ids report sql.ErrNoRows.
func (r *PeriodRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM periods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete period: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountDependents returns the number of activities and indicators
// referencing the period.
func (r *PeriodRepository) CountDependents(ctx context.Context, id string) (int, error) {
	const query = `SELECT (SELECT COUNT(*) FROM activities WHERE period_id = $1) + (SELECT COUNT(*) FROM indicators WHERE period_id = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count period dependents: %w", err)
	}
	return count, nil
}
