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

const moduleColumns = `m.id, m.program_id, m.code, m.name, m.semester, m.hours, m.credits, m.instructor_id, u.full_name AS instructor_name, m.created_at, m.updated_at`

// ModuleRepository manages persistence for program modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns modules matching filters along with total count.
func (r *ModuleRepository) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, int, error) {
	base := "FROM modules m LEFT JOIN users u ON u.id = m.instructor_id WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("m.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Semester != nil {
		conditions = append(conditions, fmt.Sprintf("m.semester = $%d", len(args)+1))
		args = append(args, *filter.Semester)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY m.semester ASC, m.code ASC LIMIT %d OFFSET %d", moduleColumns, base, size, offset)
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list modules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count modules: %w", err)
	}

	return modules, total, nil
}

// FindByID fetches a module with its instructor projection.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	query := fmt.Sprintf("SELECT %s FROM modules m LEFT JOIN users u ON u.id = m.instructor_id WHERE m.id = $1", moduleColumns)
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// ListByProgram returns the modules of a program ordered by semester.
func (r *ModuleRepository) ListByProgram(ctx context.Context, programID string) ([]models.Module, error) {
	query := fmt.Sprintf("SELECT %s FROM modules m LEFT JOIN users u ON u.id = m.instructor_id WHERE m.program_id = $1 ORDER BY m.semester ASC, m.code ASC", moduleColumns)
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, programID); err != nil {
		return nil, fmt.Errorf("list program modules: %w", err)
	}
	return modules, nil
}

// ExistsByCode checks code uniqueness within a program.
func (r *ModuleRepository) ExistsByCode(ctx context.Context, programID, code, excludeID string) (bool, error) {
	query := "SELECT 1 FROM modules WHERE program_id = $1 AND LOWER(code) = LOWER($2)"
	args := []interface{}{programID, code}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check module code: %w", err)
	}
	return true, nil
}

// Create inserts a new module record.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if module.CreatedAt.IsZero() {
		module.CreatedAt = now
	}
	module.UpdatedAt = now

	const query = `INSERT INTO modules (id, program_id, code, name, semester, hours, credits, instructor_id, created_at, updated_at)
		VALUES (:id, :program_id, :code, :name, :semester, :hours, :credits, :instructor_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update modifies an existing module record.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	module.UpdatedAt = time.Now().UTC()
	const query = `UPDATE modules SET code = :code, name = :name, semester = :semester, hours = :hours, credits = :credits, instructor_id = :instructor_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	return nil
}

// Delete removes a module permanently. Unknown ids report sql.ErrNoRows.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountResults returns the number of results referencing the module.
func (r *ModuleRepository) CountResults(ctx context.Context, id string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM results WHERE module_id = $1`, id); err != nil {
		return 0, fmt.Errorf("count module results: %w", err)
	}
	return count, nil
}
