package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/acadplan-api/internal/models"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
)

type moduleRepository interface {
	List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, int, error)
	FindByID(ctx context.Context, id string) (*models.Module, error)
	ExistsByCode(ctx context.Context, programID, code, excludeID string) (bool, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
	CountResults(ctx context.Context, id string) (int, error)
}

type moduleProgramRepository interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// CreateModuleRequest describes payload for creating teaching modules.
type CreateModuleRequest struct {
	ProgramID    string  `json:"program_id" validate:"required"`
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Semester     int     `json:"semester" validate:"required,min=1,max=2"`
	Hours        int     `json:"hours" validate:"min=0"`
	Credits      int     `json:"credits" validate:"min=0"`
	InstructorID *string `json:"instructor_id"`
}

// UpdateModuleRequest is a partial patch for modules. A nil instructor
// field leaves the assignment untouched; an empty string unassigns.
type UpdateModuleRequest struct {
	Code         *string `json:"code"`
	Name         *string `json:"name"`
	Semester     *int    `json:"semester"`
	Hours        *int    `json:"hours"`
	Credits      *int    `json:"credits"`
	InstructorID *string `json:"instructor_id"`
}

// ModuleService orchestrates module workflows.
type ModuleService struct {
	repo      moduleRepository
	programs  moduleProgramRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService creates a new module service instance.
func NewModuleService(repo moduleRepository, programs moduleProgramRepository, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if validate == nil {
		validate = newValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleService{repo: repo, programs: programs, validator: validate, logger: logger}
}

// List returns paginated modules.
func (s *ModuleService) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, *models.Pagination, error) {
	modules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return modules, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a module by ID.
func (s *ModuleService) Get(ctx context.Context, id string) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	return module, nil
}

// Create adds a new module under an existing program.
func (s *ModuleService) Create(ctx context.Context, req CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, requiredFieldsError(err, "invalid module payload")
	}

	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.ProgramID, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "module code already in use for this program")
	}

	module := &models.Module{
		ProgramID:    req.ProgramID,
		Code:         req.Code,
		Name:         req.Name,
		Semester:     req.Semester,
		Hours:        req.Hours,
		Credits:      req.Credits,
		InstructorID: normalizeOptionalID(req.InstructorID),
	}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	return module, nil
}

// Update applies a partial patch to a module.
func (s *ModuleService) Update(ctx context.Context, id string, req UpdateModuleRequest) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}

	if req.Code != nil && *req.Code != module.Code {
		exists, err := s.repo.ExistsByCode(ctx, module.ProgramID, *req.Code, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "module code already in use for this program")
		}
		module.Code = *req.Code
	}
	if req.Name != nil {
		module.Name = *req.Name
	}
	if req.Semester != nil {
		if *req.Semester < 1 || *req.Semester > 2 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "semester must be 1 or 2")
		}
		module.Semester = *req.Semester
	}
	if req.Hours != nil {
		module.Hours = *req.Hours
	}
	if req.Credits != nil {
		module.Credits = *req.Credits
	}
	if req.InstructorID != nil {
		module.InstructorID = normalizeOptionalID(req.InstructorID)
	}

	if err := s.repo.Update(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update module")
	}
	return module, nil
}

// Delete removes a module when no results reference it.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountResults(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module results")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "module has results associated")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}
	return nil
}

// normalizeOptionalID turns an empty string reference into nil so the
// column is written as null.
func normalizeOptionalID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
