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

type indicatorRepository interface {
	List(ctx context.Context, filter models.IndicatorFilter) ([]models.Indicator, int, error)
	FindByID(ctx context.Context, id string) (*models.Indicator, error)
	Create(ctx context.Context, indicator *models.Indicator) error
	Update(ctx context.Context, indicator *models.Indicator) error
	Delete(ctx context.Context, id string) error
}

// CreateIndicatorRequest describes payload for tracking indicators.
type CreateIndicatorRequest struct {
	ProgramID      string                      `json:"program_id" validate:"required"`
	PeriodID       string                      `json:"period_id" validate:"required"`
	Name           string                      `json:"name" validate:"required"`
	TargetValue    float64                     `json:"target_value"`
	ActualValue    float64                     `json:"actual_value"`
	Periodicity    models.IndicatorPeriodicity `json:"periodicity" validate:"required,oneof=MONTHLY QUARTERLY SEMESTER ANNUAL"`
	Unit           string                      `json:"unit"`
	ResponsibleID  *string                     `json:"responsible_id"`
	CollectionDate string                      `json:"collection_date"`
}

// UpdateIndicatorRequest is a partial patch for indicators.
type UpdateIndicatorRequest struct {
	Name           *string                      `json:"name"`
	TargetValue    *float64                     `json:"target_value"`
	ActualValue    *float64                     `json:"actual_value"`
	Periodicity    *models.IndicatorPeriodicity `json:"periodicity"`
	Unit           *string                      `json:"unit"`
	ResponsibleID  *string                      `json:"responsible_id"`
	CollectionDate *string                      `json:"collection_date"`
}

// IndicatorService orchestrates KPI tracking workflows.
type IndicatorService struct {
	repo      indicatorRepository
	programs  moduleProgramRepository
	periods   activityPeriodRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIndicatorService creates a new indicator service instance.
func NewIndicatorService(repo indicatorRepository, programs moduleProgramRepository, periods activityPeriodRepository, validate *validator.Validate, logger *zap.Logger) *IndicatorService {
	if validate == nil {
		validate = newValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndicatorService{repo: repo, programs: programs, periods: periods, validator: validate, logger: logger}
}

// List returns paginated indicators.
func (s *IndicatorService) List(ctx context.Context, filter models.IndicatorFilter) ([]models.Indicator, *models.Pagination, error) {
	indicators, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list indicators")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return indicators, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an indicator by ID.
func (s *IndicatorService) Get(ctx context.Context, id string) (*models.Indicator, error) {
	indicator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "indicator not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load indicator")
	}
	return indicator, nil
}

// Create tracks a new indicator for a program and period.
func (s *IndicatorService) Create(ctx context.Context, req CreateIndicatorRequest) (*models.Indicator, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, requiredFieldsError(err, "invalid indicator payload")
	}

	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	if _, err := s.periods.FindByID(ctx, req.PeriodID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	indicator := &models.Indicator{
		ProgramID:     req.ProgramID,
		PeriodID:      req.PeriodID,
		ResponsibleID: normalizeOptionalID(req.ResponsibleID),
		Name:          req.Name,
		TargetValue:   req.TargetValue,
		ActualValue:   req.ActualValue,
		Periodicity:   req.Periodicity,
		Unit:          req.Unit,
	}
	var err error
	if indicator.CollectionDate, err = parseDate(req.CollectionDate); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, indicator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create indicator")
	}
	return indicator, nil
}

// Update applies a partial patch to an indicator.
func (s *IndicatorService) Update(ctx context.Context, id string, req UpdateIndicatorRequest) (*models.Indicator, error) {
	indicator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "indicator not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load indicator")
	}

	if req.Name != nil {
		indicator.Name = *req.Name
	}
	if req.TargetValue != nil {
		indicator.TargetValue = *req.TargetValue
	}
	if req.ActualValue != nil {
		indicator.ActualValue = *req.ActualValue
	}
	if req.Periodicity != nil {
		switch *req.Periodicity {
		case models.PeriodicityMonthly, models.PeriodicityQuarterly, models.PeriodicitySemester, models.PeriodicityAnnual:
			indicator.Periodicity = *req.Periodicity
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown periodicity")
		}
	}
	if req.Unit != nil {
		indicator.Unit = *req.Unit
	}
	if req.ResponsibleID != nil {
		indicator.ResponsibleID = normalizeOptionalID(req.ResponsibleID)
	}
	if err := applyDatePatch(&indicator.CollectionDate, req.CollectionDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, indicator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update indicator")
	}
	return indicator, nil
}

// Delete removes an indicator.
func (s *IndicatorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "indicator not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete indicator")
	}
	return nil
}
