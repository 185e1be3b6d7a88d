package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/acadplan-api/internal/models"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
)

const (
	activePeriodCacheKey = "periods:active"
	periodCachePattern   = "periods:*"
)

type periodRepository interface {
	List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error)
	FindByID(ctx context.Context, id string) (*models.Period, error)
	FindActive(ctx context.Context) (*models.Period, error)
	Create(ctx context.Context, period *models.Period) error
	Update(ctx context.Context, period *models.Period) error
	SetActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountDependents(ctx context.Context, id string) (int, error)
}

// CreatePeriodRequest describes payload for creating academic periods.
// Dates travel as YYYY-MM-DD strings; empty values are stored as null.
type CreatePeriodRequest struct {
	Label          string `json:"label" validate:"required"`
	AcademicYear   string `json:"academic_year" validate:"required"`
	Semester1Start string `json:"semester1_start"`
	Semester1End   string `json:"semester1_end"`
	Semester2Start string `json:"semester2_start"`
	Semester2End   string `json:"semester2_end"`
	HolidaysStart  string `json:"holidays_start"`
	HolidaysEnd    string `json:"holidays_end"`
	IsActive       bool   `json:"is_active"`
}

// UpdatePeriodRequest is a partial patch: absent fields stay untouched,
// date fields sent as "" are cleared to null.
type UpdatePeriodRequest struct {
	Label          *string `json:"label"`
	AcademicYear   *string `json:"academic_year"`
	Semester1Start *string `json:"semester1_start"`
	Semester1End   *string `json:"semester1_end"`
	Semester2Start *string `json:"semester2_start"`
	Semester2End   *string `json:"semester2_end"`
	HolidaysStart  *string `json:"holidays_start"`
	HolidaysEnd    *string `json:"holidays_end"`
	IsActive       *bool   `json:"is_active"`
}

// SetActivePeriodRequest designates the single active period.
type SetActivePeriodRequest struct {
	ID string `json:"id" validate:"required"`
}

// PeriodService orchestrates period workflows and guards the
// single-active-period invariant through the repository transaction.
type PeriodService struct {
	repo      periodRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeriodService creates a new period service instance.
func NewPeriodService(repo periodRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PeriodService {
	if validate == nil {
		validate = newValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated periods.
func (s *PeriodService) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, *models.Pagination, error) {
	periods, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list periods")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return periods, pagination, nil
}

// Get returns a period by ID.
func (s *PeriodService) Get(ctx context.Context, id string) (*models.Period, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}
	return period, nil
}

// GetActive returns the currently active period, via cache when enabled.
// The boolean reports whether the value came from cache.
func (s *PeriodService) GetActive(ctx context.Context) (*models.Period, bool, error) {
	var cached models.Period
	if hit, _ := s.cache.Get(ctx, activePeriodCacheKey, &cached); hit {
		return &cached, true, nil
	}

	period, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no active period")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active period")
	}

	if err := s.cache.Set(ctx, activePeriodCacheKey, period, 0); err != nil {
		s.logger.Warn("failed to cache active period", zap.Error(err))
	}
	return period, false, nil
}

// Create adds a new period. When the payload marks it active the
// repository deactivates every other period in the same transaction.
func (s *PeriodService) Create(ctx context.Context, req CreatePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, requiredFieldsError(err, "invalid period payload")
	}

	period := &models.Period{
		Label:        req.Label,
		AcademicYear: req.AcademicYear,
		IsActive:     req.IsActive,
	}

	dates := []struct {
		target **time.Time
		raw    string
	}{
		{&period.Semester1Start, req.Semester1Start},
		{&period.Semester1End, req.Semester1End},
		{&period.Semester2Start, req.Semester2Start},
		{&period.Semester2End, req.Semester2End},
		{&period.HolidaysStart, req.HolidaysStart},
		{&period.HolidaysEnd, req.HolidaysEnd},
	}
	for _, d := range dates {
		parsed, err := parseDate(d.raw)
		if err != nil {
			return nil, err
		}
		*d.target = parsed
	}

	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create period")
	}

	s.invalidateCache(ctx)
	return period, nil
}

// Update applies a partial patch to a period. Setting is_active to true
// triggers the exclusivity sweep inside the repository transaction;
// setting it false or omitting it never does.
func (s *PeriodService) Update(ctx context.Context, id string, req UpdatePeriodRequest) (*models.Period, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	if req.Label != nil {
		period.Label = *req.Label
	}
	if req.AcademicYear != nil {
		period.AcademicYear = *req.AcademicYear
	}
	patches := []struct {
		target **time.Time
		patch  *string
	}{
		{&period.Semester1Start, req.Semester1Start},
		{&period.Semester1End, req.Semester1End},
		{&period.Semester2Start, req.Semester2Start},
		{&period.Semester2End, req.Semester2End},
		{&period.HolidaysStart, req.HolidaysStart},
		{&period.HolidaysEnd, req.HolidaysEnd},
	}
	for _, p := range patches {
		if err := applyDatePatch(p.target, p.patch); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		period.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update period")
	}

	s.invalidateCache(ctx)
	return period, nil
}

// SetActive designates a period as the single active one.
func (s *PeriodService) SetActive(ctx context.Context, req SetActivePeriodRequest) (*models.Period, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, requiredFieldsError(err, "invalid set active payload")
	}

	if err := s.repo.SetActive(ctx, req.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate period")
	}

	s.invalidateCache(ctx)
	return s.Get(ctx, req.ID)
}

// Delete removes a period when inactive and without dependencies.
func (s *PeriodService) Delete(ctx context.Context, id string) error {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	if period.IsActive {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot delete active period")
	}

	count, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check period dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "period has activities or indicators associated")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "period not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete period")
	}

	s.invalidateCache(ctx)
	return nil
}

func (s *PeriodService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, periodCachePattern); err != nil {
		s.logger.Warn("failed to invalidate period cache", zap.Error(err))
	}
}
