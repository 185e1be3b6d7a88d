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

type activityRepository interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
}

type activityPeriodRepository interface {
	FindByID(ctx context.Context, id string) (*models.Period, error)
}

// CreateActivityRequest describes payload for planning activities.
type CreateActivityRequest struct {
	ProgramID   string              `json:"program_id" validate:"required"`
	PeriodID    string              `json:"period_id" validate:"required"`
	Name        string              `json:"name" validate:"required"`
	Type        models.ActivityType `json:"type" validate:"required,oneof=COURSE EXAM MEETING DEFENSE WORKSHOP"`
	PlannedDate string              `json:"planned_date"`
	ActualDate  string              `json:"actual_date"`
}

// UpdateActivityRequest is a partial patch. Omitting a date leaves it
// untouched; sending "" clears it back to null.
type UpdateActivityRequest struct {
	Name        *string              `json:"name"`
	Type        *models.ActivityType `json:"type"`
	PlannedDate *string              `json:"planned_date"`
	ActualDate  *string              `json:"actual_date"`
}

// ActivityService orchestrates activity planning workflows.
type ActivityService struct {
	repo      activityRepository
	programs  moduleProgramRepository
	periods   activityPeriodRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService creates a new activity service instance.
func NewActivityService(repo activityRepository, programs moduleProgramRepository, periods activityPeriodRepository, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = newValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, programs: programs, periods: periods, validator: validate, logger: logger}
}

// List returns paginated activities with program and period projections.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, *models.Pagination, error) {
	activities, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return activities, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an activity by ID.
func (s *ActivityService) Get(ctx context.Context, id string) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

// Create plans a new activity after checking the referenced program and
// period exist.
func (s *ActivityService) Create(ctx context.Context, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, requiredFieldsError(err, "invalid activity payload")
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

	activity := &models.Activity{
		ProgramID: req.ProgramID,
		PeriodID:  req.PeriodID,
		Name:      req.Name,
		Type:      req.Type,
	}
	var err error
	if activity.PlannedDate, err = parseDate(req.PlannedDate); err != nil {
		return nil, err
	}
	if activity.ActualDate, err = parseDate(req.ActualDate); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	return activity, nil
}

// Update applies a partial patch to an activity.
func (s *ActivityService) Update(ctx context.Context, id string, req UpdateActivityRequest) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	if req.Name != nil {
		activity.Name = *req.Name
	}
	if req.Type != nil {
		switch *req.Type {
		case models.ActivityTypeCourse, models.ActivityTypeExam, models.ActivityTypeMeeting, models.ActivityTypeDefense, models.ActivityTypeWorkshop:
			activity.Type = *req.Type
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown activity type")
		}
	}
	if err := applyDatePatch(&activity.PlannedDate, req.PlannedDate); err != nil {
		return nil, err
	}
	if err := applyDatePatch(&activity.ActualDate, req.ActualDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	return activity, nil
}

// Delete removes an activity.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}
	return nil
}
