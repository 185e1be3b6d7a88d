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

type resultRepository interface {
	List(ctx context.Context, filter models.ResultFilter) ([]models.Result, int, error)
	FindByID(ctx context.Context, id string) (*models.Result, error)
	Create(ctx context.Context, result *models.Result) error
	Update(ctx context.Context, result *models.Result) error
	Delete(ctx context.Context, id string) error
}

type resultModuleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
}

// CreateResultRequest describes payload for recording student results.
type CreateResultRequest struct {
	ModuleID  string              `json:"module_id" validate:"required"`
	StudentID string              `json:"student_id" validate:"required"`
	CCScore   *float64            `json:"cc_score"`
	ExamScore *float64            `json:"exam_score"`
	Status    models.ResultStatus `json:"status"`
	Mention   *string             `json:"mention"`
	Presences int                 `json:"presences" validate:"min=0"`
	Absences  int                 `json:"absences" validate:"min=0"`
}

// UpdateResultRequest is a partial patch. When presences or absences
// change, the attendance rate is recomputed and stored in the same write.
type UpdateResultRequest struct {
	CCScore   *float64             `json:"cc_score"`
	ExamScore *float64             `json:"exam_score"`
	Status    *models.ResultStatus `json:"status"`
	Mention   *string              `json:"mention"`
	Presences *int                 `json:"presences"`
	Absences  *int                 `json:"absences"`
}

// ResultService orchestrates student result workflows and keeps the
// derived attendance rate consistent with the raw counters.
type ResultService struct {
	repo      resultRepository
	modules   resultModuleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResultService creates a new result service instance.
func NewResultService(repo resultRepository, modules resultModuleRepository, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if validate == nil {
		validate = newValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{repo: repo, modules: modules, validator: validate, logger: logger}
}

// List returns paginated results with module and student projections.
func (s *ResultService) List(ctx context.Context, filter models.ResultFilter) ([]models.Result, *models.Pagination, error) {
	results, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return results, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a result by ID.
func (s *ResultService) Get(ctx context.Context, id string) (*models.Result, error) {
	result, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}

// Create records a new result, deriving the attendance rate from the
// presence counters.
func (s *ResultService) Create(ctx context.Context, req CreateResultRequest) (*models.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, requiredFieldsError(err, "invalid result payload")
	}

	if _, err := s.modules.FindByID(ctx, req.ModuleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}

	status := req.Status
	if status == "" {
		status = models.ResultStatusPending
	}
	if err := validateResultStatus(status); err != nil {
		return nil, err
	}

	result := &models.Result{
		ModuleID:       req.ModuleID,
		StudentID:      req.StudentID,
		CCScore:        req.CCScore,
		ExamScore:      req.ExamScore,
		Status:         status,
		Mention:        req.Mention,
		Presences:      req.Presences,
		Absences:       req.Absences,
		AttendanceRate: models.AttendanceRate(req.Presences, req.Absences),
	}
	result.FinalScore = computeFinalScore(result.CCScore, result.ExamScore)

	if err := s.repo.Create(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create result")
	}
	return result, nil
}

// Update applies a partial patch. Any change to presences or absences
// recomputes the attendance rate before the row is written, so the
// stored rate can never drift from the counters.
func (s *ResultService) Update(ctx context.Context, id string, req UpdateResultRequest) (*models.Result, error) {
	result, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load result")
	}

	if req.CCScore != nil {
		result.CCScore = req.CCScore
	}
	if req.ExamScore != nil {
		result.ExamScore = req.ExamScore
	}
	if req.CCScore != nil || req.ExamScore != nil {
		result.FinalScore = computeFinalScore(result.CCScore, result.ExamScore)
	}
	if req.Status != nil {
		if err := validateResultStatus(*req.Status); err != nil {
			return nil, err
		}
		result.Status = *req.Status
	}
	if req.Mention != nil {
		result.Mention = req.Mention
	}
	if req.Presences != nil {
		if *req.Presences < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "presences must not be negative")
		}
		result.Presences = *req.Presences
	}
	if req.Absences != nil {
		if *req.Absences < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "absences must not be negative")
		}
		result.Absences = *req.Absences
	}
	if req.Presences != nil || req.Absences != nil {
		result.AttendanceRate = models.AttendanceRate(result.Presences, result.Absences)
	}

	if err := s.repo.Update(ctx, result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update result")
	}
	return result, nil
}

// Delete removes a result.
func (s *ResultService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "result not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete result")
	}
	return nil
}

func validateResultStatus(status models.ResultStatus) error {
	switch status {
	case models.ResultStatusPending, models.ResultStatusValidated, models.ResultStatusFailed, models.ResultStatusDeferred:
		return nil
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown result status")
	}
}

// computeFinalScore averages continuous assessment and exam scores when
// both are present. A single available score passes through unchanged.
func computeFinalScore(cc, exam *float64) *float64 {
	switch {
	case cc != nil && exam != nil:
		avg := (*cc + *exam) / 2
		return &avg
	case cc != nil:
		v := *cc
		return &v
	case exam != nil:
		v := *exam
		return &v
	default:
		return nil
	}
}
