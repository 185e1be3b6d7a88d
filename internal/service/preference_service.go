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

type preferenceRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Preference, error)
	Upsert(ctx context.Context, pref *models.Preference) error
}

// UpdatePreferenceRequest replaces the caller's stored preferences.
type UpdatePreferenceRequest struct {
	Theme              string `json:"theme" validate:"required,oneof=light dark"`
	Language           string `json:"language" validate:"required,oneof=fr en"`
	EmailNotifications bool   `json:"email_notifications"`
}

// PreferenceService manages per-user UI settings.
type PreferenceService struct {
	repo      preferenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService creates a new preference service instance.
func NewPreferenceService(repo preferenceRepository, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = newValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{repo: repo, validator: validate, logger: logger}
}

// Get returns the user's preferences, falling back to defaults when the
// user never saved any.
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.Preference, error) {
	pref, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultPreference(userID), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preferences")
	}
	return pref, nil
}

// Update stores the user's preferences, creating the row on first save.
func (s *PreferenceService) Update(ctx context.Context, userID string, req UpdatePreferenceRequest) (*models.Preference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, requiredFieldsError(err, "invalid preferences payload")
	}

	pref := &models.Preference{
		UserID:             userID,
		Theme:              req.Theme,
		Language:           req.Language,
		EmailNotifications: req.EmailNotifications,
	}
	if err := s.repo.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save preferences")
	}
	return pref, nil
}
