package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/acadplan-api/internal/models"
)

// PreferenceRepository manages per-user UI preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs a PreferenceRepository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByUserID loads the preferences row for a user.
func (r *PreferenceRepository) FindByUserID(ctx context.Context, userID string) (*models.Preference, error) {
	const query = `SELECT user_id, theme, language, email_notifications, updated_at FROM user_preferences WHERE user_id = $1`
	var pref models.Preference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert inserts or replaces the preferences row for a user.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.Preference) error {
	pref.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO user_preferences (user_id, theme, language, email_notifications, updated_at)
		VALUES (:user_id, :theme, :language, :email_notifications, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET theme = EXCLUDED.theme, language = EXCLUDED.language, email_notifications = EXCLUDED.email_notifications, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
