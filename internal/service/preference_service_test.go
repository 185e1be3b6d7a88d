package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/acadplan-api/internal/models"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
)

type mockPreferenceRepo struct {
	stored map[string]*models.Preference
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{stored: make(map[string]*models.Preference)}
}

func (m *mockPreferenceRepo) FindByUserID(ctx context.Context, userID string) (*models.Preference, error) {
	p, ok := m.stored[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (m *mockPreferenceRepo) Upsert(ctx context.Context, pref *models.Preference) error {
	m.stored[pref.UserID] = pref
	return nil
}

func TestPreferenceServiceGetDefaultsWhenUnset(t *testing.T) {
	svc := NewPreferenceService(newMockPreferenceRepo(), nil, nil)

	pref, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "light", pref.Theme)
	assert.Equal(t, "fr", pref.Language)
	assert.True(t, pref.EmailNotifications)
}

func TestPreferenceServiceUpdateThenGet(t *testing.T) {
	repo := newMockPreferenceRepo()
	svc := NewPreferenceService(repo, nil, nil)

	saved, err := svc.Update(context.Background(), "u1", UpdatePreferenceRequest{
		Theme:              "dark",
		Language:           "en",
		EmailNotifications: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", saved.Theme)

	loaded, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.Theme)
	assert.Equal(t, "en", loaded.Language)
	assert.False(t, loaded.EmailNotifications)
}

func TestPreferenceServiceUpdateRejectsUnknownTheme(t *testing.T) {
	svc := NewPreferenceService(newMockPreferenceRepo(), nil, nil)

	_, err := svc.Update(context.Background(), "u1", UpdatePreferenceRequest{Theme: "solarized", Language: "fr"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestPreferenceServiceUpdateMissingFields(t *testing.T) {
	svc := NewPreferenceService(newMockPreferenceRepo(), nil, nil)

	_, err := svc.Update(context.Background(), "u1", UpdatePreferenceRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "theme")
	assert.Contains(t, appErr.Message, "language")
}
