package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/acadplan-api/internal/models"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
)

type mockPeriodRepo struct {
	periods       map[string]*models.Period
	active        *models.Period
	dependents    int
	createdActive bool
	setActiveID   string
	deletedID     string
}

func newMockPeriodRepo(periods ...*models.Period) *mockPeriodRepo {
	repo := &mockPeriodRepo{periods: make(map[string]*models.Period)}
	for _, p := range periods {
		repo.periods[p.ID] = p
		if p.IsActive {
			repo.active = p
		}
	}
	return repo
}

func (m *mockPeriodRepo) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error) {
	var out []models.Period
	for _, p := range m.periods {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockPeriodRepo) FindByID(ctx context.Context, id string) (*models.Period, error) {
	p, ok := m.periods[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (m *mockPeriodRepo) FindActive(ctx context.Context) (*models.Period, error) {
	if m.active == nil {
		return nil, sql.ErrNoRows
	}
	copied := *m.active
	return &copied, nil
}

func (m *mockPeriodRepo) Create(ctx context.Context, period *models.Period) error {
	period.ID = "generated"
	if period.IsActive {
		m.createdActive = true
		for _, p := range m.periods {
			p.IsActive = false
		}
		m.active = period
	}
	m.periods[period.ID] = period
	return nil
}

func (m *mockPeriodRepo) Update(ctx context.Context, period *models.Period) error {
	if period.IsActive {
		for id, p := range m.periods {
			if id != period.ID {
				p.IsActive = false
			}
		}
		m.active = period
	}
	m.periods[period.ID] = period
	return nil
}

func (m *mockPeriodRepo) SetActive(ctx context.Context, id string) error {
	p, ok := m.periods[id]
	if !ok {
		return sql.ErrNoRows
	}
	for _, other := range m.periods {
		other.IsActive = false
	}
	p.IsActive = true
	m.active = p
	m.setActiveID = id
	return nil
}

func (m *mockPeriodRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.periods[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.periods, id)
	m.deletedID = id
	return nil
}

func (m *mockPeriodRepo) CountDependents(ctx context.Context, id string) (int, error) {
	return m.dependents, nil
}

func TestPeriodServiceCreateMissingFields(t *testing.T) {
	repo := newMockPeriodRepo()
	svc := NewPeriodService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "label")
	assert.Contains(t, appErr.Message, "academic_year")
}

func TestPeriodServiceCreateActiveDemotesOthers(t *testing.T) {
	existing := &models.Period{ID: "p1", Label: "2024-2025", AcademicYear: "2024-2025", IsActive: true}
	repo := newMockPeriodRepo(existing)
	svc := NewPeriodService(repo, nil, nil, nil)

	created, err := svc.Create(context.Background(), CreatePeriodRequest{
		Label:          "2025-2026",
		AcademicYear:   "2025-2026",
		Semester1Start: "2025-09-01",
		IsActive:       true,
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	assert.True(t, repo.createdActive)
	assert.False(t, existing.IsActive)
	require.NotNil(t, created.Semester1Start)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), *created.Semester1Start)
}

func TestPeriodServiceCreateRejectsBadDate(t *testing.T) {
	svc := NewPeriodService(newMockPeriodRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreatePeriodRequest{
		Label:          "2025-2026",
		AcademicYear:   "2025-2026",
		Semester1Start: "01/09/2025",
	})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestPeriodServiceUpdatePatchSemantics(t *testing.T) {
	start := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	existing := &models.Period{ID: "p1", Label: "2025-2026", AcademicYear: "2025-2026", Semester1Start: &start, Semester1End: &end}
	repo := newMockPeriodRepo(existing)
	svc := NewPeriodService(repo, nil, nil, nil)

	cleared := ""
	moved := "2025-09-08"
	updated, err := svc.Update(context.Background(), "p1", UpdatePeriodRequest{
		Semester1Start: &moved,
		Semester1End:   &cleared,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Semester1Start)
	assert.Equal(t, time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC), *updated.Semester1Start)
	assert.Nil(t, updated.Semester1End)
	assert.Equal(t, "2025-2026", updated.Label)
}

func TestPeriodServiceUpdateNotFound(t *testing.T) {
	svc := NewPeriodService(newMockPeriodRepo(), nil, nil, nil)

	label := "new"
	_, err := svc.Update(context.Background(), "missing", UpdatePeriodRequest{Label: &label})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestPeriodServiceSetActive(t *testing.T) {
	first := &models.Period{ID: "p1", Label: "old", AcademicYear: "2024-2025", IsActive: true}
	second := &models.Period{ID: "p2", Label: "new", AcademicYear: "2025-2026"}
	repo := newMockPeriodRepo(first, second)
	svc := NewPeriodService(repo, nil, nil, nil)

	activated, err := svc.SetActive(context.Background(), SetActivePeriodRequest{ID: "p2"})
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.False(t, first.IsActive)
	assert.Equal(t, "p2", repo.setActiveID)
}

func TestPeriodServiceSetActiveUnknown(t *testing.T) {
	svc := NewPeriodService(newMockPeriodRepo(), nil, nil, nil)

	_, err := svc.SetActive(context.Background(), SetActivePeriodRequest{ID: "missing"})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestPeriodServiceDeleteActiveRefused(t *testing.T) {
	active := &models.Period{ID: "p1", Label: "current", AcademicYear: "2025-2026", IsActive: true}
	repo := newMockPeriodRepo(active)
	svc := NewPeriodService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, 412, appErrors.FromError(err).Status)
	assert.Empty(t, repo.deletedID)
}

func TestPeriodServiceDeleteWithDependentsRefused(t *testing.T) {
	period := &models.Period{ID: "p1", Label: "past", AcademicYear: "2024-2025"}
	repo := newMockPeriodRepo(period)
	repo.dependents = 3
	svc := NewPeriodService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), "p1")
	require.Error(t, err)
	assert.Equal(t, 412, appErrors.FromError(err).Status)
}

func TestPeriodServiceDelete(t *testing.T) {
	period := &models.Period{ID: "p1", Label: "past", AcademicYear: "2024-2025"}
	repo := newMockPeriodRepo(period)
	svc := NewPeriodService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.Equal(t, "p1", repo.deletedID)
}

func TestPeriodServiceGetActiveNone(t *testing.T) {
	svc := NewPeriodService(newMockPeriodRepo(), nil, nil, nil)

	_, _, err := svc.GetActive(context.Background())
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
