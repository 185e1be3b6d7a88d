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

type mockActivityRepo struct {
	activities map[string]*models.Activity
}

func newMockActivityRepo(activities ...*models.Activity) *mockActivityRepo {
	repo := &mockActivityRepo{activities: make(map[string]*models.Activity)}
	for _, a := range activities {
		repo.activities[a.ID] = a
	}
	return repo
}

func (m *mockActivityRepo) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	var out []models.Activity
	for _, a := range m.activities {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockActivityRepo) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *a
	return &copied, nil
}

func (m *mockActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	activity.ID = "generated"
	m.activities[activity.ID] = activity
	return nil
}

func (m *mockActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	m.activities[activity.ID] = activity
	return nil
}

func (m *mockActivityRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.activities[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.activities, id)
	return nil
}

type mockProgramFinder struct {
	program *models.Program
}

func (m *mockProgramFinder) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if m.program == nil {
		return nil, sql.ErrNoRows
	}
	return m.program, nil
}

type mockPeriodFinder struct {
	period *models.Period
}

func (m *mockPeriodFinder) FindByID(ctx context.Context, id string) (*models.Period, error) {
	if m.period == nil {
		return nil, sql.ErrNoRows
	}
	return m.period, nil
}

func activityServiceFixture(activities ...*models.Activity) (*ActivityService, *mockActivityRepo) {
	repo := newMockActivityRepo(activities...)
	programs := &mockProgramFinder{program: &models.Program{ID: "prog1"}}
	periods := &mockPeriodFinder{period: &models.Period{ID: "per1"}}
	return NewActivityService(repo, programs, periods, nil, nil), repo
}

func TestActivityServiceCreate(t *testing.T) {
	svc, _ := activityServiceFixture()

	activity, err := svc.Create(context.Background(), CreateActivityRequest{
		ProgramID:   "prog1",
		PeriodID:    "per1",
		Name:        "Examen S1",
		Type:        models.ActivityTypeExam,
		PlannedDate: "2026-01-12",
	})
	require.NoError(t, err)
	require.NotNil(t, activity.PlannedDate)
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), *activity.PlannedDate)
	assert.Nil(t, activity.ActualDate)
}

func TestActivityServiceCreateMissingFields(t *testing.T) {
	svc, _ := activityServiceFixture()

	_, err := svc.Create(context.Background(), CreateActivityRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "program_id")
	assert.Contains(t, appErr.Message, "period_id")
	assert.Contains(t, appErr.Message, "name")
}

func TestActivityServiceCreateUnknownProgram(t *testing.T) {
	repo := newMockActivityRepo()
	svc := NewActivityService(repo, &mockProgramFinder{}, &mockPeriodFinder{period: &models.Period{ID: "per1"}}, nil, nil)

	_, err := svc.Create(context.Background(), CreateActivityRequest{
		ProgramID: "missing", PeriodID: "per1", Name: "x", Type: models.ActivityTypeCourse,
	})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestActivityServiceUpdateOmittedDateUntouched(t *testing.T) {
	planned := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	existing := &models.Activity{ID: "a1", ProgramID: "prog1", PeriodID: "per1", Name: "Examen", Type: models.ActivityTypeExam, PlannedDate: &planned}
	svc, _ := activityServiceFixture(existing)

	name := "Examen final"
	updated, err := svc.Update(context.Background(), "a1", UpdateActivityRequest{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, updated.PlannedDate)
	assert.Equal(t, planned, *updated.PlannedDate)
	assert.Equal(t, "Examen final", updated.Name)
}

func TestActivityServiceUpdateEmptyDateClears(t *testing.T) {
	planned := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	existing := &models.Activity{ID: "a1", ProgramID: "prog1", PeriodID: "per1", Name: "Examen", Type: models.ActivityTypeExam, PlannedDate: &planned}
	svc, _ := activityServiceFixture(existing)

	cleared := ""
	updated, err := svc.Update(context.Background(), "a1", UpdateActivityRequest{PlannedDate: &cleared})
	require.NoError(t, err)
	assert.Nil(t, updated.PlannedDate)
}

func TestActivityServiceUpdateActualDateSet(t *testing.T) {
	existing := &models.Activity{ID: "a1", ProgramID: "prog1", PeriodID: "per1", Name: "Examen", Type: models.ActivityTypeExam}
	svc, _ := activityServiceFixture(existing)

	actual := "2026-01-15"
	updated, err := svc.Update(context.Background(), "a1", UpdateActivityRequest{ActualDate: &actual})
	require.NoError(t, err)
	require.NotNil(t, updated.ActualDate)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *updated.ActualDate)
}

func TestActivityServiceUpdateBadTypeRejected(t *testing.T) {
	existing := &models.Activity{ID: "a1", ProgramID: "prog1", PeriodID: "per1", Name: "Examen", Type: models.ActivityTypeExam}
	svc, _ := activityServiceFixture(existing)

	bad := models.ActivityType("PARTY")
	_, err := svc.Update(context.Background(), "a1", UpdateActivityRequest{Type: &bad})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestActivityServiceDeleteUnknown(t *testing.T) {
	svc, _ := activityServiceFixture()

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
