package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/acadplan-api/internal/models"
	"github.com/noah-isme/acadplan-api/internal/repository"
	"github.com/noah-isme/acadplan-api/internal/service"
)

type userStubRepo struct{}

func (userStubRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

type programStubRepo struct{}

func (programStubRepo) FindByID(ctx context.Context, id string) (*models.Program, error) {
	return nil, sql.ErrNoRows
}

func (programStubRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Program, error) {
	return nil, nil
}

type moduleStubRepo struct{}

func (moduleStubRepo) ListByProgram(ctx context.Context, programID string) ([]models.Module, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	userRepo := repository.NewUserRepository(sqlx.NewDb(db, "sqlmock"))

	authService := service.NewAuthService(userRepo, nil, nil, service.AuthConfig{Secret: "test-secret"})
	periodService := service.NewPeriodService(newPeriodRepoStub(), nil, nil, nil)
	exportService := service.NewExportService(userStubRepo{}, programStubRepo{}, moduleStubRepo{}, nil, service.ExportConfig{}, nil)

	r := gin.New()
	RegisterRoutes(r, "/api/v1", Handlers{
		Auth:       NewAuthHandler(authService),
		Period:     NewPeriodHandler(periodService),
		Program:    NewProgramHandler(service.NewProgramService(programRouterStub{}, nil, nil)),
		Module:     NewModuleHandler(service.NewModuleService(moduleRouterStub{}, programRouterStub{}, nil, nil)),
		Activity:   NewActivityHandler(service.NewActivityService(activityRouterStub{}, programRouterStub{}, newPeriodRepoStub(), nil, nil)),
		Indicator:  NewIndicatorHandler(service.NewIndicatorService(indicatorRouterStub{}, programRouterStub{}, newPeriodRepoStub(), nil, nil)),
		Result:     NewResultHandler(service.NewResultService(resultRouterStub{}, moduleRouterStub{}, nil, nil)),
		Preference: NewPreferenceHandler(service.NewPreferenceService(preferenceRouterStub{}, nil, nil)),
		Export:     NewExportHandler(exportService),
	}, authService, userRepo)
	return r
}

type programRouterStub struct{}

func (programRouterStub) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	return nil, 0, nil
}
func (programRouterStub) FindByID(ctx context.Context, id string) (*models.Program, error) {
	return nil, sql.ErrNoRows
}
func (programRouterStub) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	return false, nil
}
func (programRouterStub) Create(ctx context.Context, program *models.Program) error { return nil }
func (programRouterStub) Update(ctx context.Context, program *models.Program) error { return nil }
func (programRouterStub) Delete(ctx context.Context, id string) error               { return sql.ErrNoRows }
func (programRouterStub) CountDependents(ctx context.Context, id string) (int, error) {
	return 0, nil
}

type moduleRouterStub struct{}

func (moduleRouterStub) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, int, error) {
	return nil, 0, nil
}
func (moduleRouterStub) FindByID(ctx context.Context, id string) (*models.Module, error) {
	return nil, sql.ErrNoRows
}
func (moduleRouterStub) ExistsByCode(ctx context.Context, programID, code, excludeID string) (bool, error) {
	return false, nil
}
func (moduleRouterStub) Create(ctx context.Context, module *models.Module) error { return nil }
func (moduleRouterStub) Update(ctx context.Context, module *models.Module) error { return nil }
func (moduleRouterStub) Delete(ctx context.Context, id string) error             { return sql.ErrNoRows }
func (moduleRouterStub) CountResults(ctx context.Context, id string) (int, error) {
	return 0, nil
}

type activityRouterStub struct{}

func (activityRouterStub) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	return nil, 0, nil
}
func (activityRouterStub) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	return nil, sql.ErrNoRows
}
func (activityRouterStub) Create(ctx context.Context, activity *models.Activity) error { return nil }
func (activityRouterStub) Update(ctx context.Context, activity *models.Activity) error { return nil }
func (activityRouterStub) Delete(ctx context.Context, id string) error                 { return sql.ErrNoRows }

type indicatorRouterStub struct{}

func (indicatorRouterStub) List(ctx context.Context, filter models.IndicatorFilter) ([]models.Indicator, int, error) {
	return nil, 0, nil
}
func (indicatorRouterStub) FindByID(ctx context.Context, id string) (*models.Indicator, error) {
	return nil, sql.ErrNoRows
}
func (indicatorRouterStub) Create(ctx context.Context, indicator *models.Indicator) error { return nil }
func (indicatorRouterStub) Update(ctx context.Context, indicator *models.Indicator) error { return nil }
func (indicatorRouterStub) Delete(ctx context.Context, id string) error                   { return sql.ErrNoRows }

type resultRouterStub struct{}

func (resultRouterStub) List(ctx context.Context, filter models.ResultFilter) ([]models.Result, int, error) {
	return nil, 0, nil
}
func (resultRouterStub) FindByID(ctx context.Context, id string) (*models.Result, error) {
	return nil, sql.ErrNoRows
}
func (resultRouterStub) Create(ctx context.Context, result *models.Result) error { return nil }
func (resultRouterStub) Update(ctx context.Context, result *models.Result) error { return nil }
func (resultRouterStub) Delete(ctx context.Context, id string) error             { return sql.ErrNoRows }

type preferenceRouterStub struct{}

func (preferenceRouterStub) FindByUserID(ctx context.Context, userID string) (*models.Preference, error) {
	return nil, sql.ErrNoRows
}
func (preferenceRouterStub) Upsert(ctx context.Context, pref *models.Preference) error { return nil }

func TestRouterRequiresAuth(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/periods", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterRejectsGarbageToken(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/periods", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPatch, "/api/v1/periods", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouterTemplateIsPublic(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/programs/template", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "modele_programme.xlsx")
}

func TestRouterUnknownRoute(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
