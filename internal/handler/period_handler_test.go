package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/acadplan-api/internal/models"
	"github.com/noah-isme/acadplan-api/internal/service"
	"github.com/noah-isme/acadplan-api/pkg/response"
)

type periodRepoStub struct {
	periods    map[string]*models.Period
	dependents int
}

func newPeriodRepoStub(periods ...*models.Period) *periodRepoStub {
	stub := &periodRepoStub{periods: make(map[string]*models.Period)}
	for _, p := range periods {
		stub.periods[p.ID] = p
	}
	return stub
}

func (s *periodRepoStub) List(ctx context.Context, filter models.PeriodFilter) ([]models.Period, int, error) {
	var out []models.Period
	for _, p := range s.periods {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (s *periodRepoStub) FindByID(ctx context.Context, id string) (*models.Period, error) {
	p, ok := s.periods[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (s *periodRepoStub) FindActive(ctx context.Context) (*models.Period, error) {
	for _, p := range s.periods {
		if p.IsActive {
			copied := *p
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *periodRepoStub) Create(ctx context.Context, period *models.Period) error {
	period.ID = "generated"
	if period.IsActive {
		for _, p := range s.periods {
			p.IsActive = false
		}
	}
	s.periods[period.ID] = period
	return nil
}

func (s *periodRepoStub) Update(ctx context.Context, period *models.Period) error {
	if period.IsActive {
		for id, p := range s.periods {
			if id != period.ID {
				p.IsActive = false
			}
		}
	}
	s.periods[period.ID] = period
	return nil
}

func (s *periodRepoStub) SetActive(ctx context.Context, id string) error {
	p, ok := s.periods[id]
	if !ok {
		return sql.ErrNoRows
	}
	for _, other := range s.periods {
		other.IsActive = false
	}
	p.IsActive = true
	return nil
}

func (s *periodRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.periods[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.periods, id)
	return nil
}

func (s *periodRepoStub) CountDependents(ctx context.Context, id string) (int, error) {
	return s.dependents, nil
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", raw)
	require.NoError(t, err)
	return d
}

func newPeriodHandlerFixture(stub *periodRepoStub) *PeriodHandler {
	return NewPeriodHandler(service.NewPeriodService(stub, nil, nil, nil))
}

func performJSON(t *testing.T, handlerFunc gin.HandlerFunc, method, target, body string, params ...gin.Param) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = params
	handlerFunc(c)
	return w
}

func TestPeriodHandlerCreate(t *testing.T) {
	handler := newPeriodHandlerFixture(newPeriodRepoStub())

	w := performJSON(t, handler.Create, http.MethodPost, "/periods",
		`{"label":"2025-2026","academic_year":"2025-2026","semester1_start":"2025-09-01","is_active":true}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestPeriodHandlerCreateMissingFields(t *testing.T) {
	handler := newPeriodHandlerFixture(newPeriodRepoStub())

	w := performJSON(t, handler.Create, http.MethodPost, "/periods", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "label")
	assert.Contains(t, w.Body.String(), "academic_year")
}

func TestPeriodHandlerGetUnknown(t *testing.T) {
	handler := newPeriodHandlerFixture(newPeriodRepoStub())

	w := performJSON(t, handler.Get, http.MethodGet, "/periods/missing", "",
		gin.Param{Key: "id", Value: "missing"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPeriodHandlerUpdateClearsDate(t *testing.T) {
	start := mustDate(t, "2025-09-01")
	stub := newPeriodRepoStub(&models.Period{ID: "p1", Label: "2025-2026", AcademicYear: "2025-2026", Semester1Start: &start})
	handler := newPeriodHandlerFixture(stub)

	w := performJSON(t, handler.Update, http.MethodPut, "/periods/p1",
		`{"semester1_start":""}`, gin.Param{Key: "id", Value: "p1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, stub.periods["p1"].Semester1Start)
}

func TestPeriodHandlerSetActiveSwitches(t *testing.T) {
	first := &models.Period{ID: "p1", Label: "old", AcademicYear: "2024-2025", IsActive: true}
	second := &models.Period{ID: "p2", Label: "new", AcademicYear: "2025-2026"}
	stub := newPeriodRepoStub(first, second)
	handler := newPeriodHandlerFixture(stub)

	w := performJSON(t, handler.SetActive, http.MethodPost, "/periods/set-active", `{"id":"p2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, stub.periods["p2"].IsActive)
	assert.False(t, stub.periods["p1"].IsActive)
}

func TestPeriodHandlerDeleteActiveRefused(t *testing.T) {
	stub := newPeriodRepoStub(&models.Period{ID: "p1", Label: "current", AcademicYear: "2025-2026", IsActive: true})
	handler := newPeriodHandlerFixture(stub)

	w := performJSON(t, handler.Delete, http.MethodDelete, "/periods/p1", "",
		gin.Param{Key: "id", Value: "p1"})
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}
