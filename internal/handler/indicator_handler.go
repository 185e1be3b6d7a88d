package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acadplan-api/internal/models"
	"github.com/noah-isme/acadplan-api/internal/service"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
	"github.com/noah-isme/acadplan-api/pkg/response"
)

// IndicatorHandler exposes KPI indicator endpoints.
type IndicatorHandler struct {
	service *service.IndicatorService
}

// NewIndicatorHandler constructs an indicator handler.
func NewIndicatorHandler(svc *service.IndicatorService) *IndicatorHandler {
	return &IndicatorHandler{service: svc}
}

// List godoc
// @Summary List indicators
// @Tags Indicators
// @Produce json
// @Security BearerAuth
// @Param program query string false "Filter by program ID"
// @Param period query string false "Filter by period ID"
// @Param responsible query string false "Filter by responsible user ID"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /indicators [get]
func (h *IndicatorHandler) List(c *gin.Context) {
	var filter models.IndicatorFilter
	filter.ProgramID = c.Query("program")
	filter.PeriodID = c.Query("period")
	filter.ResponsibleID = c.Query("responsible")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	indicators, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, indicators, pagination)
}

// Get godoc
// @Summary Get an indicator
// @Tags Indicators
// @Produce json
// @Security BearerAuth
// @Param id path string true "Indicator ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /indicators/{id} [get]
func (h *IndicatorHandler) Get(c *gin.Context) {
	indicator, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, indicator, nil)
}

// Create godoc
// @Summary Track an indicator
// @Tags Indicators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateIndicatorRequest true "Indicator payload"
// @Success 201 {object} response.Envelope
// @Router /indicators [post]
func (h *IndicatorHandler) Create(c *gin.Context) {
	var req service.CreateIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	indicator, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, indicator)
}

// Update godoc
// @Summary Update an indicator
// @Tags Indicators
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Indicator ID"
// @Param payload body service.UpdateIndicatorRequest true "Partial indicator payload"
// @Success 200 {object} response.Envelope
// @Router /indicators/{id} [put]
func (h *IndicatorHandler) Update(c *gin.Context) {
	var req service.UpdateIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	indicator, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, indicator, nil)
}

// Delete godoc
// @Summary Delete an indicator
// @Tags Indicators
// @Produce json
// @Security BearerAuth
// @Param id path string true "Indicator ID"
// @Success 204 "No Content"
// @Router /indicators/{id} [delete]
func (h *IndicatorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
