package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/acadplan-api/internal/service"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
	"github.com/noah-isme/acadplan-api/pkg/response"
)

// ExportHandler exposes export and template endpoints.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// DataExport godoc
// @Summary Export the current user's data as JSON
// @Description Versioned snapshot of the user's programs and modules. Sensitive fields are never included.
// @Tags Exports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ExportDocument
// @Router /export-data [get]
func (h *ExportHandler) DataExport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	doc, err := h.service.DataExport(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="export_donnees.json"`)
	c.JSON(http.StatusOK, doc)
}

// Template godoc
// @Summary Download the program planning template
// @Description Static XLSX workbook with Programme and Modules sheets. No authentication required.
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /programs/template [get]
func (h *ExportHandler) Template(c *gin.Context) {
	file, err := h.service.Template(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

// ProgramReport godoc
// @Summary Download a program report
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param format query string false "Report format (csv or pdf)" default(csv)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /programs/{id}/report [get]
func (h *ExportHandler) ProgramReport(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))

	file, err := h.service.ProgramReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
