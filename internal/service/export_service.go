package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/acadplan-api/internal/models"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
	"github.com/noah-isme/acadplan-api/pkg/export"
)

// ReportFormat selects the rendering of a program report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type exportUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type exportProgramRepository interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Program, error)
}

type exportModuleRepository interface {
	ListByProgram(ctx context.Context, programID string) ([]models.Module, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type templateRenderer interface {
	Render() ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	SchemaVersion string
}

// RenderedFile is a generated download ready to stream to the client.
type RenderedFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService builds the JSON data export, the static planning
// template and per-program reports.
type ExportService struct {
	users    exportUserRepository
	programs exportProgramRepository
	modules  exportModuleRepository
	csv      csvRenderer
	pdf      pdfRenderer
	template templateRenderer
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(users exportUserRepository, programs exportProgramRepository, modules exportModuleRepository, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SchemaVersion == "" {
		cfg.SchemaVersion = "1.0"
	}
	return &ExportService{
		users:    users,
		programs: programs,
		modules:  modules,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		template: export.NewTemplateExporter(),
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// DataExport assembles the versioned JSON snapshot of the user's data.
// Password hashes and session tokens are never part of the document.
func (s *ExportService) DataExport(ctx context.Context, userID string) (*models.ExportDocument, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	programs, err := s.programs.ListByOwner(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programs")
	}

	doc := &models.ExportDocument{
		SchemaVersion: s.cfg.SchemaVersion,
		ExportedAt:    time.Now().UTC(),
		User: models.UserInfo{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
		Programs: make([]models.ExportProgram, 0, len(programs)),
	}

	for _, program := range programs {
		modules, err := s.modules.ListByProgram(ctx, program.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load modules")
		}

		exported := models.ExportProgram{
			ID:        program.ID,
			Code:      program.Code,
			Name:      program.Name,
			Level:     program.Level,
			StartDate: program.StartDate,
			EndDate:   program.EndDate,
			Modules:   make([]models.ExportModule, 0, len(modules)),
		}
		for _, module := range modules {
			exported.Modules = append(exported.Modules, models.ExportModule{
				ID:         module.ID,
				Code:       module.Code,
				Name:       module.Name,
				Semester:   module.Semester,
				Hours:      module.Hours,
				Credits:    module.Credits,
				Instructor: module.InstructorName,
			})
		}
		doc.Programs = append(doc.Programs, exported)
	}

	s.metrics.RecordExport("json")
	return doc, nil
}

// Template renders the static program planning workbook. The content
// never depends on the caller or database state.
func (s *ExportService) Template(ctx context.Context) (*RenderedFile, error) {
	payload, err := s.template.Render()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render template")
	}

	s.metrics.RecordExport("xlsx")
	return &RenderedFile{
		Filename:    "modele_programme.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Payload:     payload,
	}, nil
}

// ProgramReport renders a module listing for one program as CSV or PDF.
func (s *ExportService) ProgramReport(ctx context.Context, programID string, format ReportFormat) (*RenderedFile, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	modules, err := s.modules.ListByProgram(ctx, programID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load modules")
	}

	dataset := export.Dataset{
		Headers: []string{"Code", "Intitulé", "Semestre", "Volume horaire", "Crédits", "Enseignant"},
		Rows:    make([][]string, 0, len(modules)),
	}
	for _, module := range modules {
		instructor := ""
		if module.InstructorName != nil {
			instructor = *module.InstructorName
		}
		dataset.Rows = append(dataset.Rows, []string{
			module.Code,
			module.Name,
			strconv.Itoa(module.Semester),
			strconv.Itoa(module.Hours),
			strconv.Itoa(module.Credits),
			instructor,
		})
	}

	title := fmt.Sprintf("Programme %s - %s", program.Code, program.Name)
	var payload []byte
	var contentType, extension string
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
		extension = "csv"
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
		extension = "pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format, expected csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	s.metrics.RecordExport(extension)
	return &RenderedFile{
		Filename:    fmt.Sprintf("rapport_%s.%s", program.Code, extension),
		ContentType: contentType,
		Payload:     payload,
	}, nil
}
