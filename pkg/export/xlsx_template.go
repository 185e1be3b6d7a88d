package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetProgram = "Programme"
	sheetModules = "Modules"
)

var programHeaders = []string{"Code", "Nom", "Niveau", "Date début", "Date fin"}

var programSamples = [][]interface{}{
	{"LIC-INFO", "Licence Informatique", "Licence", "2025-09-15", "2026-06-30"},
	{"MST-DATA", "Master Science des Données", "Master", "2025-09-15", "2026-06-30"},
}

var moduleHeaders = []string{"Code", "Intitulé", "Semestre", "Volume horaire", "Crédits", "Enseignant"}

var moduleSamples = [][]interface{}{
	{"INF101", "Algorithmique et structures de données", 1, 60, 6, "A. Diallo"},
	{"INF102", "Bases de données relationnelles", 1, 45, 4, "M. Traoré"},
	{"INF201", "Programmation répartie", 2, 45, 5, ""},
}

// TemplateExporter builds the static program/module import workbook.
// The output is identical for every call; no storage access is involved.
type TemplateExporter struct{}

// NewTemplateExporter constructs a template exporter.
func NewTemplateExporter() *TemplateExporter {
	return &TemplateExporter{}
}

// Render produces the two-sheet XLSX workbook as raw bytes.
func (e *TemplateExporter) Render() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeSheet(f, sheetProgram, programHeaders, programSamples); err != nil {
		return nil, err
	}
	if err := e.writeSheet(f, sheetModules, moduleHeaders, moduleSamples); err != nil {
		return nil, err
	}

	// Drop the default sheet so the workbook contains exactly the two
	// expected sheets.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheetProgram); err == nil {
		f.SetActiveSheet(idx)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *TemplateExporter) writeSheet(f *excelize.File, name string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return fmt.Errorf("write header %s: %w", header, err)
		}
	}

	for r, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return fmt.Errorf("write sample row %d: %w", r+1, err)
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(name, "A", lastCol, 24); err != nil {
		return fmt.Errorf("set column widths: %w", err)
	}
	return nil
}
