package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTemplateExporterSheets(t *testing.T) {
	exporter := NewTemplateExporter()

	payload, err := exporter.Render()
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Programme", "Modules"}, f.GetSheetList())

	header, err := f.GetCellValue("Programme", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Code", header)

	moduleHeader, err := f.GetCellValue("Modules", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Intitulé", moduleHeader)

	// Sample rows are pre-populated below the headers.
	sample, err := f.GetCellValue("Programme", "A2")
	require.NoError(t, err)
	assert.NotEmpty(t, sample)
}

func TestTemplateExporterDeterministic(t *testing.T) {
	exporter := NewTemplateExporter()

	first, err := exporter.Render()
	require.NoError(t, err)
	second, err := exporter.Render()
	require.NoError(t, err)

	fa, err := excelize.OpenReader(bytes.NewReader(first))
	require.NoError(t, err)
	defer fa.Close()
	fb, err := excelize.OpenReader(bytes.NewReader(second))
	require.NoError(t, err)
	defer fb.Close()

	assert.Equal(t, fa.GetSheetList(), fb.GetSheetList())
	rowsA, err := fa.GetRows("Modules")
	require.NoError(t, err)
	rowsB, err := fb.GetRows("Modules")
	require.NoError(t, err)
	assert.Equal(t, rowsA, rowsB)
}
