package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExcelExporter_Export(t *testing.T) {
	exporter := NewExcelExporter()

	data, err := exporter.Export("June 2025", [][]string{
		{"Date", "Alice", "Bob"},
		{"2025-06-01", "Holiday", "Holiday"},
		{"2025-06-02", "Present", "Absent"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"June 2025"}, f.GetSheetList())

	rows, err := f.GetRows("June 2025")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Alice", "Bob"}, rows[0])
	assert.Equal(t, []string{"2025-06-02", "Present", "Absent"}, rows[2])
}

func TestExcelExporter_EmptyTable(t *testing.T) {
	exporter := NewExcelExporter()

	data, err := exporter.Export("Empty", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
