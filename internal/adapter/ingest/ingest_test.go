package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/helpstat/helpstat/internal/service/logger"
	"github.com/helpstat/helpstat/pkg/apperror"
)

var testHeader = []string{"Ticket Number", "Title", "Queue", "Owner", "State", "Priority", "Created", "Closed", "FirstResponse", "Age"}

var testRows = [][]string{
	{"100001", "Printer down", "Support", "agent1", "closed successful", "3 normal", "2025-08-23 09:00:00", "2025-08-23 13:00:00", "2025-08-23 10:00:00", ""},
	{"100002", "VPN broken", "Network", "agent2", "open", "2 high", "2025-08-24 09:00:00", "", "", "1 d 3 h"},
	{"100003", "Mail outage", "Network", "agent1", "open", "1 very high", "2025-08-25 08:00:00", "", "2025-08-25 08:30:00", "4 h"},
}

func writeCSV(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")

	content := ""
	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				content += ","
			}
			content += f
		}
		content += "\n"
	}
	writeLine(header)
	for _, row := range rows {
		writeLine(row)
	}

	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeXLSX(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.xlsx")

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	writeRow := func(rowNum int, fields []string) {
		cellRef, err := excelize.CoordinatesToCellName(1, rowNum)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &fields))
	}
	writeRow(1, header)
	for i, row := range rows {
		writeRow(i+2, row)
	}

	require.NoError(t, f.SaveAs(path))
	return path
}

func TestCSVSource_Load(t *testing.T) {
	path := writeCSV(t, testHeader, testRows)

	source := NewCSVSource(logger.NewNop())
	records, err := source.Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, records, len(testRows))

	assert.Equal(t, "100001", records[0].Number)
	assert.Equal(t, "Support", records[0].Queue)
	assert.False(t, records[0].IsOpen())
	require.NotNil(t, records[0].FirstResponse)

	assert.True(t, records[1].IsOpen())
	assert.Nil(t, records[1].FirstResponse)
	assert.Equal(t, "1 d 3 h", records[1].Age)
	assert.Equal(t, "2 high", records[1].Priority)
}

func TestCSVSource_MissingFile(t *testing.T) {
	source := NewCSVSource(logger.NewNop())
	_, err := source.Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.Equal(t, apperror.CodeIO, apperror.CodeOf(err))
}

func TestCSVSource_MissingRequiredColumn(t *testing.T) {
	header := []string{"Title", "Queue", "State", "Created"} // no ticket number
	path := writeCSV(t, header, [][]string{{"Printer down", "Support", "open", "2025-08-23 09:00:00"}})

	source := NewCSVSource(logger.NewNop())
	_, err := source.Load(context.Background(), path)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeFormat, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "number")
}

func TestCSVSource_ClosedBeforeCreated(t *testing.T) {
	rows := [][]string{
		{"100001", "Bad row", "Support", "agent1", "closed successful", "3 normal", "2025-08-23 09:00:00", "2025-08-22 09:00:00", "", ""},
	}
	path := writeCSV(t, testHeader, rows)

	source := NewCSVSource(logger.NewNop())
	_, err := source.Load(context.Background(), path)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "row 2")
}

func TestCSVSource_DuplicateTicketNumber(t *testing.T) {
	rows := [][]string{
		{"100001", "First", "Support", "agent1", "open", "3 normal", "2025-08-23 09:00:00", "", "", ""},
		{"100001", "Dup", "Support", "agent1", "open", "3 normal", "2025-08-24 09:00:00", "", "", ""},
	}
	path := writeCSV(t, testHeader, rows)

	source := NewCSVSource(logger.NewNop())
	_, err := source.Load(context.Background(), path)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "duplicate")
}

func TestCSVSource_BadTimestamp(t *testing.T) {
	rows := [][]string{
		{"100001", "Bad row", "Support", "agent1", "open", "3 normal", "not a date", "", "", ""},
	}
	path := writeCSV(t, testHeader, rows)

	source := NewCSVSource(logger.NewNop())
	_, err := source.Load(context.Background(), path)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeFormat, apperror.CodeOf(err))
}

func TestExcelSource_Load(t *testing.T) {
	path := writeXLSX(t, testHeader, testRows)

	source := NewExcelSource(logger.NewNop())
	records, err := source.Load(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, records, len(testRows))

	assert.Equal(t, "100002", records[1].Number)
	assert.Equal(t, "VPN broken", records[1].Title)
	assert.True(t, records[1].IsOpen())
	assert.False(t, records[0].IsOpen())
	assert.Equal(t, "2025-08-23 09:00:00", records[0].CreatedAt.Format("2006-01-02 15:04:05"))
}

func TestExcelSource_MissingFile(t *testing.T) {
	source := NewExcelSource(logger.NewNop())
	_, err := source.Load(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))

	require.Error(t, err)
	assert.Equal(t, apperror.CodeIO, apperror.CodeOf(err))
}

func TestExcelSource_SkipsEmptyRows(t *testing.T) {
	rows := [][]string{
		testRows[0],
		{"", "", "", "", "", "", "", "", "", ""},
		testRows[1],
	}
	path := writeXLSX(t, testHeader, rows)

	source := NewExcelSource(logger.NewNop())
	records, err := source.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestMapHeader_Variants(t *testing.T) {
	tests := []struct {
		name   string
		header []string
	}{
		{"canonical", []string{"Ticket Number", "Created", "State"}},
		{"lowercase", []string{"ticket_number", "creation_date", "status"}},
		{"spaced", []string{"Number", "Create Time", "Ticket State"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm, err := MapHeader(tt.header)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, cm.Number, 0)
			assert.GreaterOrEqual(t, cm.Created, 0)
			assert.GreaterOrEqual(t, cm.State, 0)
		})
	}
}

func TestMapHeader_ReportsAllMissing(t *testing.T) {
	_, err := MapHeader([]string{"Queue", "Owner"})

	require.Error(t, err)
	assert.Equal(t, apperror.CodeFormat, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "number")
	assert.Contains(t, err.Error(), "created")
	assert.Contains(t, err.Error(), "state")
}

func TestParseTimestamp_Layouts(t *testing.T) {
	inputs := []string{
		"2025-08-23 09:00:00",
		"2025-08-23T09:00:00",
		"2025-08-23",
		"08/23/2025 09:00",
		"23.08.2025 09:00:00",
	}

	for _, in := range inputs {
		ts, err := parseTimestamp(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, 2025, ts.Year(), "input %q", in)
	}

	_, err := parseTimestamp("tomorrow")
	assert.Error(t, err)
}
