package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/helpstat/helpstat/internal/domain"
	"github.com/helpstat/helpstat/pkg/apperror"
)

// ExcelRenderer writes the summary as an .xlsx workbook with one worksheet
// per report section.
type ExcelRenderer struct{}

// NewExcelRenderer creates a new Excel renderer
func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

// Ext implements ports.ReportRenderer
func (r *ExcelRenderer) Ext() string { return ".xlsx" }

// Render implements ports.ReportRenderer
func (r *ExcelRenderer) Render(ctx context.Context, s *domain.ReportSummary, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := r.writeSummarySheet(f, s); err != nil {
		return err
	}
	if err := r.writeDistributionSheet(f, s); err != nil {
		return err
	}
	if err := r.writeDailySheet(f, s); err != nil {
		return err
	}

	// NewFile starts with a default "Sheet1"; drop it once the real
	// sheets exist.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperror.ErrRender("delete default sheet", err)
	}
	if idx, err := f.GetSheetIndex("Summary"); err == nil {
		f.SetActiveSheet(idx)
	}

	if _, err := f.WriteTo(w); err != nil {
		return apperror.ErrRender("write xlsx report", err)
	}
	return nil
}

func (r *ExcelRenderer) writeSummarySheet(f *excelize.File, s *domain.ReportSummary) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return apperror.ErrRender("create summary sheet", err)
	}

	rows := [][]interface{}{
		{"Generated at", s.GeneratedAt.Format(time.RFC3339)},
		{"Total tickets", s.TotalTickets},
		{"Open tickets", s.OpenTickets},
		{"Closed tickets", s.ClosedTickets},
		{"New tickets today", s.CreatedToday},
		{"Closed tickets today", s.ClosedToday},
		{"Without first response", s.NoFirstResponse},
		{},
		{"Open < 24h", s.OpenAgeBuckets.Under24h},
		{"Open 24-48h", s.OpenAgeBuckets.H24to48},
		{"Open 48-72h", s.OpenAgeBuckets.H48to72},
		{"Open > 72h", s.OpenAgeBuckets.Over72h},
	}
	if s.Resolution.Count > 0 {
		rows = append(rows,
			[]interface{}{},
			[]interface{}{"Resolution sample", s.Resolution.Count},
			[]interface{}{"Resolution mean", formatDuration(s.Resolution.Mean)},
			[]interface{}{"Resolution median", formatDuration(s.Resolution.Median)},
			[]interface{}{"Resolution p90", formatDuration(s.Resolution.P90)},
			[]interface{}{"Resolution p95", formatDuration(s.Resolution.P95)},
			[]interface{}{"Resolution max", formatDuration(s.Resolution.Max)},
		)
	}
	return writeRows(f, sheet, rows)
}

func (r *ExcelRenderer) writeDistributionSheet(f *excelize.File, s *domain.ReportSummary) error {
	const sheet = "Distributions"
	if _, err := f.NewSheet(sheet); err != nil {
		return apperror.ErrRender("create distributions sheet", err)
	}

	rows := [][]interface{}{{"Category", "Label", "Count"}}
	appendDist := func(category string, counts map[string]int, keys []string) {
		for _, k := range keys {
			rows = append(rows, []interface{}{category, k, counts[k]})
		}
	}
	appendDist("state", s.ByState, domain.SortedKeys(s.ByState))
	appendDist("queue", s.ByQueue, domain.SortedKeys(s.ByQueue))
	appendDist("priority", s.ByPriority, domain.KeysByPriority(s.ByPriority))
	appendDist("open_by_priority", s.OpenByPriority, domain.KeysByPriority(s.OpenByPriority))
	appendDist("no_first_response_by_priority", s.NoFirstResponseByPriority, domain.KeysByPriority(s.NoFirstResponseByPriority))

	return writeRows(f, sheet, rows)
}

func (r *ExcelRenderer) writeDailySheet(f *excelize.File, s *domain.ReportSummary) error {
	const sheet = "Daily"
	if _, err := f.NewSheet(sheet); err != nil {
		return apperror.ErrRender("create daily sheet", err)
	}

	days := map[string]int{}
	for d := range s.DailyNew {
		days[d] = 0
	}
	for d := range s.DailyClosed {
		days[d] = 0
	}

	rows := [][]interface{}{{"Date", "New", "Closed"}}
	for _, day := range domain.SortedKeys(days) {
		rows = append(rows, []interface{}{day, s.DailyNew[day], s.DailyClosed[day]})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperror.ErrRender(fmt.Sprintf("cell reference for %s row %d", sheet, i+1), err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return apperror.ErrRender(fmt.Sprintf("write %s row %d", sheet, i+1), err)
		}
	}
	return nil
}
