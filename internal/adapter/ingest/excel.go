package ingest

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/helpstat/helpstat/internal/domain"
	"github.com/helpstat/helpstat/internal/service/logger"
	"github.com/helpstat/helpstat/pkg/apperror"
)

// ExcelSource loads ticket records from an .xlsx export. The first sheet is
// read; its first row must be the header.
type ExcelSource struct {
	logger logger.Logger
}

// NewExcelSource creates a new Excel ticket source
func NewExcelSource(log logger.Logger) *ExcelSource {
	return &ExcelSource{logger: log}
}

// Load implements ports.TicketSource
func (s *ExcelSource) Load(ctx context.Context, path string) ([]domain.TicketRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperror.ErrIO(fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.ErrFormat(fmt.Sprintf("%s: workbook has no sheets", path))
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperror.ErrFormat(fmt.Sprintf("%s: cannot read sheet %q: %v", path, sheet, err))
	}
	if len(rows) == 0 {
		return nil, apperror.ErrFormat(fmt.Sprintf("%s: sheet %q has no header row", path, sheet))
	}

	cm, err := MapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records, err := buildRecords(cm, rows[1:], 2)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "loaded excel export", map[string]interface{}{
		"path":    path,
		"sheet":   sheet,
		"records": len(records),
	})
	return records, nil
}
