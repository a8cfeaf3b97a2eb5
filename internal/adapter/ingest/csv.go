package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/helpstat/helpstat/internal/domain"
	"github.com/helpstat/helpstat/internal/service/logger"
	"github.com/helpstat/helpstat/pkg/apperror"
)

// CSVSource loads ticket records from a .csv export with the same column
// semantics as the Excel source.
type CSVSource struct {
	logger logger.Logger
}

// NewCSVSource creates a new CSV ticket source
func NewCSVSource(log logger.Logger) *CSVSource {
	return &CSVSource{logger: log}
}

// Load implements ports.TicketSource
func (s *CSVSource) Load(ctx context.Context, path string) ([]domain.TicketRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperror.ErrIO(fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // exports pad ragged rows
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperror.ErrFormat(fmt.Sprintf("%s: %v", path, err))
	}
	if len(rows) == 0 {
		return nil, apperror.ErrFormat(fmt.Sprintf("%s: file has no header row", path))
	}

	cm, err := MapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	records, err := buildRecords(cm, rows[1:], 2)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "loaded csv export", map[string]interface{}{
		"path":    path,
		"records": len(records),
	})
	return records, nil
}
