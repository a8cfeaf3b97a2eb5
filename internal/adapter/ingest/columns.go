// Package ingest loads OTRS ticket exports from spreadsheet files.
package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/helpstat/helpstat/internal/domain"
	"github.com/helpstat/helpstat/pkg/apperror"
)

// ColumnMap holds the resolved index of each known export column, or -1 when
// the column is absent.
type ColumnMap struct {
	Number        int
	Title         int
	Queue         int
	Owner         int
	State         int
	Priority      int
	Created       int
	Closed        int
	FirstResponse int
	Age           int
}

// columnVariants lists the header spellings different OTRS versions and
// export dialogs produce for each logical column.
var columnVariants = map[string][]string{
	"number":        {"ticket number", "ticketnumber", "number", "ticket_number", "id"},
	"title":         {"title", "subject"},
	"queue":         {"queue", "queue name"},
	"owner":         {"owner", "agent", "responsible"},
	"state":         {"state", "status", "ticket state"},
	"priority":      {"priority"},
	"created":       {"created", "createtime", "create time", "date created", "creation_date"},
	"closed":        {"closed", "closetime", "close time", "date closed", "close_date"},
	"firstresponse": {"firstresponse", "first response", "first_response"},
	"age":           {"age"},
}

// requiredColumns are the logical columns without which no meaningful report
// can be produced.
var requiredColumns = []string{"number", "created", "state"}

// MapHeader resolves a header row against the known OTRS column variants,
// case-insensitively. A missing required column aborts the load with a
// FORMAT_ERROR naming every absent column.
func MapHeader(header []string) (ColumnMap, error) {
	cm := ColumnMap{
		Number: -1, Title: -1, Queue: -1, Owner: -1, State: -1,
		Priority: -1, Created: -1, Closed: -1, FirstResponse: -1, Age: -1,
	}

	resolved := map[string]int{}
	for idx, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		if name == "" {
			continue
		}
		for logical, variants := range columnVariants {
			if _, done := resolved[logical]; done {
				continue
			}
			for _, v := range variants {
				if name == v || strings.Contains(name, v) {
					resolved[logical] = idx
					break
				}
			}
		}
	}

	var missing []string
	for _, req := range requiredColumns {
		if _, ok := resolved[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return cm, apperror.ErrFormat(fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	assign := func(dst *int, logical string) {
		if idx, ok := resolved[logical]; ok {
			*dst = idx
		}
	}
	assign(&cm.Number, "number")
	assign(&cm.Title, "title")
	assign(&cm.Queue, "queue")
	assign(&cm.Owner, "owner")
	assign(&cm.State, "state")
	assign(&cm.Priority, "priority")
	assign(&cm.Created, "created")
	assign(&cm.Closed, "closed")
	assign(&cm.FirstResponse, "firstresponse")
	assign(&cm.Age, "age")
	return cm, nil
}

// timestampLayouts covers the formats OTRS exports and spreadsheet tools
// commonly emit for ticket timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02",
	"01-02-06 15:04", // excelize default cell format for datetimes
}

func parseTimestamp(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, v); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// recordFromRow converts one data row into a TicketRecord. rowNum is the
// 1-based spreadsheet row, used in error details.
func recordFromRow(cm ColumnMap, row []string, rowNum int) (domain.TicketRecord, error) {
	rec := domain.TicketRecord{
		Number:   cell(row, cm.Number),
		Title:    cell(row, cm.Title),
		Queue:    cell(row, cm.Queue),
		Owner:    cell(row, cm.Owner),
		State:    cell(row, cm.State),
		Priority: cell(row, cm.Priority),
		Age:      cell(row, cm.Age),
	}

	created := cell(row, cm.Created)
	if created != "" {
		ts, err := parseTimestamp(created)
		if err != nil {
			return rec, apperror.ErrFormat(fmt.Sprintf("row %d: bad created timestamp: %v", rowNum, err))
		}
		rec.CreatedAt = ts
	}

	if closed := cell(row, cm.Closed); closed != "" {
		ts, err := parseTimestamp(closed)
		if err != nil {
			return rec, apperror.ErrFormat(fmt.Sprintf("row %d: bad closed timestamp: %v", rowNum, err))
		}
		rec.ClosedAt = &ts
	}

	if fr := cell(row, cm.FirstResponse); fr != "" {
		ts, err := parseTimestamp(fr)
		if err != nil {
			return rec, apperror.ErrFormat(fmt.Sprintf("row %d: bad first response timestamp: %v", rowNum, err))
		}
		rec.FirstResponse = &ts
	}

	if err := rec.Validate(); err != nil {
		return rec, apperror.ErrValidation(fmt.Sprintf("row %d (ticket %q): %v", rowNum, rec.Number, err))
	}
	return rec, nil
}

// buildRecords converts all data rows, enforcing ticket number uniqueness.
// rowOffset is the 1-based row number of the first data row.
func buildRecords(cm ColumnMap, rows [][]string, rowOffset int) ([]domain.TicketRecord, error) {
	records := make([]domain.TicketRecord, 0, len(rows))
	seen := make(map[string]int, len(rows))

	for i, row := range rows {
		rowNum := rowOffset + i
		if emptyRow(row) {
			continue
		}
		rec, err := recordFromRow(cm, row, rowNum)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[rec.Number]; dup {
			return nil, apperror.ErrValidation(fmt.Sprintf(
				"row %d (ticket %q): %v, first seen at row %d", rowNum, rec.Number, domain.ErrDuplicateTicket, prev))
		}
		seen[rec.Number] = rowNum
		records = append(records, rec)
	}
	return records, nil
}
