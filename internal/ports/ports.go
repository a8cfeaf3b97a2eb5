package ports

import (
	"context"
	"io"

	"github.com/helpstat/helpstat/internal/domain"
)

// TicketSource defines the interface for loading a ticket export
type TicketSource interface {
	// Load parses the export at path into ticket records. It returns the
	// full set or an error; there are no partial loads.
	Load(ctx context.Context, path string) ([]domain.TicketRecord, error)
}

// ReportRenderer defines the interface for emitting a computed summary
type ReportRenderer interface {
	// Render writes the summary to w. Callers own the writer lifecycle.
	Render(ctx context.Context, summary *domain.ReportSummary, w io.Writer) error

	// Ext is the file extension (including the dot) this renderer produces.
	Ext() string
}
