// Package report renders a computed ticket summary to its output formats.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/helpstat/helpstat/internal/domain"
	"github.com/helpstat/helpstat/pkg/apperror"
)

// TextRenderer writes a sectioned plain-text report, in the layout operators
// know from the legacy analysis logs.
type TextRenderer struct{}

// NewTextRenderer creates a new text renderer
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Ext implements ports.ReportRenderer
func (r *TextRenderer) Ext() string { return ".txt" }

// Render implements ports.ReportRenderer
func (r *TextRenderer) Render(ctx context.Context, s *domain.ReportSummary, w io.Writer) error {
	var b strings.Builder

	section(&b, "OTRS TICKET ANALYSIS")
	fmt.Fprintf(&b, "Generated at: %s\n", s.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Total tickets: %d\n", s.TotalTickets)
	fmt.Fprintf(&b, "Open tickets: %d\n", s.OpenTickets)
	fmt.Fprintf(&b, "Closed tickets: %d\n", s.ClosedTickets)
	fmt.Fprintf(&b, "New tickets today: %d\n", s.CreatedToday)
	fmt.Fprintf(&b, "Closed tickets today: %d\n", s.ClosedToday)

	section(&b, "DAILY TICKET STATISTICS")
	writeDaily(&b, s)

	section(&b, "TICKET STATE DISTRIBUTION")
	writeCounts(&b, s.ByState, domain.SortedKeys(s.ByState))

	if len(s.ByQueue) > 0 {
		section(&b, "TICKETS BY QUEUE")
		writeCounts(&b, s.ByQueue, domain.SortedKeys(s.ByQueue))
	}

	if len(s.ByPriority) > 0 {
		section(&b, "TICKETS BY PRIORITY")
		writeCounts(&b, s.ByPriority, domain.KeysByPriority(s.ByPriority))
	}

	section(&b, "OPEN TICKETS BY PRIORITY")
	fmt.Fprintf(&b, "Total open tickets: %d\n", s.OpenTickets)
	writeCounts(&b, s.OpenByPriority, domain.KeysByPriority(s.OpenByPriority))

	section(&b, "OPEN TICKETS BY AGE")
	fmt.Fprintf(&b, "Open tickets < 24 hours: %d\n", s.OpenAgeBuckets.Under24h)
	fmt.Fprintf(&b, "Open tickets 24-48 hours: %d\n", s.OpenAgeBuckets.H24to48)
	fmt.Fprintf(&b, "Open tickets 48-72 hours: %d\n", s.OpenAgeBuckets.H48to72)
	fmt.Fprintf(&b, "Open tickets > 72 hours: %d\n", s.OpenAgeBuckets.Over72h)

	section(&b, "FIRST RESPONSE EMPTY ANALYSIS")
	fmt.Fprintf(&b, "Tickets without first response (excluding closed/resolved): %d\n", s.NoFirstResponse)
	writeCounts(&b, s.NoFirstResponseByPriority, domain.KeysByPriority(s.NoFirstResponseByPriority))

	section(&b, "RESOLUTION TIME")
	writeResolution(&b, s.Resolution)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return apperror.ErrRender("write text report", err)
	}
	return nil
}

func section(b *strings.Builder, title string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
}

func writeCounts(b *strings.Builder, counts map[string]int, keys []string) {
	if len(counts) == 0 {
		b.WriteString("(none)\n")
		return
	}
	for _, k := range keys {
		fmt.Fprintf(b, "%s: %d\n", k, counts[k])
	}
}

func writeDaily(b *strings.Builder, s *domain.ReportSummary) {
	days := map[string]int{}
	for d := range s.DailyNew {
		days[d] = 0
	}
	for d := range s.DailyClosed {
		days[d] = 0
	}
	if len(days) == 0 {
		b.WriteString("(none)\n")
		return
	}

	tw := tabwriter.NewWriter(b, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tNew\tClosed")
	for _, day := range domain.SortedKeys(days) {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", day, s.DailyNew[day], s.DailyClosed[day])
	}
	tw.Flush()
}

func writeResolution(b *strings.Builder, rs domain.ResolutionStats) {
	fmt.Fprintf(b, "Closed tickets measured: %d\n", rs.Count)
	if rs.Count == 0 {
		return
	}
	fmt.Fprintf(b, "Mean: %s\n", formatDuration(rs.Mean))
	fmt.Fprintf(b, "Median: %s\n", formatDuration(rs.Median))
	fmt.Fprintf(b, "P90: %s\n", formatDuration(rs.P90))
	fmt.Fprintf(b, "P95: %s\n", formatDuration(rs.P95))
	fmt.Fprintf(b, "Min: %s\n", formatDuration(rs.Min))
	fmt.Fprintf(b, "Max: %s\n", formatDuration(rs.Max))
}

// formatDuration renders durations the way the reports read them: whole
// days, hours and minutes.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
