package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helpstat/helpstat/internal/domain"
	"github.com/helpstat/helpstat/internal/ports"
	"github.com/helpstat/helpstat/internal/service/logger"
	"github.com/helpstat/helpstat/pkg/apperror"
)

// Report formats
const (
	FormatText  = "text"
	FormatExcel = "xlsx"
	FormatBoth  = "both"
)

// BuildReportRequest represents one report build invocation
type BuildReportRequest struct {
	InputPath string
	Format    string // text, xlsx or both
	OutputDir string // defaults to the input file's directory
	Stdout    bool   // additionally stream the text report to stdout
}

// BuildReportResult represents the outcome of a report build
type BuildReportResult struct {
	RunID       string                `json:"run_id"`
	RecordCount int                   `json:"record_count"`
	Summary     *domain.ReportSummary `json:"summary"`
	Outputs     []string              `json:"outputs"`
}

// ReportUseCase handles the load -> summarize -> render pipeline
type ReportUseCase struct {
	sources  map[string]ports.TicketSource
	text     ports.ReportRenderer
	excel    ports.ReportRenderer
	logger   logger.Logger
	now      func() time.Time
	stdout   *os.File
	tsLayout string
}

// NewReportUseCase creates a new report use case. sources maps a lowercase
// file extension (".xlsx") to the loader for it.
func NewReportUseCase(
	sources map[string]ports.TicketSource,
	text ports.ReportRenderer,
	excel ports.ReportRenderer,
	log logger.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		sources:  sources,
		text:     text,
		excel:    excel,
		logger:   log,
		now:      time.Now,
		stdout:   os.Stdout,
		tsLayout: "2006-01-02_15-04-05", // colon-free, safe on every filesystem
	}
}

// WithClock overrides the reference clock, for tests.
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// BuildReport runs one full analysis: load the export, summarize it and
// render the configured outputs next to the input file.
func (uc *ReportUseCase) BuildReport(ctx context.Context, req BuildReportRequest) (*BuildReportResult, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)

	start := uc.now()
	uc.logger.Info(ctx, "starting ticket analysis", map[string]interface{}{
		"input":  req.InputPath,
		"format": req.Format,
	})

	source, err := uc.sourceFor(req.InputPath)
	if err != nil {
		return nil, err
	}

	records, err := source.Load(ctx, req.InputPath)
	if err != nil {
		uc.logger.Error(ctx, "load failed", err, map[string]interface{}{"input": req.InputPath})
		return nil, err
	}

	summary := domain.Summarize(records, start)

	outputs, err := uc.render(ctx, req, summary)
	if err != nil {
		return nil, err
	}

	uc.logger.Info(ctx, "analysis completed", map[string]interface{}{
		"records":     len(records),
		"open":        summary.OpenTickets,
		"closed":      summary.ClosedTickets,
		"outputs":     outputs,
		"duration_ms": uc.now().Sub(start).Milliseconds(),
	})

	return &BuildReportResult{
		RunID:       runID,
		RecordCount: len(records),
		Summary:     summary,
		Outputs:     outputs,
	}, nil
}

func (uc *ReportUseCase) sourceFor(path string) (ports.TicketSource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	source, ok := uc.sources[ext]
	if !ok {
		return nil, apperror.ErrFormat(fmt.Sprintf("unsupported input type %q, expected one of %s", ext, strings.Join(uc.supportedExts(), ", ")))
	}
	return source, nil
}

func (uc *ReportUseCase) supportedExts() []string {
	exts := make([]string, 0, len(uc.sources))
	for ext := range uc.sources {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func (uc *ReportUseCase) render(ctx context.Context, req BuildReportRequest, summary *domain.ReportSummary) ([]string, error) {
	var renderers []ports.ReportRenderer
	switch req.Format {
	case FormatText, "":
		renderers = []ports.ReportRenderer{uc.text}
	case FormatExcel:
		renderers = []ports.ReportRenderer{uc.excel}
	case FormatBoth:
		renderers = []ports.ReportRenderer{uc.text, uc.excel}
	default:
		return nil, apperror.ErrConfig(fmt.Sprintf("unknown report format %q", req.Format))
	}

	var outputs []string
	for _, r := range renderers {
		path := uc.outputPath(req, r.Ext())
		if err := uc.renderToFile(ctx, r, summary, path); err != nil {
			return nil, err
		}
		outputs = append(outputs, path)
	}

	if req.Stdout {
		if err := uc.text.Render(ctx, summary, uc.stdout); err != nil {
			return nil, err
		}
	}
	return outputs, nil
}

func (uc *ReportUseCase) renderToFile(ctx context.Context, r ports.ReportRenderer, summary *domain.ReportSummary, path string) error {
	f, err := os.Create(path) // truncates: an existing report is overwritten
	if err != nil {
		return apperror.ErrIO(fmt.Sprintf("create %s", path), err)
	}
	if err := r.Render(ctx, summary, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperror.ErrIO(fmt.Sprintf("close %s", path), err)
	}
	uc.logger.Info(ctx, "report written", map[string]interface{}{"path": path})
	return nil
}

// outputPath places the report alongside the input (or in OutputDir) with a
// timestamped name derived from the input file.
func (uc *ReportUseCase) outputPath(req BuildReportRequest, ext string) string {
	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Dir(req.InputPath)
	}
	base := filepath.Base(req.InputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_report_%s%s", stem, uc.now().Format(uc.tsLayout), ext)
	return filepath.Join(dir, name)
}
