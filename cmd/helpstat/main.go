package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/helpstat/helpstat/internal/adapter/ingest"
	"github.com/helpstat/helpstat/internal/adapter/report"
	"github.com/helpstat/helpstat/internal/config"
	"github.com/helpstat/helpstat/internal/ports"
	"github.com/helpstat/helpstat/internal/service/logger"
	"github.com/helpstat/helpstat/internal/usecase"
	"github.com/helpstat/helpstat/pkg/apperror"
)

// Version and build information
var (
	Version   = "development"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var (
		version   = flag.Bool("version", false, "Show version information")
		format    = flag.String("format", "", "Report format: text, xlsx or both (overrides REPORT_FORMAT)")
		outputDir = flag.String("out", "", "Directory for the generated report (default: next to the input file)")
		stdout    = flag.Bool("stdout", false, "Also print the text report to stdout")
	)
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("helpstat OTRS Ticket Report Builder\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		return 0
	}

	if flag.NArg() != 1 {
		usage()
		return 4
	}
	inputPath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 4
	}
	if *format != "" {
		cfg.Report.Format = *format
	}
	if *outputDir != "" {
		cfg.Report.OutputDir = *outputDir
	}
	if *stdout {
		cfg.Report.Stdout = true
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		return apperror.ExitCode(apperror.ErrConfig(err.Error()))
	}

	appLogger := logger.NewStructuredLogger(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "helpstat",
	})

	excelSource := ingest.NewExcelSource(appLogger)
	sources := map[string]ports.TicketSource{
		".xlsx": excelSource,
		".xls":  excelSource,
		".csv":  ingest.NewCSVSource(appLogger),
	}

	uc := usecase.NewReportUseCase(
		sources,
		report.NewTextRenderer(),
		report.NewExcelRenderer(),
		appLogger,
	)

	result, err := uc.BuildReport(context.Background(), usecase.BuildReportRequest{
		InputPath: inputPath,
		Format:    cfg.Report.Format,
		OutputDir: cfg.Report.OutputDir,
		Stdout:    cfg.Report.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "helpstat: %v\n", err)
		return apperror.ExitCode(err)
	}

	for _, out := range result.Outputs {
		fmt.Printf("Report written to %s\n", out)
	}
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: helpstat [flags] <export-file>\n\n")
	fmt.Fprintf(os.Stderr, "Analyzes an OTRS ticket export (.xlsx or .csv) and writes a summary\n")
	fmt.Fprintf(os.Stderr, "report next to the input file.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
}
