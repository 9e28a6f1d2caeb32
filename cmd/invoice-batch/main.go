// Command invoice-batch processes a directory of PDF invoices from the
// command line and writes the XLSX report and ZIP archive to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/dvelkov/invoice-expert/internal/batch"
	"github.com/dvelkov/invoice-expert/internal/extract"
	"github.com/dvelkov/invoice-expert/internal/report"
)

func main() {
	dir := flag.String("dir", ".", "Directory containing PDF invoices")
	start := flag.Int("start", 1, "Starting sequence number for renamed files")
	out := flag.String("out", ".", "Output directory for report and archive")
	apiKey := flag.String("key", "", "AI service API key (or set GEMINI_API_KEY)")
	baseURL := flag.String("base-url", "https://generativelanguage.googleapis.com/v1beta/openai/", "AI service base URL")
	model := flag.String("model", "gemini-2.5-flash", "AI model name")
	retryDelay := flag.Duration("retry-delay", 10*time.Second, "Delay between retries when rate limited")
	timeout := flag.Duration("timeout", 120*time.Second, "AI service call timeout")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	_ = gotenv.Load()

	if *apiKey == "" {
		*apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if *apiKey == "" {
		fmt.Fprintln(os.Stderr, "ERROR: GEMINI_API_KEY not set and no --key flag provided")
		fmt.Fprintln(os.Stderr, "Usage: invoice-batch --dir invoices/ --start 1023 [--out results/]")
		os.Exit(1)
	}
	if *start < 1 {
		fmt.Fprintln(os.Stderr, "ERROR: --start must be a positive integer")
		os.Exit(1)
	}

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	files, err := loadPDFs(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No PDF files found in %s\n", *dir)
		os.Exit(1)
	}

	fmt.Printf("Processing %d invoices from %s (starting at %d)\n", len(files), *dir, *start)

	clientCfg := openai.DefaultConfig(*apiKey)
	clientCfg.BaseURL = *baseURL
	clientCfg.HTTPClient = &http.Client{Timeout: *timeout}
	client := openai.NewClientWithConfig(clientCfg)

	extractor := extract.NewExtractor(client, extract.Config{
		Model:      *model,
		RetryDelay: *retryDelay,
	}, logger)
	orchestrator := batch.NewOrchestrator(extractor, extract.NewNormalizer(logger), logger)

	result, err := orchestrator.Run(context.Background(), files, *start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	for _, row := range result.Rows {
		if row.Failed {
			fmt.Printf("  FAILED  %s: %s\n", row.OldName, row.Error)
			continue
		}
		fmt.Printf("  OK      %s -> %s (%s %.2f, PO %s)\n",
			row.OldName, row.NewName, row.Currency, row.TotalAmount, row.PONumber)
	}

	if err := writeOutputs(*out, result); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done: %d succeeded, %d failed\n", result.Succeeded, result.Failed)
}

// loadPDFs reads all PDF files in dir, sorted by name so the sequence
// numbering is stable across runs.
func loadPDFs(dir string) ([]batch.InputFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	files := make([]batch.InputFile, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		files = append(files, batch.InputFile{Name: name, Data: data})
	}
	return files, nil
}

func writeOutputs(dir string, result *batch.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	workbook, err := report.WriteWorkbook(result.Rows)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	reportPath := filepath.Join(dir, "invoice_report.xlsx")
	if err := os.WriteFile(reportPath, workbook, 0644); err != nil {
		return fmt.Errorf("write %s: %w", reportPath, err)
	}

	archive, err := report.WriteArchive(result.Files)
	if err != nil {
		return fmt.Errorf("build archive: %w", err)
	}
	archivePath := filepath.Join(dir, "renamed_invoices.zip")
	if err := os.WriteFile(archivePath, archive, 0644); err != nil {
		return fmt.Errorf("write %s: %w", archivePath, err)
	}

	fmt.Printf("Wrote %s and %s\n", reportPath, archivePath)
	return nil
}
