// Package batch sequences invoice documents through extraction and
// normalization, producing report rows and renamed file entries.
package batch

import (
	"context"
	"fmt"

	"github.com/dvelkov/invoice-expert/internal/extract"
	"github.com/dvelkov/invoice-expert/internal/translit"
	"go.uber.org/zap"
)

// ErrorMarker is written to the vendor column of a report row when a
// document fails to process.
const ErrorMarker = "ERROR"

// Extractor is the document extraction contract the orchestrator needs.
type Extractor interface {
	Extract(ctx context.Context, doc []byte) (string, error)
}

// Normalizer parses a raw AI payload into a structured record.
type Normalizer interface {
	Normalize(payload string) (*extract.Record, error)
}

// InputFile is one uploaded document.
type InputFile struct {
	Name string
	Data []byte
}

// ReportRow is one line of the batch report. Input order is preserved and
// every input document yields exactly one row.
type ReportRow struct {
	OldName       string  `json:"old_name"`
	NewName       string  `json:"new_name,omitempty"`
	Vendor        string  `json:"vendor"`
	InvoiceNumber string  `json:"invoice_number,omitempty"`
	InvoiceDate   string  `json:"invoice_date,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	TotalAmount   float64 `json:"total_amount"`
	PONumber      string  `json:"po_number,omitempty"`

	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RenamedFile pairs a generated file name with the original document bytes.
type RenamedFile struct {
	Name string
	Data []byte
}

// Result aggregates the outcome of one batch run.
type Result struct {
	Rows      []ReportRow
	Files     []RenamedFile
	Succeeded int
	Failed    int
}

// Orchestrator runs batches. It holds no state between runs; each call to
// Run is a pure function of its inputs.
type Orchestrator struct {
	extractor  Extractor
	normalizer Normalizer
	logger     *zap.Logger
}

// NewOrchestrator creates a new batch orchestrator.
func NewOrchestrator(extractor Extractor, normalizer Normalizer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		extractor:  extractor,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Run processes files strictly in input order, one document in flight at a
// time. Renamed files get `{sequence}_{vendor}.pdf` names; the sequence
// counter starts at startNumber and advances only on success, so a failed
// document never consumes a number. Per-document failures produce a
// degraded row with the error marker and never abort the batch.
func (o *Orchestrator) Run(ctx context.Context, files []InputFile, startNumber int) (*Result, error) {
	if startNumber < 1 {
		return nil, fmt.Errorf("start number must be positive, got %d", startNumber)
	}

	result := &Result{
		Rows:  make([]ReportRow, 0, len(files)),
		Files: make([]RenamedFile, 0, len(files)),
	}
	seq := startNumber

	for i, file := range files {
		o.logger.Info("Processing document",
			zap.String("file", file.Name),
			zap.Int("position", i+1),
			zap.Int("total", len(files)))

		row, renamed, err := o.processOne(ctx, file, seq)
		if err != nil {
			o.logger.Warn("Document failed, continuing with next",
				zap.String("file", file.Name),
				zap.Error(err))
			result.Rows = append(result.Rows, ReportRow{
				OldName: file.Name,
				Vendor:  ErrorMarker,
				Failed:  true,
				Error:   err.Error(),
			})
			result.Failed++
			continue
		}

		result.Rows = append(result.Rows, row)
		result.Files = append(result.Files, renamed)
		result.Succeeded++
		seq++
	}

	o.logger.Info("Batch finished",
		zap.Int("documents", len(files)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	return result, nil
}

func (o *Orchestrator) processOne(ctx context.Context, file InputFile, seq int) (ReportRow, RenamedFile, error) {
	payload, err := o.extractor.Extract(ctx, file.Data)
	if err != nil {
		return ReportRow{}, RenamedFile{}, fmt.Errorf("extract: %w", err)
	}

	rec, err := o.normalizer.Normalize(payload)
	if err != nil {
		return ReportRow{}, RenamedFile{}, fmt.Errorf("normalize: %w", err)
	}

	vendor := translit.Transliterate(rec.VendorName)

	// The sequence prefix keeps generated names unique within a batch even
	// when two vendors transliterate to the same string.
	newName := fmt.Sprintf("%d_%s.pdf", seq, vendor)

	row := ReportRow{
		OldName:       file.Name,
		NewName:       newName,
		Vendor:        vendor,
		InvoiceNumber: rec.InvoiceNumber,
		InvoiceDate:   rec.InvoiceDate,
		Currency:      rec.Currency,
		TotalAmount:   rec.TotalAmount,
		PONumber:      rec.PONumber,
	}

	return row, RenamedFile{Name: newName, Data: file.Data}, nil
}
