// Package report serializes batch results into the two download artifacts:
// an XLSX report and a ZIP archive of renamed files.
package report

import (
	"fmt"

	"github.com/dvelkov/invoice-expert/internal/batch"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet holding the report.
const SheetName = "Sheet1"

var headers = []string{
	"Old Name",
	"New Name",
	"Vendor",
	"Invoice Number",
	"Invoice Date",
	"Currency",
	"Total Amount",
	"PO Number",
}

// WriteWorkbook renders report rows into an XLSX workbook and returns its
// bytes. Rows keep input order. Failed rows carry only the old name and the
// error marker in the vendor column.
func WriteWorkbook(rows []batch.ReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("set header %q: %w", h, err)
		}
	}

	for i, row := range rows {
		values := []any{row.OldName, "", row.Vendor, "", "", "", "", ""}
		if !row.Failed {
			values = []any{
				row.OldName,
				row.NewName,
				row.Vendor,
				row.InvoiceNumber,
				row.InvoiceDate,
				row.Currency,
				row.TotalAmount,
				row.PONumber,
			}
		}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
