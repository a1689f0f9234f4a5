// Package xlsx summarises spreadsheet workbooks.
//
// Spreadsheets are not prose, so instead of dumping every cell the
// extractor describes the workbook: sheet count, per-sheet dimensions,
// the header row and a few sample rows.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

const (
	// SampleRows is the number of data rows shown per sheet.
	SampleRows = 3

	// MaxCellChars bounds each cell in the summary.
	MaxCellChars = 50
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles XLSX workbooks.
type Extractor struct{}

// New creates a new spreadsheet extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatSpreadsheet
}

// Extract returns a summary of the workbook.
func (e *Extractor) Extract(ctx context.Context, raw []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: xlsx: %v", domain.ErrExtraction, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()

	var b strings.Builder
	fmt.Fprintf(&b, "Spreadsheet with %d sheet(s)", len(sheets))

	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			fmt.Fprintf(&b, "\n\nSheet: %s (unreadable)", sheet)
			continue
		}
		writeSheet(&b, sheet, rows)
	}
	return b.String(), nil
}

func writeSheet(b *strings.Builder, name string, rows [][]string) {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	fmt.Fprintf(b, "\n\nSheet: %s (%d rows x %d columns)", name, len(rows), cols)
	if len(rows) == 0 {
		return
	}

	fmt.Fprintf(b, "\nHeaders: %s", joinCells(rows[0]))
	for i, row := range rows[1:] {
		if i == SampleRows {
			break
		}
		fmt.Fprintf(b, "\nRow %d: %s", i+1, joinCells(row))
	}
}

func joinCells(row []string) string {
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = domain.Truncate(strings.TrimSpace(c), MaxCellChars)
	}
	return strings.Join(cells, " | ")
}
