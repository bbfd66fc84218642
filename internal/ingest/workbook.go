package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook decodes the first sheet of an Excel workbook into a Table.
// The first populated row is the header. Uploaded dashboard sources are
// often re-exported through spreadsheet tools, so xlsx is accepted
// alongside CSV.
func ReadWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	// Skip leading blank rows before the header.
	start := -1
	for i, row := range rows {
		if !rowIsEmpty(row) {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	header := make([]string, len(rows[start]))
	for i, cell := range rows[start] {
		header[i] = strings.TrimSpace(cell)
	}

	table := &Table{Header: header}
	for _, row := range rows[start+1:] {
		if rowIsEmpty(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
