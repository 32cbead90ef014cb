package leads

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Parse decodes an uploaded lead file. Files with an .xlsx extension are read
// from the first sheet, everything else is treated as CSV.
func Parse(filename string, data []byte) ([]Lead, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ValidationError{Field: "file", Message: "is empty"}
	}

	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ReadXLSX(data)
	}
	return ReadCSV(bytes.NewReader(data))
}

// ReadCSV reads leads from CSV with a header row naming the lead columns.
func ReadCSV(r io.Reader) ([]Lead, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("malformed csv: %v", err)}
		}
		rows = append(rows, rec)
	}

	return FromRows(rows)
}

// ReadXLSX reads leads from the first sheet of an XLSX workbook.
func ReadXLSX(data []byte) ([]Lead, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("malformed xlsx: %v", err)}
	}
	if len(f.Sheets) == 0 {
		return nil, &ValidationError{Field: "file", Message: "workbook has no sheets"}
	}

	sheet := f.Sheets[0]
	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		rows = append(rows, cells)
	}

	return FromRows(rows)
}

// FromRows turns a header row plus data rows into leads. Header names are
// matched case-insensitively, cells are trimmed and blank rows are skipped.
// Every lead gets a fresh ID.
func FromRows(rows [][]string) ([]Lead, error) {
	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, &ValidationError{Field: "file", Message: "is empty"}
	}

	header := make([]string, len(rows[0]))
	present := make(map[string]bool, len(header))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		present[header[i]] = true
	}

	var missing []string
	for _, col := range Columns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{
			Field:   "columns",
			Message: "missing required fields: " + strings.Join(missing, ", "),
		}
	}

	if len(rows) == 1 {
		return nil, &ValidationError{Field: "file", Message: "contains no leads"}
	}

	out := make([]Lead, 0, len(rows)-1)
	for n, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, col := range header {
			if col == "" || i >= len(row) {
				continue
			}
			record[col] = strings.TrimSpace(row[i])
		}

		var lead Lead
		if err := mapstructure.Decode(record, &lead); err != nil {
			return nil, eris.Wrapf(err, "decode lead %d", n+1)
		}

		if lead.Name == "" {
			return nil, &ValidationError{Field: "name", Message: fmt.Sprintf("lead %d has no name", n+1)}
		}

		lead.ID = uuid.NewString()
		out = append(out, lead)
	}

	return out, nil
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
