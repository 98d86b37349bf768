package core

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Data"

// WriteCSV serializes t as CSV, header first. Missing values become empty
// fields. A table without headers writes nothing.
func WriteCSV(w io.Writer, t Table) error {
	if len(t.Headers) == 0 {
		return nil
	}

	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)

	for _, rec := range t.Records() {
		// A single empty field would be written as a blank line, which
		// readers skip. Quote it so the row survives.
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			if _, err := bw.WriteString("\"\"\n"); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return bw.Flush()
}

// FormatCSV returns t serialized by WriteCSV.
func FormatCSV(t Table) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = WriteCSV(&sb, t)
	return sb.String()
}

// WriteXLSX writes t as a single-sheet Excel workbook. Numbers are stored
// as numeric cells; missing values leave the cell empty.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range t.Headers {
		if err := setCell(f, 1, col+1, h); err != nil {
			return err
		}
	}

	for i, r := range t.Rows {
		for col, h := range t.Headers {
			v := r[h]
			var cell any
			switch v.Kind() {
			case KindNumber:
				cell, _ = v.Float()
			case KindString:
				cell = v.Text()
			default:
				continue
			}
			if err := setCell(f, i+2, col+1, cell); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, row, col int, value any) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetCellValue(xlsxSheet, name, value); err != nil {
		return fmt.Errorf("set cell %s: %w", name, err)
	}
	return nil
}
