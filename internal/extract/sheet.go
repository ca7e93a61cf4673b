package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// excelStrategy reads every sheet of a workbook and renders each one as a
// labeled tabular text block. Missing cells render as empty strings. For
// legacy .xls files the OOXML reader fails, so a second attempt goes through
// the BIFF reader before giving up.
type excelStrategy struct {
	legacyFallback bool
}

func (s *excelStrategy) Extract(path string) (string, error) {
	content, err := extractXLSX(path)
	if err == nil {
		return content, nil
	}
	if s.legacyFallback {
		if content, legacyErr := extractXLS(path); legacyErr == nil {
			return content, nil
		}
	}
	return "", fmt.Errorf("read workbook: %w", err)
}

func extractXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", name, err)
		}
		writeSheet(&sb, name, rows)
	}
	return sb.String(), nil
}

func extractXLS(path string) (string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				continue
			}
			var cells []string
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		writeSheet(&sb, sheet.Name, rows)
	}
	return sb.String(), nil
}

func writeSheet(sb *strings.Builder, name string, rows [][]string) {
	sb.WriteString("Sheet: ")
	sb.WriteString(name)
	sb.WriteByte('\n')
	for _, row := range rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
}

func extractCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(strings.Join(record, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
