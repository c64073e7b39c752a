package imports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"dealerstock-backend/internal/excelsync"

	"github.com/xuri/excelize/v2"
)

// loadRows turns an uploaded CSV/XLSX buffer into normalized row maps
// (header name -> trimmed cell value). Blank rows are dropped.
func loadRows(filename string, contents []byte, sheetName *string) ([]map[string]string, error) {
	switch suffix := strings.ToLower(filepath.Ext(filename)); suffix {
	case ".csv":
		return loadCSVRows(contents)
	case ".xlsx", ".xlsm":
		return loadExcelRows(contents, sheetName)
	default:
		return nil, fmt.Errorf("Unsupported file type '%s'. Upload .csv or .xlsx files", suffix)
	}
}

func loadCSVRows(contents []byte) ([]map[string]string, error) {
	// Tolerate a UTF-8 BOM from spreadsheet exports.
	contents = bytes.TrimPrefix(contents, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(contents))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := normalizeHeaderRow(records[0])
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := rowFromRecord(header, record)
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func loadExcelRows(contents []byte, sheetName *string) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("parse workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheetName != nil && excelsync.SheetExists(f, *sheetName) {
		sheet = *sheetName
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := normalizeHeaderRow(records[0])
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := rowFromRecord(header, record)
		if row != nil {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func normalizeHeaderRow(record []string) []string {
	header := make([]string, len(record))
	for i, cell := range record {
		header[i] = excelsync.NormalizeHeader(cell)
	}
	return header
}

// rowFromRecord maps one data record onto the normalized header.
// Returns nil for blank rows.
func rowFromRecord(header []string, record []string) map[string]string {
	row := map[string]string{}
	blank := true
	for i, name := range header {
		if name == "" {
			continue
		}
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		row[name] = value
		if value != "" {
			blank = false
		}
	}
	if blank {
		return nil
	}
	return row
}
