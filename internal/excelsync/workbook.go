package excelsync

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

// ExcelHeaders is the fixed column set of the canonical workbook. Import
// matches columns by normalized name, not position; push and export rely on
// this order.
var ExcelHeaders = []string{
	"branch_code",
	"branch_name",
	"city",
	"latitude",
	"longitude",
	"model_code",
	"model_name",
	"variant",
	"color",
	"quantity",
	"reserved",
}

const sheetTitle = "Inventory"

// The workbook is a single-writer external resource. Writers (push, full
// import, snapshot-to-same-path) to one path must not interleave.
var (
	pathLocksMu sync.Mutex
	pathLocks   = map[string]*sync.Mutex{}
)

func lockPath(path string) *sync.Mutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	pathLocksMu.Lock()
	mu, ok := pathLocks[abs]
	if !ok {
		mu = &sync.Mutex{}
		pathLocks[abs] = mu
	}
	pathLocksMu.Unlock()
	mu.Lock()
	return mu
}

// openWorkbook opens the workbook at path, creating it with a header row
// first if it does not exist yet.
func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := createWorkbook(path); err != nil {
			return nil, err
		}
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return f, nil
}

func createWorkbook(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheetTitle); err != nil {
		return err
	}
	if err := writeHeaderRow(f, sheetTitle); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeHeaderRow(f *excelize.File, sheet string) error {
	for i, h := range ExcelHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	return nil
}

// SheetExists reports whether the workbook has a sheet with the given name.
func SheetExists(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

func headerColumn(name string) int {
	for i, h := range ExcelHeaders {
		if h == name {
			return i + 1
		}
	}
	return -1
}
