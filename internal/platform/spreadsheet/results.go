package spreadsheet

import (
	"fmt"
	"io"
	"strings"
	"time"

	"harf_sayi/internal/domain/model"

	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"
)

const (
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	AllSheetName = "all-results"

	maxSheetNameLen = 31 // Excel limit
)

var header = []interface{}{
	"id", "user_id", "username", "test_name", "score",
	"hits", "misses", "false_alarms", "extra", "created_at",
}

// WriteResults renders results as an xlsx workbook: one sheet holding every
// row, followed by one sheet per distinct test name in first-seen order.
func WriteResults(w io.Writer, results []model.TestResultWithUsername) error {
	f := excelize.NewFile()
	defer f.Close()

	allIdx, err := f.NewSheet(AllSheetName)
	if err != nil {
		return fmt.Errorf("spreadsheet: %w", err)
	}
	f.SetActiveSheet(allIdx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("spreadsheet: %w", err)
	}

	if err := writeRows(f, AllSheetName, results); err != nil {
		return err
	}

	names := newSheetNamer(AllSheetName)
	groups := map[string][]model.TestResultWithUsername{}
	var order []string
	for _, r := range results {
		if _, ok := groups[r.TestName]; !ok {
			order = append(order, r.TestName)
		}
		groups[r.TestName] = append(groups[r.TestName], r)
	}
	for _, testName := range order {
		sheet := names.next(testName)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("spreadsheet: %w", err)
		}
		if err := writeRows(f, sheet, groups[testName]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("spreadsheet: write: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, results []model.TestResultWithUsername) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("spreadsheet: header: %w", err)
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("spreadsheet: %w", err)
		}
		row := []interface{}{
			r.ID, r.UserID, r.Username, r.TestName, r.Score,
			optional(r.Hits), optional(r.Misses), optional(r.FalseAlarms),
			extraText(r.Extra), r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("spreadsheet: row %d: %w", r.ID, err)
		}
	}
	return nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func extraText(e model.Extra) string {
	if e.IsNull() {
		return ""
	}
	return string(e)
}

// sheetNamer turns test names into unique, Excel-safe sheet names.
type sheetNamer struct {
	used map[string]bool
}

func newSheetNamer(reserved ...string) *sheetNamer {
	n := &sheetNamer{used: map[string]bool{}}
	for _, r := range reserved {
		n.used[strings.ToLower(r)] = true
	}
	return n
}

func (n *sheetNamer) next(testName string) string {
	base := slug.Make(testName)
	if base == "" {
		base = "test"
	}
	base = truncate(base, maxSheetNameLen)

	name := base
	for i := 2; n.used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf("-%d", i)
		name = truncate(base, maxSheetNameLen-len(suffix)) + suffix
	}
	n.used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}
