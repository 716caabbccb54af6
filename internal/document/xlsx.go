package document

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Extracted"

// saveXLSX writes one row per entry: the file name in column A and the text
// in column B. Text longer than a cell holds continues in columns C, D, ...
// instead of being cut.
func (d *Document) saveXLSX(path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	textCols := 1
	for i, e := range d.entries {
		row := i + 2
		if err := setCell(f, 1, row, e.File); err != nil {
			return err
		}
		chunks := splitCell(e.Text)
		for j, c := range chunks {
			if err := setCell(f, 2+j, row, c); err != nil {
				return err
			}
		}
		textCols = max(textCols, len(chunks))
	}

	if err := setCell(f, 1, 1, "File"); err != nil {
		return err
	}
	for j := 0; j < textCols; j++ {
		header := "Text"
		if j > 0 {
			header = "Text " + strconv.Itoa(j+1)
		}
		if err := setCell(f, 2+j, 1, header); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 24); err != nil {
		return fmt.Errorf("xlsx width: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(1 + textCols)
	if err := f.SetColWidth(sheetName, "B", last, 100); err != nil {
		return fmt.Errorf("xlsx width: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	if err := f.SetCellValue(sheetName, cell, v); err != nil {
		return fmt.Errorf("xlsx cell %s: %w", cell, err)
	}
	return nil
}

// splitCell cuts s into pieces of at most excelize.TotalCellChars runes.
func splitCell(s string) []string {
	r := []rune(s)
	if len(r) <= excelize.TotalCellChars {
		return []string{s}
	}
	var out []string
	for len(r) > 0 {
		n := min(len(r), excelize.TotalCellChars)
		out = append(out, string(r[:n]))
		r = r[n:]
	}
	return out
}
