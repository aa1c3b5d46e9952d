// Package sheets reads crawl start URLs from and exports reports to
// xlsx worksheets.
package sheets

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadspider-cli/internal/model"
	"github.com/sells-group/leadspider-cli/internal/report"
)

// ReadURLColumn reads the named column of a worksheet and returns its
// values as a start URL list: blanks skipped, duplicates removed, order
// preserved. An empty sheet name selects the first sheet. A missing
// sheet or column is an error naming the resource.
func ReadURLColumn(path, sheetName, column string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheets: open %s", path)
	}

	sheet, err := getSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("sheets: sheet %q is empty", sheet.Name)
	}

	colIdx := -1
	for i, cell := range sheet.Rows[0].Cells {
		if strings.EqualFold(strings.TrimSpace(cell.String()), column) {
			colIdx = i
			break
		}
	}
	if colIdx < 0 {
		return nil, eris.Errorf("sheets: column %q not found in sheet %q", column, sheet.Name)
	}

	var urls []string
	seen := make(map[string]struct{})
	for _, row := range sheet.Rows[1:] {
		if colIdx >= len(row.Cells) {
			continue
		}
		u := strings.TrimSpace(row.Cells[colIdx].String())
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls, nil
}

// WriteReport exports the report table to an xlsx worksheet, company
// identity first, mirroring the CSV layout.
func WriteReport(path, sheetName string, t *report.Table) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "sheets: add sheet %q", sheetName)
	}

	header := sheet.AddRow()
	header.AddCell().SetString(model.ColCompanyURL)
	for _, col := range t.Columns() {
		header.AddCell().SetString(col)
	}

	for _, id := range t.Companies() {
		tableRow := t.Get(id)
		row := sheet.AddRow()
		row.AddCell().SetString(string(id))
		for _, col := range t.Columns() {
			cell := row.AddCell()
			switch v := tableRow[col].(type) {
			case nil:
			case float64:
				cell.SetFloat(v)
			case string:
				cell.SetString(v)
			}
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "sheets: save %s", path)
	}
	return nil
}

func getSheet(f *xlsx.File, name string) (*xlsx.Sheet, error) {
	if name == "" {
		if len(f.Sheets) == 0 {
			return nil, eris.New("sheets: workbook has no sheets")
		}
		return f.Sheets[0], nil
	}
	sheet, ok := f.Sheet[name]
	if !ok {
		return nil, eris.Errorf("sheets: sheet %q not found", name)
	}
	return sheet, nil
}
