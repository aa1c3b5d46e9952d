package sheets

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadspider-cli/internal/report"
)

func writeWorkbook(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	require.NoError(t, err)
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadURLColumn(t *testing.T) {
	path := writeWorkbook(t, "leads", [][]string{
		{"name", "company_url"},
		{"Acme", "http://acme.test/"},
		{"Blank", ""},
		{"Dup", "http://acme.test/"},
		{"Beta", "  http://beta.test/  "},
	})

	urls, err := ReadURLColumn(path, "leads", "company_url")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://acme.test/", "http://beta.test/"}, urls)
}

func TestReadURLColumn_DefaultSheet(t *testing.T) {
	path := writeWorkbook(t, "anything", [][]string{
		{"company_url"},
		{"http://acme.test/"},
	})

	urls, err := ReadURLColumn(path, "", "company_url")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://acme.test/"}, urls)
}

func TestReadURLColumn_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, "leads", [][]string{{"company_url"}})

	_, err := ReadURLColumn(path, "nope", "company_url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "nope" not found`)
}

func TestReadURLColumn_MissingColumn(t *testing.T) {
	path := writeWorkbook(t, "leads", [][]string{
		{"name", "website"},
		{"Acme", "http://acme.test/"},
	})

	_, err := ReadURLColumn(path, "leads", "company_url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "company_url" not found`)
}

func TestWriteReport_RoundTrip(t *testing.T) {
	table := report.NewTable("tagged_as_b2b", "products_avg_price")
	table.Set("http://acme.test/", report.Row{
		"tagged_as_b2b":      "true",
		"products_avg_price": 12.5,
	})

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteReport(path, "report", table))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["report"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, "company_url", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "http://acme.test/", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "true", sheet.Rows[1].Cells[1].String())
	got, err := sheet.Rows[1].Cells[2].Float()
	require.NoError(t, err)
	assert.Equal(t, 12.5, got)
}
